package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/diffeq"
	"github.com/njchilds90/diffeq/internal/cache"
	"github.com/njchilds90/diffeq/internal/config"
	"github.com/njchilds90/diffeq/internal/logging"
	"github.com/njchilds90/diffeq/internal/metrics"
)

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckLinearityCmd(t *testing.T) {
	out, err := run(t, NewCheckLinearityCmd(), "", "y'' + y = 0")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","message":"The differential equation 'y'' + y = 0' is linear."}`, out)

	out, err = run(t, NewCheckLinearityCmd(), "", "y' = y^2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","message":"The differential equation 'y' = y^2' is not linear."}`, out)
}

func TestCheckLinearityCmd_NoArgs(t *testing.T) {
	out, err := run(t, NewCheckLinearityCmd(), "")
	assert.True(t, errors.Is(err, errReported))
	assert.JSONEq(t, `{"status":"error","message":"No equation provided"}`, out)
}

func TestVerifySolutionCmd(t *testing.T) {
	out, err := run(t, NewVerifySolutionCmd(), "", "y' = y", "y = exp(x)")
	require.NoError(t, err)

	var resp diffeq.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.True(t, strings.HasPrefix(resp.PlotURL, "data:image/png;base64,"))
}

func TestVerifySolutionCmd_MissingArgs(t *testing.T) {
	out, err := run(t, NewVerifySolutionCmd(), "", "y' = y")
	assert.True(t, errors.Is(err, errReported))
	assert.JSONEq(t, `{"status":"error","message":"Both differential equation and solution must be provided"}`, out)
}

func TestLinearityCmd_Explain(t *testing.T) {
	out, err := run(t, NewRootCmd(), "", "linearity", "--explain", "y = x")
	require.NoError(t, err)

	var res diffeq.LinearityResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Linear)
	assert.Equal(t, diffeq.StagePrecondition, res.Stage)
}

func TestLinearityCmd_ArgCount(t *testing.T) {
	_, err := run(t, NewRootCmd(), "", "linearity")
	assert.Error(t, err)
}

func TestVerifyCmd_Plot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.png")
	out, err := run(t, NewRootCmd(), "", "verify", "y' = y", "y = x**2", "--plot", path)
	require.NoError(t, err)

	var res diffeq.VerificationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.IsValid)
	assert.Equal(t, "The equation is not satisfied at x = -2. Value: -8 ≠ 0", res.Reason)

	png, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))
}

func TestToolCmd(t *testing.T) {
	out, err := run(t, NewRootCmd(), `{"tool":"normalize","params":{"equation":"y' = y"}}`, "tool")
	require.NoError(t, err)

	var resp diffeq.ToolResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "y' - (y) = 0", resp.String)

	out, err = run(t, NewRootCmd(), `{"tool":"nope"}`, "tool")
	assert.True(t, errors.Is(err, errReported))
	assert.Contains(t, out, "unknown tool: nope")

	_, err = run(t, NewRootCmd(), `{"tool":`, "tool")
	assert.Error(t, err)
}

func TestOpenCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := logging.Discard()

	store, err := openCache(ctx, config.Cache{Size: 4, TTL: time.Minute}, log)
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, store)

	path := filepath.Join(t.TempDir(), "cache.db")
	store, err = openCache(ctx, config.Cache{Size: 4, TTL: time.Minute, Path: path, Cleanup: time.Hour}, log)
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &cache.Layered{}, store)
	require.NoError(t, store.Set(ctx, "k", []byte("v")))
}

func TestOpenMetrics_Disabled(t *testing.T) {
	rec := openMetrics(context.Background(), &config.Config{}, logging.Discard())
	assert.IsType(t, &metrics.NoOp{}, rec)
}
