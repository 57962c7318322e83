// Package cli holds the cobra commands behind the diffeq binaries.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// errReported marks a failure whose output has already been written.
var errReported = errors.New("reported")

// NewRootCmd builds the diffeq command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "diffeq",
		Short: "Classify ODEs as linear and verify proposed solutions",
		Long: `diffeq analyses ordinary differential equations in y(x).

It classifies an equation as linear or non-linear, checks whether a
function y = f(x) solves it, plots the candidate solution, and serves the
same operations over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newLinearityCmd(),
		newVerifyCmd(),
		newToolCmd(),
		newServeCmd(),
	)
	return root
}

// Execute runs cmd with the process arguments and exits non-zero on failure.
func Execute(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// writeJSON prints v on one line without HTML escaping.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
