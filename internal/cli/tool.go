package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/diffeq"
)

func newToolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tool",
		Short: "Execute one JSON tool call read from stdin",
		Long: `Read a tool call such as

  {"tool": "verify_solution", "params": {"de": "y' = y", "solution": "y = exp(x)"}}

from stdin and print the tool response. "diffeq tool <<< '{"tool":"tool_spec"}'"
lists every tool.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dec := json.NewDecoder(cmd.InOrStdin())
			dec.DisallowUnknownFields()

			var req diffeq.ToolRequest
			if err := dec.Decode(&req); err != nil {
				return fmt.Errorf("decoding tool call: %w", err)
			}
			resp := diffeq.HandleToolCall(req)
			if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if resp.Error != "" {
				return errReported
			}
			return nil
		},
	}
}
