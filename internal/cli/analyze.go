package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/njchilds90/diffeq"
)

func newLinearityCmd() *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "linearity EQUATION",
		Short: "Report whether an equation is linear",
		Example: `  diffeq linearity "y'' + 3*y' + 2*y = 0"
  diffeq linearity --explain "y' = y^2"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if explain {
				return writeJSON(cmd.OutOrStdout(), diffeq.CheckLinearity(args[0]))
			}
			return writeJSON(cmd.OutOrStdout(), diffeq.LinearityResponse(args[0]))
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "Print the deciding stage and reason instead of the message")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var plotPath string
	cmd := &cobra.Command{
		Use:     "verify EQUATION SOLUTION",
		Short:   "Check whether y = f(x) solves an equation",
		Example: `  diffeq verify "y' = y" "y = exp(x)" --plot solution.png`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			de, solution := args[0], args[1]
			if plotPath == "" {
				return writeJSON(cmd.OutOrStdout(), diffeq.VerificationResponse(de, solution))
			}
			if err := os.WriteFile(plotPath, diffeq.RenderPlot(de, solution), 0o644); err != nil {
				return fmt.Errorf("writing plot: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), diffeq.VerifySolution(de, solution))
		},
	}
	cmd.Flags().StringVar(&plotPath, "plot", "", "Write the plot PNG to this file and print the bare verdict")
	return cmd
}

// NewCheckLinearityCmd is the single-purpose check-linearity binary: one
// equation in, one JSON response out.
func NewCheckLinearityCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "check-linearity EQUATION",
		Short:         "Print whether an ODE is linear as JSON",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) < 1 {
				_ = writeJSON(out, diffeq.ErrorResponse("No equation provided"))
				return errReported
			}
			return writeJSON(out, diffeq.LinearityResponse(args[0]))
		},
	}
}

// NewVerifySolutionCmd is the single-purpose verify-solution binary.
func NewVerifySolutionCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "verify-solution EQUATION SOLUTION",
		Short:         "Print whether y = f(x) solves an ODE as JSON, with a plot",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) < 2 {
				_ = writeJSON(out, diffeq.ErrorResponse("Both differential equation and solution must be provided"))
				return errReported
			}
			return writeJSON(out, diffeq.VerificationResponse(args[0], args[1]))
		},
	}
}
