package diffeq

import (
	"fmt"
	"math"
	"strconv"

	"github.com/njchilds90/diffeq/expr"
)

// SamplePoints are the x values at which VerifySolution evaluates the
// residual, in reporting order.
var SamplePoints = []float64{-2, -1, -0.5, 0, 0.5, 1, 2}

const (
	// Tolerance is the largest residual magnitude (exclusive) that counts
	// as zero.
	Tolerance = 1e-6
	// MinValidPoints is how many sample points must pass for a solution to
	// be accepted.
	MinValidPoints = 4
)

// VerificationResult is the outcome of VerifySolution.
type VerificationResult struct {
	IsValid bool   `json:"is_valid"`
	Reason  string `json:"reason"`
}

// VerifySolution checks whether solution, written "y = f(x)", satisfies the
// differential equation de. Every derivative of y in de is replaced by the
// matching derivative of f, and the residual lhs - rhs is sampled at
// SamplePoints. Points where the residual cannot be evaluated are skipped.
func VerifySolution(de, solution string) (res VerificationResult) {
	defer func() {
		if r := recover(); r != nil {
			res = VerificationResult{Reason: fmt.Sprintf(
				"Verification failed. The algorithm couldn't determine if this is a valid solution. Error: %v", r)}
		}
	}()

	text, ok := expr.AssignedValue(solution, FuncName)
	if !ok {
		return VerificationResult{Reason: "Solution must be in the form 'y = f(x)'"}
	}
	f, err := expr.Parse(text)
	if err != nil {
		return VerificationResult{Reason: fmt.Sprintf(
			"Could not parse the solution. Try using standard notation. (%v)", err)}
	}

	eq, err := expr.Parse(residualText(de), expr.WithFunction(FuncName, VarName))
	if err != nil {
		return VerificationResult{Reason: fmt.Sprintf("Could not evaluate the equation with your solution: %v", err)}
	}
	residual := expr.SubstituteFunc(eq, FuncName, f)
	return sampleResidual(residual)
}

func sampleResidual(residual expr.Expr) VerificationResult {
	valid := 0
	var witness *[2]float64
	for _, x := range SamplePoints {
		v, err := residual.Eval(expr.Env{VarName: x})
		if err != nil {
			continue
		}
		if withinTolerance(v) {
			valid++
		} else if witness == nil {
			witness = &[2]float64{x, v}
		}
	}

	if valid >= MinValidPoints {
		return VerificationResult{IsValid: true, Reason: fmt.Sprintf("Solution verified at %d different points.", valid)}
	}
	if witness != nil {
		return VerificationResult{Reason: fmt.Sprintf("The equation is not satisfied at x = %s. Value: %s ≠ 0",
			formatFloat(witness[0]), formatFloat(witness[1]))}
	}
	return VerificationResult{Reason: "Could not verify the solution at enough points."}
}

func withinTolerance(v float64) bool {
	return math.Abs(v) < Tolerance
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
