package diffeq

import (
	"fmt"
	"strings"

	"github.com/njchilds90/diffeq/expr"
)

// Unknown function and independent variable of every equation.
const (
	FuncName = "y"
	VarName  = "x"
)

// maxOrder is the highest derivative order the linearity analysis inspects.
const maxOrder = 3

// coefficient extracts the coefficient of term^1 in e. Tests replace it.
var coefficient = func(e, term expr.Expr) expr.Expr { return expr.Coeff(e, term, 1) }

// Stage names the step of CheckLinearity that produced the verdict.
type Stage string

const (
	StageLexical      Stage = "lexical"
	StagePrecondition Stage = "precondition"
	StageSymbolic     Stage = "symbolic"
	StageFallback     Stage = "fallback"
)

// LinearityResult is the verdict of CheckLinearity with the step that decided
// it and a human-readable reason.
type LinearityResult struct {
	Linear bool   `json:"linear"`
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason"`
}

// ClassifyLinearity reports whether equation is a linear ODE in y(x).
func ClassifyLinearity(equation string) bool {
	return CheckLinearity(equation).Linear
}

// CheckLinearity classifies equation in three steps:
//
//  1. a lexical screen for obviously non-linear terms (DetectNonlinear)
//  2. a precondition that the equation mentions y' at all
//  3. a symbolic check that y, y', y'' and y''' appear only to the first
//     power, with coefficients free of y, and never inside a function
//
// If step 3 cannot parse the equation the verdict falls back to linear,
// since step 1 already passed. A failure while inspecting coefficients is
// non-linear.
func CheckLinearity(equation string) (res LinearityResult) {
	defer func() {
		if r := recover(); r != nil {
			res = LinearityResult{Stage: StageSymbolic, Reason: fmt.Sprintf("analysis failed: %v", r)}
		}
	}()

	equation = strings.ReplaceAll(equation, "′", "'")
	if p, found := DetectNonlinear(equation); found {
		return LinearityResult{Stage: StageLexical, Reason: fmt.Sprintf("contains the non-linear term %q", p)}
	}
	if !strings.Contains(equation, FuncName+"'") {
		return LinearityResult{Stage: StagePrecondition, Reason: "not a differential equation: no derivative of y"}
	}

	e, err := expr.Parse(residualText(equation), expr.WithFunction(FuncName, VarName))
	if err != nil {
		return LinearityResult{
			Linear: true,
			Stage:  StageFallback,
			Reason: fmt.Sprintf("symbolic analysis unavailable (%v); no non-linear terms found", err),
		}
	}
	return symbolicLinearity(e)
}

func symbolicLinearity(e expr.Expr) (res LinearityResult) {
	defer func() {
		if r := recover(); r != nil {
			res = LinearityResult{Stage: StageSymbolic, Reason: fmt.Sprintf("coefficient analysis failed: %v", r)}
		}
	}()

	for order := 0; order <= maxOrder; order++ {
		term := expr.D(FuncName, VarName, order)
		if !expr.Has(e, term) {
			continue
		}
		c := coefficient(e, term)
		if expr.HasFunc(c, FuncName) {
			return LinearityResult{
				Stage:  StageSymbolic,
				Reason: fmt.Sprintf("the coefficient of %s depends on y: %s", term, c),
			}
		}
	}

	if node, ok := nonlinearNode(e); ok {
		return LinearityResult{Stage: StageSymbolic, Reason: fmt.Sprintf("non-linear term %s", node)}
	}
	return LinearityResult{Linear: true, Stage: StageSymbolic, Reason: "linear in y and its derivatives"}
}

// nonlinearNode finds a subtree that keeps y from appearing linearly: a power
// of a y-term other than 1, a y-term in an exponent, or a function of a y-term.
func nonlinearNode(e expr.Expr) (expr.Expr, bool) {
	var found expr.Expr
	expr.Any(e, func(n expr.Expr) bool {
		switch v := n.(type) {
		case *expr.Pow:
			if expr.HasFunc(v.ExpExpr(), FuncName) {
				found = v
			} else if expr.HasFunc(v.Base(), FuncName) && !v.ExpExpr().Equal(expr.N(1)) {
				found = v
			}
		case *expr.Func:
			if expr.HasFunc(v.Arg(), FuncName) {
				found = v
			}
		}
		return found != nil
	})
	return found, found != nil
}
