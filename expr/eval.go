package expr

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	// ErrDomain is returned when evaluation leaves the real numbers:
	// NaN, ±Inf, ln of a non-positive value, 0^-1 and the like.
	ErrDomain = errors.New("expr: value outside the real domain")
	// ErrUnbound is returned when a symbol has no value in the Env, or when
	// an unknown-function node is evaluated.
	ErrUnbound = errors.New("expr: unbound symbol")
)

// Env binds symbol names to values for Eval.
type Env map[string]float64

func finite(v float64, at Expr) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s", ErrDomain, at)
	}
	return v, nil
}

func unbound(name string) error {
	return fmt.Errorf("%w: %s", ErrUnbound, name)
}

// Evaluator compiles e into a function of the single variable v. It fails
// with ErrUnbound when e mentions any other symbol or an unknown function.
func Evaluator(e Expr, v string) (func(float64) (float64, error), error) {
	var extra []string
	for name := range FreeSymbols(e) {
		if name != v {
			extra = append(extra, name)
		}
	}
	Any(e, func(n Expr) bool {
		if d, ok := n.(*Deriv); ok {
			extra = append(extra, d.String())
		}
		return false
	})
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: %s", ErrUnbound, strings.Join(extra, ", "))
	}
	return func(x float64) (float64, error) {
		return e.Eval(Env{v: x})
	}, nil
}
