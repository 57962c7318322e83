package diffeq

import (
	"fmt"
	"strings"
)

// SplitEquation splits equation on its first "=" and trims both sides.
// An equation without "=" has right-hand side "0".
func SplitEquation(equation string) (lhs, rhs string) {
	equation = strings.TrimSpace(equation)
	left, right, found := strings.Cut(equation, "=")
	if !found {
		return strings.TrimSpace(left), "0"
	}
	return strings.TrimSpace(left), strings.TrimSpace(right)
}

// Normalize rewrites equation into the single-sided form "lhs - (rhs) = 0".
//
//	Normalize("y' = y")   == "y' - (y) = 0"
//	Normalize("f(x) = 0") == "f(x) - (0) = 0"
//	Normalize("y'' + y")  == "y'' + y - (0) = 0"
func Normalize(equation string) string {
	lhs, rhs := SplitEquation(equation)
	return fmt.Sprintf("%s - (%s) = 0", lhs, rhs)
}

// residualText is the expression "(lhs) - (rhs)" whose zeros are the
// solutions of equation.
func residualText(equation string) string {
	lhs, rhs := SplitEquation(equation)
	return fmt.Sprintf("(%s) - (%s)", lhs, rhs)
}
