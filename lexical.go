package diffeq

import "strings"

// Substrings that make an equation non-linear on sight, grouped by the
// highest derivative order they mention. Checked in order, first hit wins.
var nonlinearPatterns = [][]string{
	{
		"y**", "y^", "y*y",
		"sin(y)", "cos(y)", "tan(y)",
		"exp(y)", "e^y", "e**y",
		"log(y)", "ln(y)",
		"/y", "1/y",
	},
	{
		"y'**", "y'^", "y'*y'",
		"sin(y')", "cos(y')", "tan(y')",
		"exp(y')", "e^y'", "e**y'",
		"y*y'",
	},
	{
		"y''**", "y''^", "y''*y''",
		"sin(y'')", "cos(y'')", "tan(y'')",
		"exp(y'')", "e^y''", "e**y''",
		"e^(y'')", "e**(y'')",
		"y*y''", "y'*y''",
	},
	{
		"y'''**", "y'''^", "y'''*y'''",
		"sin(y''')", "e^y'''",
		"y*y'''", "y'*y'''", "y''*y'''",
	},
}

// allPatterns lists every pattern in ASCII-apostrophe spelling followed by
// the same list with unicode primes.
var allPatterns = func() []string {
	var ascii []string
	for _, group := range nonlinearPatterns {
		ascii = append(ascii, group...)
	}
	out := append([]string{}, ascii...)
	for _, p := range ascii {
		out = append(out, strings.ReplaceAll(p, "'", "′"))
	}
	return out
}()

// DetectNonlinear reports the first known non-linear pattern in equation.
// Unicode primes are folded to apostrophes first, so "y′^2" matches "y'^".
//
// The check is purely textual: "ymax^2" matches "y^" too.
func DetectNonlinear(equation string) (pattern string, found bool) {
	equation = strings.ReplaceAll(equation, "′", "'")
	for _, p := range allPatterns {
		if strings.Contains(equation, p) {
			return p, true
		}
	}
	return "", false
}
