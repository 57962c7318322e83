// cmd/verify-solution/main.go: checks a proposed ODE solution, prints JSON
//
// Usage:
//
//	verify-solution "y' = y" "y = exp(x)"
//	{"status":"success","message":"...","plot_url":"data:image/png;base64,..."}
//
// Exits 1 unless both the equation and the solution are given.
package main

import "github.com/njchilds90/diffeq/internal/cli"

func main() {
	cli.Execute(cli.NewVerifySolutionCmd())
}
