// cmd/check-linearity/main.go: prints whether one ODE is linear as JSON
//
// Usage:
//
//	check-linearity "y'' + y = 0"
//	{"status":"success","message":"The differential equation 'y'' + y = 0' is linear."}
//
// Exits 1 when no equation is given.
package main

import "github.com/njchilds90/diffeq/internal/cli"

func main() {
	cli.Execute(cli.NewCheckLinearityCmd())
}
