// cmd/diffeq/main.go: diffeq command-line tool
//
// Usage:
//
//	diffeq linearity "y'' + 3*y' + 2*y = 0"
//	diffeq verify "y' = y" "y = exp(x)" --plot out.png
//	echo '{"tool":"tool_spec"}' | diffeq tool
//	diffeq serve --port 5001
package main

import "github.com/njchilds90/diffeq/internal/cli"

func main() {
	cli.Execute(cli.NewRootCmd())
}
