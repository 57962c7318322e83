// cmd/mcp-server/main.go: Standalone HTTP server for diffeq
//
// Exposes the diffeq tools and the web form endpoints for AI agent
// frameworks and browsers.
//
// Usage:
//
//	go run ./cmd/mcp-server --port 8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Form endpoints:     POST /check_linearity, POST /verify_solution
package main

import "github.com/njchilds90/diffeq/internal/cli"

func main() {
	cli.Execute(cli.NewServeCmd())
}
