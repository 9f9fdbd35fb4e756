// Package main provides the entry point for the a11yscan CLI.
//
// a11yscan checks public web pages against a fixed set of accessibility
// rules. It runs as a one-shot CLI, an HTTP API, or an MCP server.
package main

func main() {
	Execute()
}
