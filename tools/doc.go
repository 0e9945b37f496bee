// Package tools defines the tool interfaces exposed over MCP, their registration
// with the server and the result helpers shared by tool implementations.
package tools
