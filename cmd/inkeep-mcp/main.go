// Command inkeep-mcp serves the Inkeep documentation tools over MCP.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
