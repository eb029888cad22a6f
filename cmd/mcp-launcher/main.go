package main

import (
	"os"

	"github.com/viant/mcp-launcher/launcher"
)

func main() {
	if err := launcher.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
