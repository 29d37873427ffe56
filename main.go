package main

import (
	"os"

	"github.com/agentguard/agentguard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
