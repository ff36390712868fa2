package main

import (
	"os"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
