package main

import (
	"os"

	"github.com/mle-tools/mle-monitor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
