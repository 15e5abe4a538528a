package main

import (
	"os"

	"github.com/penwyp/go-health-monitor/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
