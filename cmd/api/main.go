package main

import (
	"os"

	"github.com/BruksfildServices01/therapy-scheduler/cmd/api/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
