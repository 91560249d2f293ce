package main

import (
	"os"

	"github.com/bbq191/pythonest/cmd/pythonest/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
