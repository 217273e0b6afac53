package main

import (
	"os"

	"github.com/clauselens/clauselens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
