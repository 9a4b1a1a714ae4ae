package main

import (
	"os"

	"github.com/tplslim/tplslim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
