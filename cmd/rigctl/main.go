package main

import (
	"io"
	"log"
	"os"
)

// Version information, set during build
var version = "dev"

func main() {
	// Library warnings are for the sandbox log, not CLI output
	log.SetOutput(io.Discard)

	if err := newRootCmd(version).Execute(); err != nil {
		os.Exit(1)
	}
}
