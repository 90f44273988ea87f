// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for fxview.
//
// Usage:
//
//	go run . [flags]
//	./fxview [flags]
//
// Without a subcommand this launches the interactive converter. See --help
// for options.
package main

import (
	"log"
	"os"

	"github.com/toeirei/fxview/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("fxview: %v", err)
		os.Exit(1)
	}
}
