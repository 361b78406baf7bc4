// Package main is the entry point for tilted, the Tilt hydrometer listener.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/tilted/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
