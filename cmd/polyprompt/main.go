// Command polyprompt sends one prompt to many LLM providers at once, streams
// a single agent's answer, or serves both over HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
