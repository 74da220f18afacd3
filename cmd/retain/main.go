// Command retain validates retain.yaml files and runs an interactive
// terminal demo of the layout, routing and focus core.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/retain/cmd/retain/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
