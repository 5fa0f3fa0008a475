// Command nodeward serves and previews the Nodeward landing page.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/nodeward/cmd/nodeward/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
