// macroplan runs the energy and macro engine from the command line, without a
// database. Useful for checking a client's numbers before entering them.
// Usage: go run ./cmd/macroplan plan --weight 90 --goal-weight 80 --bmr 1880 ...
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Getenv).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
