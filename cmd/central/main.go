// Command central is the command-line front end to the date reasoning
// service: natural-language date parsing, recurrence validation and
// expansion, and due-date bucketing. All output is JSON.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
