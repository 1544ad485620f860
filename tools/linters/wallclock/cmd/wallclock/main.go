// Command wallclock runs the wallclock analyzer.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/rezkam/central/tools/linters/wallclock"
)

func main() {
	singlechecker.Main(wallclock.Analyzer)
}
