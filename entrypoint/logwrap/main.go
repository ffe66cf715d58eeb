package main

import (
	"fmt"
	"os"

	"text2phenotype.com/negex/logger"
)

// negex-logwrap runs the negex service and turns its panic output into a
// JSON log record.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: negex-logwrap EXECUTABLE [ARGS...]")
		os.Exit(2)
	}
	logger.SetupLogging()
	logger.WrapProcess(os.Args[1], os.Args[2:]...)
}
