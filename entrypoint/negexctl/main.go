package main

import (
	"fmt"
	"os"

	"text2phenotype.com/negex/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "negexctl:", err)
		os.Exit(1)
	}
}
