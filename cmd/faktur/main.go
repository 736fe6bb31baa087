package main

import (
	"fmt"
	"os"

	"github.com/fakturlu/faktur-accounting/cmd/faktur/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
