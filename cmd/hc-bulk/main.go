package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hctools/hc-bulk/internal/cli"
	"github.com/hctools/hc-bulk/internal/utils"
)

func main() {
	root := cli.NewRootCommand()
	err := root.Execute()
	if err == nil {
		return
	}

	var runErr *cli.RunError
	var usageErr *utils.UsageError
	switch {
	case errors.As(err, &runErr):
		// Every item was attempted; the count covers the failures.
		fmt.Fprintln(os.Stderr, runErr.Error())
		os.Exit(1)
	case errors.As(err, &usageErr):
		fmt.Fprintf(os.Stderr, "Error: %s\n", usageErr.Error())
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
