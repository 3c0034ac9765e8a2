package main

import (
	"fmt"
	"os"

	"consoled/internal/democtl"
)

func main() {
	if err := democtl.BuildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "democtl:", err)
		os.Exit(1)
	}
}
