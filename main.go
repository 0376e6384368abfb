package main

import (
	"fmt"
	"os"

	"github.com/prateeksi/gupshup/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
