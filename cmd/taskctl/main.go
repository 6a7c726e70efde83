// Command taskctl is a terminal frontend for the notes task API.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
		os.Exit(1)
	}
}
