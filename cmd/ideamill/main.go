package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0
	ExitError   = 1 // Configuration or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitError)
	}
}
