package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes.
const (
	ExitSuccess     = 0 // all checks passed
	ExitCheckFailed = 1 // one or more checks failed or errored
	ExitError       = 2 // configuration or runtime error
)

// CheckFailureError indicates that the report ran to completion,
// but one or more checks failed or could not be evaluated.
type CheckFailureError struct {
	Message string
}

func (e *CheckFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var failure *CheckFailureError
		if errors.As(err, &failure) {
			os.Exit(ExitCheckFailed)
		}
		os.Exit(ExitError)
	}
}
