// Command harness executes the bundled test runs and reports
// their results.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		var fe *failuresError
		if !errors.As(err, &fe) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
