// Command syndrdb-batch loads rows into a table with a single multi-row
// INSERT and reports the keys and client-side defaults each row received.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err.Error())
		os.Exit(1)
	}
}
