// Command junqi runs junqi query trees against JSON or YAML record files.
//
//	junqi run --tree query.json --arg 40 people.json
//	junqi extensions
//	junqi version
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
