// Command mscli is the Materials Scholar command line: text processing,
// Scopus harvesting and access to the REST API.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

const version = "0.2.0"

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
