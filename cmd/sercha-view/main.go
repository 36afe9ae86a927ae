// Command sercha-view searches a document corpus and serves highlighted
// copies of the matching documents.
package main

import (
	"os"

	"github.com/custodia-labs/sercha-view/internal/adapters/driving/cli"
)

// Set by the release build.
var version = ""

func main() {
	if err := cli.Execute(version, load); err != nil {
		os.Exit(1)
	}
}
