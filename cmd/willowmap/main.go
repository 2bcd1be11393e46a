// Command willowmap opens a window with a slippy map and a marker overlay
// rendered by willowmap.
package main

import (
	"os"

	"github.com/phanxgames/willowmap/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
