// distil - perceptual palette distillation
//
// distil reduces an image to a short list of perceptually distinct dominant
// colours, ranked by how much of the image they cover.
package main

import (
	"os"

	"github.com/jmylchreest/distil/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
