// Command appearances inspects and serves native appearance data.
package main

import (
	"os"

	"github.com/opencode-ai/appearances/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
