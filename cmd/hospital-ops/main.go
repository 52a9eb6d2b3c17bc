// ============================================================================
// hospital-ops entry point
// ============================================================================
//
// All behaviour lives in internal/cli. main only runs the command tree and
// maps its error to the exit status.
//
// Build:
//   go build -o bin/hospital-ops ./cmd/hospital-ops
//
// Version injection:
//   go build -ldflags "-X main.version=1.0.0 -X main.commit=$(git rev-parse HEAD)" ./cmd/hospital-ops
//
// ============================================================================

package main

import (
	"fmt"
	"os"

	"github.com/ChuLiYu/hospital-ops/internal/cli"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", r)
			os.Exit(1)
		}
	}()

	rootCmd := cli.BuildCLI()
	if version != "dev" {
		rootCmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
