package main

import (
	"os"

	"github.com/mvoronin/gotar/internal/tarball"
)

// main is the entrypoint. Argument parsing and command handling live in the
// tarball package; main only maps the result to a process exit code.
func main() {
	os.Exit(tarball.Run(os.Args[1:], os.Stdout, os.Stderr))
}
