package tarball

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// EnvPass names the environment variable holding the passphrase for
// encrypted (.aes) archives.
const EnvPass = "GOTAR_PASS"

// Exit codes returned by Run.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// app holds the parsed flag state for one invocation.
type app struct {
	add, create, list, extract bool
	file                       string
	verbose                    bool

	// dispatched flips once flag parsing succeeded and run started, so Run
	// can tell parse-time failures (usage) from operation failures.
	dispatched bool
}

// Run executes the CLI and returns the process exit code. Usage errors print
// the error plus help text and exit 2; operation failures exit 1.
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "gotar:", err)
		var uerr *UsageError
		if !a.dispatched || errors.As(err, &uerr) {
			fmt.Fprint(stderr, cmd.UsageString())
			return exitUsage
		}
		return exitFailure
	}
	return exitOK
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gotar [-a | -c | -t | -x] -f FILE [-v] [file/dir]",
		Short: "create, add to, list and extract tar archives",
		Long: `gotar packs files and directories into tar archives and unpacks them again.

The archive extension selects the container codec: .tar is plain,
.tgz/.tar.gz is gzip, .tzst/.tar.zst is zstd. A trailing .aes adds
OpenSSL-compatible AES-256-CBC encryption with the passphrase taken
from the ` + EnvPass + ` environment variable.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.run,
	}
	cmd.Flags().BoolVarP(&a.add, "add", "a", false, "add file to the tar archive")
	cmd.Flags().BoolVarP(&a.create, "create", "c", false, "create a tar archive")
	cmd.Flags().BoolVarP(&a.list, "list", "t", false, "list the contents of an archive")
	cmd.Flags().BoolVarP(&a.extract, "extract", "x", false, "extract files from an archive")
	cmd.Flags().StringVarP(&a.file, "file", "f", "", "in/out tar file")
	cmd.Flags().BoolVarP(&a.verbose, "verbose", "v", false, "print each processed entry name")
	cmd.MarkFlagsMutuallyExclusive("add", "create", "list", "extract")
	return cmd
}

// run validates the mode/argument combination and dispatches to exactly one
// archive operation.
func (a *app) run(cmd *cobra.Command, args []string) error {
	a.dispatched = true

	modes := 0
	for _, on := range []bool{a.add, a.create, a.list, a.extract} {
		if on {
			modes++
		}
	}
	if modes == 0 {
		return usageErrorf("one of -a, -c, -t or -x is required")
	}
	if a.file == "" {
		return usageErrorf("the -f/--file flag is required")
	}
	var source string
	if len(args) == 1 {
		source = args[0]
	}
	if source == "" && (a.create || a.add) {
		return usageErrorf("a file or directory argument is required")
	}

	opts := Options{
		Verbose:    a.verbose,
		Passphrase: []byte(os.Getenv(EnvPass)),
		Stdout:     cmd.OutOrStdout(),
	}
	switch {
	case a.create:
		return NewWriter(a.file, opts).Create(source)
	case a.add:
		return NewWriter(a.file, opts).Add(source)
	case a.list:
		return NewReader(a.file, opts).List()
	default:
		dest := source
		if dest == "" {
			dest = "."
		}
		return NewReader(a.file, opts).Extract(dest)
	}
}
