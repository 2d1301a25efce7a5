/*
Open Source Initiative OSI - The MIT License (MIT):Licensing

The MIT License (MIT)
Copyright (c) 2013 DutchCoders <http://github.com/dutchcoders/>

Permission is hereby granted, free of charge, to any person obtaining a copy of
this software and associated documentation files (the "Software"), to deal in
the Software without restriction, including without limitation the rights to
use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
of the Software, and to permit persons to whom the Software is furnished to do
so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package cli implements the clamdmon command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/IntelXLabs-LLC/clamdmon"
	"github.com/IntelXLabs-LLC/clamdmon/internal/logger"
)

// Options holds CLI-level configuration.
type Options struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool
	// Check runs one probe against endpoint. Defaults to a clamd.Clamd with compiled-in settings.
	Check func(endpoint clamd.Endpoint, log clamd.Logger) *clamd.Report
}

// Run parses args, runs the check and prints its message. It returns the process
// exit status: see clamd.Outcome.ExitCode for the mapping. Bad usage, including
// -h, prints the usage line to stdout and returns 1.
func Run(args []string, opts Options) int {
	opts = withDefaults(opts)
	if args == nil {
		args = []string{}
	}

	var (
		report    *clamd.Report
		wantsHelp bool
	)

	root := NewRootCmd(opts, &report)
	root.SetArgs(args)
	root.SetHelpFunc(func(*cobra.Command, []string) { wantsHelp = true })

	if err := root.Execute(); err != nil || wantsHelp || report == nil {
		fmt.Fprintf(opts.Stdout, "usage: %s\n", root.UseLine())
		return 1
	}

	if msg := report.Message(); msg != "" {
		fmt.Fprintln(opts.Stdout, msg)
	}
	return report.Outcome.ExitCode()
}

// NewRootCmd wires the cobra root command. The report of the check it runs is stored in report.
func NewRootCmd(opts Options, report **clamd.Report) *cobra.Command {
	var socket string

	root := &cobra.Command{
		Use:   "clamdmon [-p socket]",
		Short: "Check that the ClamAV daemon still detects the EICAR test file",
		Long: "clamdmon asks clamd for a STREAM session, sends it the EICAR test file and checks the verdict.\n" +
			"Without -p it connects to " + clamd.DefaultEndpoint().Address + ".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := clamd.DefaultEndpoint()
			if cmd.Flags().Changed("path") {
				endpoint = clamd.UnixEndpoint(socket)
			}

			var log clamd.Logger
			if opts.Verbose {
				log = logger.NewStderr(opts.Stderr)
			}

			*report = opts.Check(endpoint, log)
			return nil
		},
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		SilenceErrors:         true,
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	root.Flags().StringVarP(&socket, "path", "p", "", "connect to the clamd Unix socket at this path instead of TCP")

	return root
}

func withDefaults(opts Options) Options {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Check == nil {
		opts.Check = check
	}
	return opts
}

func check(endpoint clamd.Endpoint, log clamd.Logger) *clamd.Report {
	return clamd.NewClamdEndpoint(endpoint, clamd.WithLogger(log)).Check()
}
