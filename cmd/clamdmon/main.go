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

// Command clamdmon checks that a local ClamAV daemon is alive and still detects malware.
//
// Usage:
//
//	clamdmon [-p socket]
//
// Without -p it connects to clamd on 127.0.0.1:3310; with -p it uses the Unix socket
// at the given path. It requests a STREAM session, sends the EICAR test file and reads
// the verdict.
//
// Exit status and output:
//
//	daemon detects EICAR         no output                                 exit 1
//	daemon answers, no detection "Looks like ClamAV daemon is not OK ..."  exit 0
//	connect/send/receive failed  "Could not verify ClamAV daemon status: ..." exit 1
//	bad usage                    "usage: clamdmon [-p socket]"             exit 1
//
// Exit status 0 means the daemon needs attention; a healthy daemon also exits 1, so
// scripts must look at the output to tell it apart from an unreachable one.
//
// Set CLAMDMON_DEBUG=1 to log each step to stderr.
package main

import (
	"os"
	"strings"

	"github.com/IntelXLabs-LLC/clamdmon"
	"github.com/IntelXLabs-LLC/clamdmon/internal/cli"
)

func main() {
	clamd.IgnoreBrokenPipe()

	os.Exit(cli.Run(os.Args[1:], cli.Options{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Verbose: isVerbose(),
	}))
}

func isVerbose() bool {
	v := os.Getenv("CLAMDMON_DEBUG")
	return v == "1" || strings.EqualFold(v, "true")
}
