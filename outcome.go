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

package clamd

import (
	"strings"
	"time"
)

// Outcome is the result of a single check.
type Outcome int

const (
	// OutcomeUnreachable means a connect, send or receive step failed.
	OutcomeUnreachable Outcome = iota
	// OutcomeUnhealthy means the daemon answered the whole exchange but did not flag the test file.
	OutcomeUnhealthy
	// OutcomeHealthy means the daemon flagged the EICAR test file.
	OutcomeHealthy
)

// UNHEALTHY_MESSAGE is printed when the daemon answers but no longer detects the test file.
const UNHEALTHY_MESSAGE = "Looks like ClamAV daemon is not OK. Check up database integrity and restart daemon"

// UNREACHABLE_PREFIX starts the message printed when the daemon status could not be verified.
const UNREACHABLE_PREFIX = "Could not verify ClamAV daemon status"

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeHealthy:
		return "healthy"
	case OutcomeUnhealthy:
		return "unhealthy"
	case OutcomeUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// ExitCode maps the outcome to the process exit status.
//
// The mapping is inverted on purpose and relied upon by existing monitoring:
// only an unhealthy daemon exits 0, while both a healthy and an unreachable
// daemon exit 1. Callers tell those two apart by the printed message.
func (o Outcome) ExitCode() int {
	if o == OutcomeUnhealthy {
		return 0
	}
	return 1
}

// Classify decides whether a verdict received over a working connection
// shows the daemon detecting the test file.
func Classify(verdict, signature string) Outcome {
	if strings.Contains(verdict, signature) {
		return OutcomeHealthy
	}
	return OutcomeUnhealthy
}

// Report describes a finished check.
type Report struct {
	Outcome Outcome
	// Err is the transport or protocol failure behind an unreachable outcome.
	Err error
	// Port is the ephemeral stream port announced by the daemon, 0 if none was learned.
	Port int
	// Verdict is the raw response to the scanned stream.
	Verdict string
	// Result is Verdict parsed as a clamd result line, nil when no verdict was received.
	Result *ScanResult
	// Steps holds the duration of each step that was attempted.
	Steps map[string]time.Duration
}

// Message is the line printed on stdout for the outcome; empty for a healthy daemon.
func (r *Report) Message() string {
	switch r.Outcome {
	case OutcomeUnhealthy:
		return UNHEALTHY_MESSAGE
	case OutcomeUnreachable:
		if r.Err == nil {
			return UNREACHABLE_PREFIX
		}
		return UNREACHABLE_PREFIX + ": " + r.Err.Error()
	default:
		return ""
	}
}

func (r *Report) unreachable(err error) *Report {
	r.Outcome = OutcomeUnreachable
	r.Err = err
	return r
}
