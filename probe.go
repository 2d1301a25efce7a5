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
	"fmt"
	"time"
)

// Names of the steps recorded in Report.Steps.
const (
	STEP_CONNECT        = "connect"
	STEP_SESSION        = "session"
	STEP_STREAM_CONNECT = "stream_connect"
	STEP_PAYLOAD        = "payload"
	STEP_VERDICT        = "verdict"
)

// Check runs the liveness exchange once and classifies the daemon:
//  1. connect to the control endpoint
//  2. send STREAM and read the "PORT <n>" reply
//  3. connect to the stream port and write the EICAR test file, then close it
//  4. read the verdict on the control connection
//
// Every step is bounded by the probe timeout. Check never returns an error; a failed
// step ends the check with OutcomeUnreachable and the cause in Report.Err.
func (c *Clamd) Check() *Report {
	report := &Report{Steps: make(map[string]time.Duration, 5)}
	c.check(report)
	c.metrics.observe(report)

	if report.Outcome == OutcomeUnreachable {
		c.logger.Error("check failed", "endpoint", c.endpoint, "error", report.Err)
	} else {
		c.logger.Info("check finished", "endpoint", c.endpoint, "outcome", report.Outcome, "verdict", report.Result.Raw)
	}

	return report
}

func (c *Clamd) check(report *Report) {
	if c.endpointErr != nil {
		report.unreachable(fmt.Errorf("%w: %w", ErrConnect, c.endpointErr))
		return
	}

	start := time.Now()
	conn, err := dial(c.endpoint, c.timeout)
	report.Steps[STEP_CONNECT] = time.Since(start)
	if err != nil {
		report.unreachable(fmt.Errorf("%w: %w", ErrConnect, err))
		return
	}
	defer conn.Close()

	start = time.Now()
	port, err := c.requestSession(conn)
	report.Steps[STEP_SESSION] = time.Since(start)
	if err != nil {
		report.unreachable(err)
		return
	}
	report.Port = port
	c.logger.Info("stream session granted", "port", port)

	if err := c.sendPayload(report, port); err != nil {
		report.unreachable(err)
		return
	}

	start = time.Now()
	verdict, err := conn.receive(MAX_LINE)
	report.Steps[STEP_VERDICT] = time.Since(start)
	if err != nil {
		report.unreachable(fmt.Errorf("verdict: %w", err))
		return
	}

	report.Verdict = verdict
	report.Result = parseResult(verdict)
	report.Outcome = Classify(verdict, c.signature)
}

// requestSession sends STREAM and returns the port announced by the daemon.
func (c *Clamd) requestSession(conn *CLAMDConn) (int, error) {
	if err := conn.sendCommand(STREAM_COMMAND); err != nil {
		return 0, fmt.Errorf("STREAM command: %w", err)
	}

	reply, err := conn.receive(MAX_LINE)
	if err != nil {
		return 0, fmt.Errorf("STREAM reply: %w", err)
	}

	return parsePort(reply)
}

// sendPayload writes the test file to the stream port. The stream connection is
// closed before returning, whatever the outcome of the write.
func (c *Clamd) sendPayload(report *Report, port int) error {
	start := time.Now()
	stream, err := dial(TCPEndpoint(c.streamHost, port), c.timeout)
	report.Steps[STEP_STREAM_CONNECT] = time.Since(start)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStreamConnect, err)
	}

	start = time.Now()
	err = stream.send(EICAR)
	stream.Close()
	report.Steps[STEP_PAYLOAD] = time.Since(start)
	if err != nil {
		return fmt.Errorf("stream: %w", err)
	}

	return nil
}
