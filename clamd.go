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

// Package clamd checks that a ClamAV daemon (clamd) is alive and still detects malware.
// It asks the daemon for a STREAM session over its TCP or Unix socket interface, pushes the
// EICAR test file through the ephemeral stream port and expects the daemon to flag it.
package clamd

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Constants representing possible scan result statuses.
const (
	// RES_OK indicates that no virus was found.
	RES_OK = "OK"
	// RES_FOUND indicates that a virus was found.
	RES_FOUND = "FOUND"
	// RES_ERROR indicates that an error occurred during scanning.
	RES_ERROR = "ERROR"
	// RES_PARSE_ERROR indicates that the verdict line could not be parsed.
	RES_PARSE_ERROR = "PARSE ERROR"
)

// STREAM_COMMAND asks clamd to open an ephemeral port and scan whatever is written to it.
const STREAM_COMMAND = "STREAM"

// EICAR_SIGNATURE is the part of the verdict clamd prints when it recognises the EICAR test file.
const EICAR_SIGNATURE = "Eicar-Test-Signature FOUND"

// EICAR is the EICAR test file, which is a standard test file used to verify that antivirus software is working correctly.
// It is not a virus, but it is detected as one by antivirus software.
var EICAR = []byte(`X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`)

// resultRegex splits a verdict line into path, description, virus hash, virus size and status.
var resultRegex = regexp.MustCompile(
	`^(?P<path>[^:]+): ((?P<desc>[^:]+)(\((?P<virhash>([^:]+)):(?P<virsize>\d+)\))? )?(?P<status>FOUND|ERROR|OK)$`,
)

// ScanResult is a verdict line as reported by clamd.
type ScanResult struct {
	// Raw is the verdict line without trailing whitespace.
	Raw string
	// Description is the signature name or error text.
	Description string
	// Path is the scanned object, "stream" for STREAM sessions.
	Path string
	// Hash is the hash of the virus if found.
	Hash string
	// Size is the size of the virus if found.
	Size int
	// Status is one of the RES_* constants.
	Status string
}

// Clamd is a liveness probe for a single ClamAV daemon.
type Clamd struct {
	endpoint    Endpoint
	endpointErr error
	streamHost  string
	timeout     time.Duration
	signature   string
	logger      Logger
	metrics     *Metrics
}

// Option customises a Clamd probe.
type Option func(*Clamd)

// WithTimeout sets the deadline applied to every connect, send and receive step.
// Non-positive values keep DEFAULT_TIMEOUT.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Clamd) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithStreamHost sets the host used to reach the ephemeral stream port.
func WithStreamHost(host string) Option {
	return func(c *Clamd) {
		if host != "" {
			c.streamHost = host
		}
	}
}

// WithSignature overrides the substring expected in the verdict.
func WithSignature(signature string) Option {
	return func(c *Clamd) {
		if signature != "" {
			c.signature = signature
		}
	}
}

// WithLogger sets the logger used for progress and failures.
func WithLogger(logger Logger) Option {
	return func(c *Clamd) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records every check into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Clamd) {
		c.metrics = m
	}
}

// NewClamd creates a new probe for the daemon at address.
// The address can be a TCP address (tcp://host:port), a unix:// URL or a Unix socket path.
// An unusable address is reported by Check as an unreachable daemon.
func NewClamd(address string, opts ...Option) *Clamd {
	endpoint, err := ParseEndpoint(address)
	c := NewClamdEndpoint(endpoint, opts...)
	c.endpointErr = err
	return c
}

// NewClamdEndpoint creates a new probe for an already resolved endpoint.
func NewClamdEndpoint(endpoint Endpoint, opts ...Option) *Clamd {
	c := &Clamd{
		endpoint:   endpoint,
		streamHost: DEFAULT_ADDRESS,
		timeout:    DEFAULT_TIMEOUT,
		signature:  EICAR_SIGNATURE,
		logger:     nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the control channel endpoint.
func (c *Clamd) Endpoint() Endpoint {
	return c.endpoint
}

// parseResult parses the first line of a verdict into a ScanResult.
func parseResult(verdict string) *ScanResult {
	line, _, _ := strings.Cut(verdict, "\n")
	line = strings.TrimRight(line, " \t\r\n\x00")

	res := &ScanResult{Raw: line}

	matches := resultRegex.FindStringSubmatch(line)
	if len(matches) == 0 {
		res.Description = "Regex had no matches"
		res.Status = RES_PARSE_ERROR
		return res
	}

	for i, name := range resultRegex.SubexpNames() {
		switch name {
		case "path":
			res.Path = matches[i]
		case "desc":
			res.Description = matches[i]
		case "virhash":
			res.Hash = matches[i]
		case "virsize":
			if size, err := strconv.Atoi(matches[i]); err == nil {
				res.Size = size
			}
		case "status":
			res.Status = matches[i]
		}
	}

	return res
}
