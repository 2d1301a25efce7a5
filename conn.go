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
// This file contains the connection handling code for communicating with the ClamAV daemon.
package clamd

import (
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strconv"
	"time"
)

// DEFAULT_TIMEOUT bounds every connect, send and receive step of a check.
const DEFAULT_TIMEOUT = time.Second * 60

// MAX_LINE is the receive buffer size; at most MAX_LINE-1 bytes are read per response.
const MAX_LINE = 128

// Errors returned by the transport and framed I/O layers.
var (
	ErrConnect       = errors.New("could not connect to ClamAV daemon")
	ErrStreamConnect = errors.New("could not connect to ClamAV stream service")
	ErrKeepAlive     = errors.New("could not enable keep-alive")
	ErrSend          = errors.New("send failed")
	ErrShortWrite    = errors.New("short write")
	ErrReceive       = errors.New("receive failed")
	ErrPeerClosed    = errors.New("connection closed by peer")
	ErrMalformedPort = errors.New("malformed STREAM reply")
)

// portRegex finds the ephemeral port in the reply to STREAM.
var portRegex = regexp.MustCompile(`\bPORT\s+(\d+)`)

// socketControl prepares every socket before it connects.
var socketControl = keepAliveControl

// CLAMDConn represents a connection to the ClamAV daemon.
// Every send and receive is bounded by timeout, armed fresh for each call.
type CLAMDConn struct {
	net.Conn
	timeout time.Duration
}

// dial connects to endpoint within timeout with SO_KEEPALIVE enabled.
// Failing to set the keep-alive option fails the connection.
func dial(endpoint Endpoint, timeout time.Duration) (*CLAMDConn, error) {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: dialerKeepAlive,
		Control:   socketControl,
	}

	conn, err := dialer.Dial(endpoint.Network, endpoint.Address)
	if err != nil {
		return nil, err
	}

	return &CLAMDConn{Conn: conn, timeout: timeout}, nil
}

// sendCommand sends a CRLF terminated command line.
func (conn *CLAMDConn) sendCommand(command string) error {
	return conn.send([]byte(command + "\r\n"))
}

// send writes data in one call. Anything short of the full buffer is an error.
func (conn *CLAMDConn) send(data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(conn.timeout)); err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}

	n, err := conn.Write(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	if n < len(data) {
		return fmt.Errorf("%w: %w: %d of %d bytes", ErrSend, ErrShortWrite, n, len(data))
	}

	return nil
}

// receive reads a single response of at most size-1 bytes.
// A read returning no data is an error, including an orderly close by the daemon.
func (conn *CLAMDConn) receive(size int) (string, error) {
	if err := conn.SetReadDeadline(time.Now().Add(conn.timeout)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrReceive, err)
	}

	buf := make([]byte, size-1)
	n, err := conn.Read(buf)
	if n > 0 {
		return string(buf[:n]), nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %w", ErrReceive, ErrPeerClosed)
	}

	return "", fmt.Errorf("%w: %w", ErrReceive, err)
}

// Close shuts down both directions and closes the connection.
func (conn *CLAMDConn) Close() error {
	type halfCloser interface {
		CloseRead() error
		CloseWrite() error
	}
	if hc, ok := conn.Conn.(halfCloser); ok {
		_ = hc.CloseRead()
		_ = hc.CloseWrite()
	}

	return conn.Conn.Close()
}

// parsePort extracts the port from a "PORT <number>" reply.
func parsePort(reply string) (int, error) {
	matches := portRegex.FindStringSubmatch(reply)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPort, reply)
	}

	port, err := strconv.ParseUint(matches[1], 10, 16)
	if err != nil || port == 0 {
		return 0, fmt.Errorf("%w: port %s out of range", ErrMalformedPort, matches[1])
	}

	return int(port), nil
}
