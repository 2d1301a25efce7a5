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
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// DEFAULT_ADDRESS is the loopback address the daemon listens on when no socket path is given.
// The stream service is always reached on this address as well.
const DEFAULT_ADDRESS = "127.0.0.1"

// DEFAULT_PORT is the well-known clamd TCP port.
const DEFAULT_PORT = 3310

// ErrBadEndpoint is returned when an address cannot be turned into an Endpoint.
var ErrBadEndpoint = errors.New("invalid clamd endpoint")

// Endpoint is the address of a clamd control channel.
// Network is either "unix" (Address is a filesystem path) or "tcp" (Address is host:port).
type Endpoint struct {
	Network string
	Address string
}

// UnixEndpoint returns an endpoint for a filesystem socket.
func UnixEndpoint(path string) Endpoint {
	return Endpoint{Network: "unix", Address: path}
}

// TCPEndpoint returns an endpoint for host and port.
func TCPEndpoint(host string, port int) Endpoint {
	return Endpoint{Network: "tcp", Address: net.JoinHostPort(host, strconv.Itoa(port))}
}

// DefaultEndpoint is the loopback TCP endpoint used when no socket path is configured.
func DefaultEndpoint() Endpoint {
	return TCPEndpoint(DEFAULT_ADDRESS, DEFAULT_PORT)
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	return e.Network + "://" + e.Address
}

// ParseEndpoint parses an address into an Endpoint.
// It accepts tcp://host:port, unix:///path, or a bare path, which is taken as a unix socket.
func ParseEndpoint(address string) (Endpoint, error) {
	if address == "" {
		return Endpoint{}, fmt.Errorf("%w: empty address", ErrBadEndpoint)
	}

	u, err := url.Parse(address)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %v", ErrBadEndpoint, err)
	}

	switch u.Scheme {
	case "tcp":
		if _, _, err := net.SplitHostPort(u.Host); err != nil {
			return Endpoint{}, fmt.Errorf("%w: %v", ErrBadEndpoint, err)
		}
		return Endpoint{Network: "tcp", Address: u.Host}, nil
	case "unix":
		if u.Path == "" {
			return Endpoint{}, fmt.Errorf("%w: missing socket path", ErrBadEndpoint)
		}
		return UnixEndpoint(u.Path), nil
	default:
		return UnixEndpoint(address), nil
	}
}
