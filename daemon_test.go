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
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// scenario is one fake daemon behaviour from testdata/scenarios.yaml.
type scenario struct {
	Name                string        `yaml:"name"`
	PortReply           string        `yaml:"port_reply"`
	HangUpAfterCommand  bool          `yaml:"hang_up_after_command"`
	Stream              string        `yaml:"stream"`
	Verdict             string        `yaml:"verdict"`
	HangUpBeforeVerdict bool          `yaml:"hang_up_before_verdict"`
	Stall               bool          `yaml:"stall"`
	Timeout             time.Duration `yaml:"timeout"`
	Outcome             string        `yaml:"outcome"`
	Error               string        `yaml:"error"`
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "scenarios.yaml"))
	if err != nil {
		t.Fatalf("read scenarios: %v", err)
	}

	var scenarios []scenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		t.Fatalf("parse scenarios: %v", err)
	}
	if len(scenarios) == 0 {
		t.Fatal("no scenarios")
	}
	return scenarios
}

// shortTempDir returns a temporary directory with a path short enough for a Unix socket.
func shortTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "clamd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// fakeDaemon speaks just enough of the clamd STREAM protocol to drive a check.
// It serves control connections one at a time until the test ends.
type fakeDaemon struct {
	sc       scenario
	control  net.Listener
	stream   net.Listener
	port     int
	endpoint Endpoint
	commands chan string
	payloads chan []byte
	done     chan struct{}
}

func startFakeDaemon(t *testing.T, network string, sc scenario) *fakeDaemon {
	t.Helper()

	d := &fakeDaemon{
		sc:       sc,
		commands: make(chan string, 8),
		payloads: make(chan []byte, 8),
		done:     make(chan struct{}),
	}

	var err error
	switch network {
	case "unix":
		path := filepath.Join(shortTempDir(t), "clamd.sock")
		d.control, err = net.Listen("unix", path)
		d.endpoint = UnixEndpoint(path)
	default:
		d.control, err = net.Listen("tcp", "127.0.0.1:0")
		if err == nil {
			d.endpoint = Endpoint{Network: "tcp", Address: d.control.Addr().String()}
		}
	}
	if err != nil {
		t.Fatalf("listen control: %v", err)
	}

	d.stream, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		d.control.Close()
		t.Fatalf("listen stream: %v", err)
	}
	d.port = d.stream.Addr().(*net.TCPAddr).Port
	if sc.Stream == "refuse" {
		d.stream.Close()
	}

	go d.serve()

	t.Cleanup(func() {
		d.control.Close()
		d.stream.Close()
		<-d.done
	})
	return d
}

func (d *fakeDaemon) serve() {
	defer close(d.done)
	for {
		conn, err := d.control.Accept()
		if err != nil {
			return
		}
		d.handle(conn)
		conn.Close()
	}
}

func (d *fakeDaemon) handle(conn net.Conn) {
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}
	d.commands <- string(buf[:n])

	if d.sc.HangUpAfterCommand {
		return
	}

	reply := d.sc.PortReply
	if reply == "" {
		reply = "PORT {{port}}\n"
	}
	reply = strings.ReplaceAll(reply, "{{port}}", strconv.Itoa(d.port))
	if _, err := io.WriteString(conn, reply); err != nil {
		return
	}

	if d.sc.Stream != "" && d.sc.Stream != "accept" {
		waitClosed(conn)
		return
	}

	s, err := d.stream.Accept()
	if err != nil {
		return
	}
	payload, _ := io.ReadAll(s)
	s.Close()
	d.payloads <- payload

	switch {
	case d.sc.HangUpBeforeVerdict:
		return
	case d.sc.Stall:
		waitClosed(conn)
		return
	}

	if _, err := io.WriteString(conn, d.sc.Verdict); err != nil {
		return
	}
	waitClosed(conn)
}

// waitClosed blocks until the probe closes its end of conn.
func waitClosed(conn net.Conn) {
	io.Copy(io.Discard, conn)
}

func (d *fakeDaemon) nextCommand(t *testing.T) string {
	t.Helper()
	select {
	case cmd := <-d.commands:
		return cmd
	case <-time.After(time.Second):
		t.Fatal("fake daemon received no command")
		return ""
	}
}

func (d *fakeDaemon) nextPayload(t *testing.T) []byte {
	t.Helper()
	select {
	case p := <-d.payloads:
		return p
	case <-time.After(time.Second):
		t.Fatal("fake daemon received no payload")
		return nil
	}
}
