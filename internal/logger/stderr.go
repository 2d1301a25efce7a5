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

// Package logger provides the key/value logger used by clamdmon for debug output.
package logger

import (
	"fmt"
	"io"
)

// Stderr writes key/value log lines to an error stream.
type Stderr struct {
	w io.Writer
}

// NewStderr creates a logger writing to w, normally os.Stderr.
func NewStderr(w io.Writer) *Stderr {
	return &Stderr{w: w}
}

// Info logs an informational message.
func (l *Stderr) Info(msg string, args ...any) {
	l.write("", msg, args)
}

// Error logs an error message.
func (l *Stderr) Error(msg string, args ...any) {
	l.write("ERROR: ", msg, args)
}

func (l *Stderr) write(level, msg string, args []any) {
	fmt.Fprintf(l.w, "clamdmon: %s%s", level, msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(l.w, " %v=%v", args[i], args[i+1])
	}
	fmt.Fprintln(l.w)
}
