// This file is part of slt - https://github.com/sourcetrail/slt
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package slog is the logging facility for the rest of this module: a
// bounded ring of "tag: detail" lines, written when a SetValue is dropped
// (wrong node or out-of-range id) or a malformed force override is
// skipped. A Permission gate is consulted per call, the tail buffer has
// fixed capacity, and detail formatting is Stringer/error-aware.
package slog

import (
	"container/ring"
	"fmt"
	"io"
)

// Permission gates whether a given Log call is recorded at all. Callers
// pass a value satisfying this interface instead of a bare bool so the
// decision can depend on caller-side state (verbosity level, per-tag
// mutes, ...).
type Permission interface {
	AllowLogging() bool
}

// allowAll is the Permission that always records.
type allowAll struct{}

func (allowAll) AllowLogging() bool { return true }

// Allow is the Permission every ordinary call site uses.
var Allow Permission = allowAll{}

// Logger is a bounded ring buffer of formatted log lines.
type Logger struct {
	capacity int
	buf      *ring.Ring
	len      int
}

// NewLogger allocates a Logger that retains at most capacity entries,
// discarding the oldest once full.
func NewLogger(capacity int) *Logger {
	if capacity <= 0 {
		capacity = 1
	}
	return &Logger{capacity: capacity, buf: ring.New(capacity)}
}

// Log records "tag: detail" if permission allows it. detail is formatted
// specially when it is an error or fmt.Stringer; otherwise it falls back
// to the %v verb.
func (l *Logger) Log(permission Permission, tag string, detail interface{}) {
	if !permission.AllowLogging() {
		return
	}
	l.push(tag + ": " + formatDetail(detail) + "\n")
}

// Logf is Log with a printf-style detail.
func (l *Logger) Logf(permission Permission, tag, format string, args ...interface{}) {
	if !permission.AllowLogging() {
		return
	}
	l.push(tag + ": " + fmt.Sprintf(format, args...) + "\n")
}

func formatDetail(detail interface{}) string {
	switch d := detail.(type) {
	case error:
		return d.Error()
	case fmt.Stringer:
		return d.String()
	default:
		return fmt.Sprintf("%v", detail)
	}
}

func (l *Logger) push(line string) {
	l.buf.Value = line
	l.buf = l.buf.Next()
	if l.len < l.capacity {
		l.len++
	}
}

// Clear discards all retained entries.
func (l *Logger) Clear() {
	l.buf = ring.New(l.capacity)
	l.len = 0
}

// entries returns the retained lines, oldest first.
func (l *Logger) entries() []string {
	out := make([]string, 0, l.len)
	start := l.buf
	for i := 0; i < l.capacity-l.len; i++ {
		start = start.Next()
	}
	start.Do(func(v interface{}) {
		if v == nil {
			return
		}
		out = append(out, v.(string))
	})
	return out
}

// Write emits every retained entry to w, oldest first.
func (l *Logger) Write(w io.Writer) error {
	for _, line := range l.entries() {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Tail emits at most the last n retained entries to w, oldest first among
// those n. Asking for more entries than exist, or zero, is not an error.
func (l *Logger) Tail(w io.Writer, n int) error {
	all := l.entries()
	if n < len(all) {
		all = all[len(all)-n:]
	}
	for _, line := range all {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// central is the package-level Logger the free functions below delegate
// to.
var central = NewLogger(1024)

// Log records "tag: detail" on the central Logger, unconditionally.
func Log(tag string, detail interface{}) { central.Log(Allow, tag, detail) }

// Logf is Log with a printf-style detail on the central Logger.
func Logf(tag, format string, args ...interface{}) { central.Logf(Allow, tag, format, args...) }

// Write emits the central Logger's retained entries to w.
func Write(w io.Writer) error { return central.Write(w) }

// Tail emits the central Logger's last n entries to w.
func Tail(w io.Writer, n int) error { return central.Tail(w, n) }

// Clear discards the central Logger's retained entries.
func Clear() { central.Clear() }
