/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logging provides the structured, leveled logger injected into
// every layer, the fiber demultiplexer and the session forwarder.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/sockfwd/logging/level"
)

// Logger is the structured logging contract used across this module.
// Implementations must be safe for concurrent use.
type Logger interface {
	WithField(key string, val interface{}) Logger
	WithFields(f Fields) Logger

	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)

	SetLevel(l level.Level)
	SetOutput(w io.Writer)
}

// New returns a Logger writing to w (os.Stderr if w is nil) at level l.
func New(w io.Writer, l level.Level) Logger {
	if w == nil {
		w = os.Stderr
	}

	r := logrus.New()
	r.SetOutput(w)
	r.SetLevel(l.Logrus())
	r.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &logger{entry: logrus.NewEntry(r)}
}

// Discard returns a Logger that drops every message.
func Discard() Logger {
	return New(io.Discard, level.FatalLevel)
}
