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

package logging

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/sockfwd/logging/level"
)

type logger struct {
	entry *logrus.Entry
}

func (l *logger) WithField(key string, val interface{}) Logger {
	return &logger{entry: l.entry.WithField(key, val)}
}

func (l *logger) WithFields(f Fields) Logger {
	return &logger{entry: l.entry.WithFields(f.logrus())}
}

func (l *logger) Debug(msg string) { l.entry.Debug(msg) }
func (l *logger) Info(msg string)  { l.entry.Info(msg) }
func (l *logger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *logger) Error(msg string) { l.entry.Error(msg) }
// Fatal logs at error severity without exiting the process; this is a
// library, not a command, so it never calls os.Exit on the caller's behalf.
func (l *logger) Fatal(msg string) { l.entry.Error(msg) }

func (l *logger) SetLevel(lv level.Level) {
	l.entry.Logger.SetLevel(lv.Logrus())
}

func (l *logger) SetOutput(w io.Writer) {
	l.entry.Logger.SetOutput(w)
}
