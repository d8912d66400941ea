/*
 * MIT License
 *
 * Copyright (c) 2026 Amine Sabouar
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

package xlog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github/sabouaram/webserv/internal/xerrors"
)

// Logger wraps a logrus.Logger with the Level/Fields vocabulary used
// throughout the reactor and its collaborators.
type Logger struct {
	l *logrus.Logger
}

// New builds a Logger writing JSON-formatted entries to w at the given
// minimum level.
func New(w io.Writer, lvl Level) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl.Logrus())
	l.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{l: l}
}

// NewText builds a Logger with human-readable output; Default is built
// with it.
func NewText(w io.Writer, lvl Level) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl.Logrus())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{l: l}
}

// Default is a stderr-backed text Logger at InfoLevel, used by cmd/webserv
// and the tests.
var Default = NewText(os.Stderr, InfoLevel)

func (g *Logger) entry(f *Fields) *logrus.Entry {
	if f == nil {
		return logrus.NewEntry(g.l)
	}
	return g.l.WithFields(f.Logrus())
}

func (g *Logger) Debug(msg string, f *Fields) { g.entry(f).Debug(msg) }
func (g *Logger) Info(msg string, f *Fields)  { g.entry(f).Info(msg) }
func (g *Logger) Warn(msg string, f *Fields)  { g.entry(f).Warn(msg) }
func (g *Logger) Error(msg string, f *Fields) { g.entry(f).Error(msg) }

// ErrorCode logs err at ErrorLevel, attaching its xerrors code and trace
// (when present) as extra fields. The reactor calls this when accepting a
// connection fails.
func (g *Logger) ErrorCode(msg string, err error, f *Fields) {
	if f == nil {
		f = NewFields()
	}
	if xe, ok := err.(xerrors.Error); ok {
		f = f.Clone().Add("code", xe.GetCode().Uint16()).Add("trace", xe.GetTrace())
	} else if err != nil {
		f = f.Clone().Add("error", err.Error())
	}
	g.entry(f).Error(msg)
}

// SetLevel adjusts the minimum severity logged.
func (g *Logger) SetLevel(lvl Level) { g.l.SetLevel(lvl.Logrus()) }

// SetOutput redirects where entries are written.
func (g *Logger) SetOutput(w io.Writer) { g.l.SetOutput(w) }
