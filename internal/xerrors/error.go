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

package xerrors

import (
	"fmt"
	"runtime"
	"strings"
)

// Error extends the standard error interface with a numeric code and an
// optional chain of parent errors, so a handler deep in the reactor can
// unwind to the processing boundary (spec §9, "exceptions as control flow")
// carrying enough information to pick an HTTP status and log a trace.
type Error interface {
	error

	IsCode(code CodeError) bool
	HasCode(code CodeError) bool
	GetCode() CodeError

	HasParent() bool
	Unwrap() []error

	GetTrace() string
}

type ers struct {
	c CodeError
	m string
	p []error
	f runtime.Frame
}

func newError(c CodeError, msg string, parent ...error) Error {
	pc, file, line, _ := runtime.Caller(2)
	fn := runtime.FuncForPC(pc)
	name := ""
	if fn != nil {
		name = fn.Name()
	}

	filtered := make([]error, 0, len(parent))
	for _, p := range parent {
		if p != nil {
			filtered = append(filtered, p)
		}
	}

	return &ers{
		c: c,
		m: msg,
		p: filtered,
		f: runtime.Frame{File: file, Line: line, Function: name},
	}
}

func (e *ers) Error() string {
	if e.m == "" {
		return e.c.String()
	}
	return fmt.Sprintf("[%d] %s", e.c.Uint16(), e.m)
}

func (c CodeError) String() string {
	return fmt.Sprintf("%d", c.Uint16())
}

func (e *ers) IsCode(code CodeError) bool { return e.c == code }

func (e *ers) HasCode(code CodeError) bool {
	if e.c == code {
		return true
	}
	for _, p := range e.p {
		if x, ok := p.(Error); ok && x.HasCode(code) {
			return true
		}
	}
	return false
}

func (e *ers) GetCode() CodeError { return e.c }
func (e *ers) HasParent() bool    { return len(e.p) > 0 }
func (e *ers) Unwrap() []error    { return e.p }

func (e *ers) GetTrace() string {
	return fmt.Sprintf("%s:%d (%s)", e.f.File, e.f.Line, e.f.Function)
}

// IsCode reports whether err carries the given code at any level of its
// parent chain.
func IsCode(err error, code CodeError) bool {
	if err == nil {
		return false
	}
	if x, ok := err.(Error); ok {
		return x.HasCode(code)
	}
	return strings.Contains(err.Error(), code.String())
}
