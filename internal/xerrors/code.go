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

// Package xerrors provides numeric, HTTP-status-like error codes with
// stack-trace capture and parent chaining, in the style of nabbar/golib's
// errors package: every component gets its own reserved code range and
// registers a message function for it.
package xerrors

import (
	"sort"
)

// CodeError is a numeric error classification, analogous to an HTTP status
// code but not limited to the HTTP range.
type CodeError uint16

const (
	// UnknownError is the zero value, used when no code applies.
	UnknownError CodeError = 0
	UnknownMessage         = "unknown error"
)

// Per-package reserved code ranges, mirroring the teacher's MinPkgXxx table.
const (
	MinPkgConfig   CodeError = 100
	MinPkgHttpmsg  CodeError = 200
	MinPkgRouter   CodeError = 300
	MinPkgHandler  CodeError = 400
	MinPkgFileio   CodeError = 500
	MinPkgCGI      CodeError = 600
	MinPkgSession  CodeError = 700
	MinPkgReactor  CodeError = 800
	MinPkgResponse CodeError = 900
	MinAvailable   CodeError = 1000
)

// Message builds the human-readable text for a CodeError.
type Message func(code CodeError) string

var idMsgFct = make(map[CodeError]Message)

// RegisterIdFctMessage registers the message function serving every code at
// or above minCode, until the next registered minimum.
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	idMsgFct[minCode] = fct
}

func (c CodeError) messageKeys() []CodeError {
	keys := make([]CodeError, 0, len(idMsgFct))
	for k := range idMsgFct {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (c CodeError) Message() string {
	var best CodeError
	found := false
	for _, k := range c.messageKeys() {
		if k <= c && k >= best {
			best = k
			found = true
		}
	}
	if !found {
		return UnknownMessage
	}
	return idMsgFct[best](c)
}

func (c CodeError) Uint16() uint16 { return uint16(c) }
func (c CodeError) Int() int       { return int(c) }

// Error builds an Error value carrying this code and optional parents.
func (c CodeError) Error(parent ...error) Error {
	return newError(c, c.Message(), parent...)
}

// Errorf builds an Error value using msg verbatim instead of the registered
// message text, for cases where a single code needs per-call detail.
func (c CodeError) Errorf(msg string, parent ...error) Error {
	return newError(c, msg, parent...)
}
