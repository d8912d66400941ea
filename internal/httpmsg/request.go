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

package httpmsg

import "github/sabouaram/webserv/internal/config"

// RecvPhase is the incremental parser's state, per spec §4.D.
type RecvPhase int

const (
	HeaderReceive RecvPhase = iota
	BodyReceive
	ReceiveDone
	ReceiveError
)

// Request is one parsed (or partially parsed) HTTP/1.1 request.
type Request struct {
	Method      string
	Path        string
	RawQuery    string
	Version     string
	Headers     Headers
	Body        []byte

	Server   *config.ServerConfig
	Location *config.LocationConfig

	IsCGI      bool
	ScriptPath string
	CGIPath    string
	PathInfo   string

	Phase           RecvPhase
	ErrorStatus     int
	ContentLength   int64
	HasContentLen   bool
	TransferChunked bool
	Connection      string
}

// New returns a zero-value Request ready to accumulate bytes.
func New() *Request {
	return &Request{Phase: HeaderReceive}
}

// KeepAlive reports whether the client asked to keep the connection open;
// HTTP/1.1 defaults to keep-alive unless Connection: close is present.
func (r *Request) KeepAlive() bool {
	switch r.Connection {
	case "close":
		return false
	default:
		return true
	}
}
