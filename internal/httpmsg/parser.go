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

import (
	"bytes"
	"strconv"
	"strings"

	"github/sabouaram/webserv/internal/config"
	"github/sabouaram/webserv/internal/router"
)

const maxURILen = 2000

var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "DELETE": true, "PUT": true, "HEAD": true,
}

const uriExtraChars = ":%._+~#?&/=-"

// Parser drives one connection's incremental request state machine,
// accumulating recv'd bytes until a Request reaches ReceiveDone or
// ReceiveError, per spec §4.D.
type Parser struct {
	buf  []byte
	Req  *Request
	tree *config.Tree

	hostPort string
}

// NewParser returns a Parser bound to tree (for ServerConfig/LocationConfig
// resolution) and the listener's local "host:port" (for the server_name
// fallback rule).
func NewParser(tree *config.Tree, hostPort string) *Parser {
	return &Parser{Req: New(), tree: tree, hostPort: hostPort}
}

// Reset starts a fresh Request, carrying over any bytes already received
// past the previous request's boundary (HTTP pipelining).
func (p *Parser) Reset() {
	p.Req = New()
	if len(p.buf) > 0 {
		p.step()
	}
}

// Feed appends newly recv'd bytes and advances the state machine as far as
// it can go with the data available.
func (p *Parser) Feed(data []byte) {
	p.buf = append(p.buf, data...)
	p.step()
}

func (p *Parser) step() {
	if p.Req.Phase == HeaderReceive {
		p.tryParseHeader()
	}
	if p.Req.Phase == BodyReceive {
		p.tryParseBody()
	}
}

func (p *Parser) fail(status int) {
	p.Req.Phase = ReceiveError
	p.Req.ErrorStatus = status
}

func (p *Parser) tryParseHeader() {
	idx := bytes.Index(p.buf, []byte("\r\n\r\n"))
	if idx < 0 {
		if len(p.buf) > maxURILen*4 {
			p.fail(StatusURITooLong)
		}
		return
	}

	block := p.buf[:idx]
	p.buf = p.buf[idx+4:]

	lines := bytes.Split(block, []byte("\r\n"))
	if len(lines) == 0 {
		p.fail(StatusBadRequest)
		return
	}

	if !p.parseRequestLine(string(lines[0])) {
		return
	}

	for _, line := range lines[1:] {
		if len(line) == 0 {
			continue
		}
		sep := bytes.IndexByte(line, ':')
		if sep < 0 {
			p.fail(StatusBadRequest)
			return
		}
		key := strings.TrimSpace(string(line[:sep]))
		val := strings.TrimSpace(string(line[sep+1:]))
		p.Req.Headers.Add(key, val)
	}

	p.resolveRoute()

	if te, ok := p.Req.Headers.Get("Transfer-Encoding"); ok && strings.EqualFold(te, "chunked") {
		p.Req.TransferChunked = true
		p.Req.Phase = BodyReceive
	} else if cl, ok := p.Req.Headers.Get("Content-Length"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
		if err != nil || n < 0 {
			p.fail(StatusBadRequest)
			return
		}
		p.Req.ContentLength = n
		p.Req.HasContentLen = true
		p.Req.Phase = BodyReceive
	} else {
		p.Req.Phase = ReceiveDone
	}

	if conn, ok := p.Req.Headers.Get("Connection"); ok {
		p.Req.Connection = strings.ToLower(strings.TrimSpace(conn))
	}

	if p.Req.Phase == BodyReceive {
		p.tryParseBody()
	}
}

func (p *Parser) parseRequestLine(line string) bool {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		p.fail(StatusBadRequest)
		return false
	}
	method, uri, version := parts[0], parts[1], parts[2]

	if !allowedMethods[method] {
		p.fail(StatusNotImplemented)
		return false
	}

	if len(uri) > maxURILen {
		p.fail(StatusURITooLong)
		return false
	}
	if !validURI(uri) {
		p.fail(StatusBadRequest)
		return false
	}

	if !strings.HasPrefix(version, "HTTP/") {
		p.fail(StatusBadRequest)
		return false
	}
	v := strings.TrimPrefix(version, "HTTP/")
	switch {
	case v == "1.1":
		// ok
	case v > "1.1":
		p.fail(StatusHTTPVersionNotSup)
		return false
	default:
		p.fail(StatusUpgradeRequired)
		return false
	}

	p.Req.Method = method
	p.Req.Version = version
	if q := strings.IndexByte(uri, '?'); q >= 0 {
		p.Req.Path = uri[:q]
		p.Req.RawQuery = uri[q+1:]
	} else {
		p.Req.Path = uri
	}
	return true
}

func validURI(uri string) bool {
	if len(uri) == 0 || uri[0] != '/' {
		return false
	}
	for i := 0; i < len(uri); i++ {
		c := uri[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte(uriExtraChars, c) >= 0:
		default:
			return false
		}
	}
	return true
}

func (p *Parser) resolveRoute() {
	host, _ := p.Req.Headers.Get("Host")
	m := router.Resolve(p.tree, p.hostPort, hostOnly(host), p.Req.Path)
	if m == nil {
		p.fail(StatusBadRequest)
		return
	}
	p.Req.Server = m.Server
	p.Req.Location = m.Location
	p.Req.IsCGI = m.IsCGI
	p.Req.ScriptPath = m.ScriptPath
	p.Req.CGIPath = m.TargetPath
	p.Req.PathInfo = m.PathInfo
}

func hostOnly(hostHeader string) string {
	if i := strings.IndexByte(hostHeader, ':'); i >= 0 {
		return hostHeader[:i]
	}
	return hostHeader
}

func (p *Parser) tryParseBody() {
	if p.Req.TransferChunked {
		body, done, consumed, err := DecodeChunked(p.buf)
		if err != nil {
			p.fail(StatusBadRequest)
			return
		}
		if !done {
			return
		}
		p.Req.Body = body
		p.buf = p.buf[consumed:]
		p.Req.Phase = ReceiveDone
		return
	}

	if int64(len(p.buf)) >= p.Req.ContentLength {
		p.Req.Body = p.buf[:p.Req.ContentLength]
		p.buf = p.buf[p.Req.ContentLength:]
		p.Req.Phase = ReceiveDone
	}
}
