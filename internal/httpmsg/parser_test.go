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
	"testing"

	"github/sabouaram/webserv/internal/config"
)

func testTree() *config.Tree {
	loc := &config.LocationConfig{
		Path:        "/",
		LimitExcept: []string{"GET", "HEAD", "POST", "PUT", "DELETE"},
		CommonConfig: config.CommonConfig{
			Root:                 "./html",
			Index:                []string{"index.html"},
			ClientBodyBufferSize: 8192,
		},
	}
	sc := &config.ServerConfig{
		Host: "0.0.0.0", Port: 8080, ServerNames: []string{"x"},
		Locations: []*config.LocationConfig{loc},
		CGI:       map[string]string{},
	}
	return &config.Tree{Servers: []*config.ServerConfig{sc}}
}

func TestParseSimpleGet(t *testing.T) {
	p := NewParser(testTree(), "0.0.0.0:8080")
	p.Feed([]byte("GET /index.html HTTP/1.1\r\nHost: x\r\n\r\n"))

	if p.Req.Phase != ReceiveDone {
		t.Fatalf("phase = %v, want ReceiveDone", p.Req.Phase)
	}
	if p.Req.Method != "GET" || p.Req.Path != "/index.html" {
		t.Errorf("got method=%q path=%q", p.Req.Method, p.Req.Path)
	}
	if p.Req.Location == nil {
		t.Fatal("expected resolved location")
	}
}

func TestParseSplitAcrossFeeds(t *testing.T) {
	p := NewParser(testTree(), "0.0.0.0:8080")
	p.Feed([]byte("POST /up HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\n"))
	if p.Req.Phase != BodyReceive {
		t.Fatalf("phase = %v, want BodyReceive", p.Req.Phase)
	}
	p.Feed([]byte("hello"))
	if p.Req.Phase != ReceiveDone {
		t.Fatalf("phase = %v, want ReceiveDone", p.Req.Phase)
	}
	if string(p.Req.Body) != "hello" {
		t.Errorf("body = %q, want hello", p.Req.Body)
	}
}

func TestParseBadMethod(t *testing.T) {
	p := NewParser(testTree(), "0.0.0.0:8080")
	p.Feed([]byte("TRACE / HTTP/1.1\r\nHost: x\r\n\r\n"))
	if p.Req.Phase != ReceiveError || p.Req.ErrorStatus != StatusNotImplemented {
		t.Fatalf("got phase=%v status=%d, want ReceiveError/501", p.Req.Phase, p.Req.ErrorStatus)
	}
}

func TestParseUnsupportedVersion(t *testing.T) {
	p := NewParser(testTree(), "0.0.0.0:8080")
	p.Feed([]byte("GET / HTTP/2.0\r\nHost: x\r\n\r\n"))
	if p.Req.Phase != ReceiveError || p.Req.ErrorStatus != StatusHTTPVersionNotSup {
		t.Fatalf("got phase=%v status=%d, want 505", p.Req.Phase, p.Req.ErrorStatus)
	}
}

func TestParseChunkedBody(t *testing.T) {
	p := NewParser(testTree(), "0.0.0.0:8080")
	p.Feed([]byte("POST /up HTTP/1.1\r\nHost: x\r\nTransfer-Encoding: chunked\r\n\r\n"))
	p.Feed([]byte("3\r\nabc\r\n0\r\n\r\n"))
	if p.Req.Phase != ReceiveDone {
		t.Fatalf("phase = %v, want ReceiveDone", p.Req.Phase)
	}
	if string(p.Req.Body) != "abc" {
		t.Errorf("body = %q, want abc", p.Req.Body)
	}
}
