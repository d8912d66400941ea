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

package reactor

import (
	"bufio"
	"net"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github/sabouaram/webserv/internal/config"
	"github/sabouaram/webserv/internal/session"
	"github/sabouaram/webserv/internal/xlog"
)

// testServer binds one fixed ServerConfig to an ephemeral local port and
// drives the reactor on a background goroutine until t ends.
func testServer(t *testing.T, sc *config.ServerConfig) string {
	t.Helper()

	l, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	hostPort := l.Addr().String()
	l.Close()

	host, portStr, _ := net.SplitHostPort(hostPort)
	port, _ := strconv.Atoi(portStr)
	sc.Host = host
	sc.Port = port

	tree := &config.Tree{Servers: []*config.ServerConfig{sc}}

	r, err := New(tree, session.New("session_id"), xlog.Default, nil)
	if err != nil {
		t.Fatalf("reactor.New: %v", err)
	}
	t.Cleanup(r.Close)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				_ = r.Tick(50)
			}
		}
	}()
	t.Cleanup(func() { close(done) })

	return hostPort
}

func baseServer(root string) *config.ServerConfig {
	return &config.ServerConfig{
		ServerNames:      []string{"x"},
		HeaderTimeout:    5 * time.Second,
		BodyTimeout:      5 * time.Second,
		KeepAliveTimeout: 5 * time.Second,
		GatewayTimeout:   5 * time.Second,
		KeepAliveMax:     100,
		CGI:              map[string]string{},
		CommonConfig: config.CommonConfig{
			Root:                 root,
			ClientBodyBufferSize: 1 << 20,
			Index:                []string{"index.html"},
		},
		Locations: []*config.LocationConfig{
			{
				Path:      "/",
				Autoindex: false,
				CommonConfig: config.CommonConfig{
					Root:                 root,
					ClientBodyBufferSize: 1 << 20,
					Index:                []string{"index.html"},
				},
			},
		},
	}
}

func dial(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	return conn
}

// readResponse parses one HTTP/1.1 response off r, returning status,
// headers, and the Content-Length bytes of body that follow them.
func readResponse(t *testing.T, r *bufio.Reader) (status int, headers textproto.MIMEHeader, body []byte) {
	t.Helper()
	line, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("read status line: %v", err)
	}
	parts := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(parts) < 2 {
		t.Fatalf("malformed status line %q", line)
	}
	status, _ = strconv.Atoi(parts[1])

	tp := textproto.NewReader(r)
	headers, err = tp.ReadMIMEHeader()
	if err != nil {
		t.Fatalf("read headers: %v", err)
	}

	if cl := headers.Get("Content-Length"); cl != "" {
		n, _ := strconv.Atoi(cl)
		body = make([]byte, n)
		if n > 0 {
			if _, err := r.Read(body); err != nil {
				t.Fatalf("read body: %v", err)
			}
		}
	}
	return status, headers, body
}

// Scenario 1: GET an indexed file returns its exact contents.
func TestReactorGetIndexFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	addr := testServer(t, baseServer(dir))
	conn := dial(t, addr)
	defer conn.Close()

	conn.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))
	status, headers, body := readResponse(t, bufio.NewReader(conn))

	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if headers.Get("Content-Length") != "3" {
		t.Fatalf("Content-Length = %q, want 3", headers.Get("Content-Length"))
	}
	if string(body) != "hi\n" {
		t.Fatalf("body = %q, want %q", body, "hi\n")
	}
}

// Scenario 3: no matching file and no autoindex yields 404.
func TestReactorGetMissingIs404(t *testing.T) {
	dir := t.TempDir()
	addr := testServer(t, baseServer(dir))
	conn := dial(t, addr)
	defer conn.Close()

	conn.Write([]byte("GET /nope HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))
	status, _, _ := readResponse(t, bufio.NewReader(conn))
	if status != 404 {
		t.Fatalf("status = %d, want 404", status)
	}
}

// Scenario 4: a declared Content-Length over client_body_buffer_size is 413.
func TestReactorBodyTooLargeIs413(t *testing.T) {
	dir := t.TempDir()
	sc := baseServer(dir)
	sc.ClientBodyBufferSize = 8192
	sc.Locations[0].ClientBodyBufferSize = 8192

	addr := testServer(t, sc)
	conn := dial(t, addr)
	defer conn.Close()

	payload := strings.Repeat("a", 100000)
	conn.Write([]byte("POST /up HTTP/1.1\r\nHost: x\r\nContent-Length: " + strconv.Itoa(len(payload)) + "\r\nConnection: close\r\n\r\n" + payload))
	status, _, _ := readResponse(t, bufio.NewReader(conn))
	if status != 413 {
		t.Fatalf("status = %d, want 413", status)
	}
}

// Scenario 2: POST writes the body verbatim and answers 201 Created.
func TestReactorPostCreatesFile(t *testing.T) {
	dir := t.TempDir()
	addr := testServer(t, baseServer(dir))
	conn := dial(t, addr)
	defer conn.Close()

	conn.Write([]byte("POST /up HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\nConnection: close\r\n\r\nhello"))
	status, headers, _ := readResponse(t, bufio.NewReader(conn))

	if status != 201 {
		t.Fatalf("status = %d, want 201", status)
	}
	if loc := headers.Get("Location"); !strings.HasSuffix(loc, "/up") {
		t.Fatalf("Location = %q, want suffix /up", loc)
	}

	data, err := os.ReadFile(filepath.Join(dir, "up"))
	if err != nil {
		t.Fatalf("read uploaded file: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("uploaded file = %q, want %q", data, "hello")
	}
}

// Scenario 6: keep-alive bound — with keep_alive_max = 2, the first
// response keeps the connection alive and the second demotes to
// Connection: close.
func TestReactorKeepAliveBound(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("ok"), 0o644); err != nil {
		t.Fatal(err)
	}
	sc := baseServer(dir)
	sc.KeepAliveMax = 2

	addr := testServer(t, sc)
	conn := dial(t, addr)
	defer conn.Close()

	reader := bufio.NewReader(conn)

	conn.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\nConnection: keep-alive\r\n\r\n"))
	_, h1, _ := readResponse(t, reader)
	if !strings.Contains(strings.ToLower(h1.Get("Connection")), "keep-alive") {
		t.Fatalf("first Connection = %q, want keep-alive", h1.Get("Connection"))
	}

	conn.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\nConnection: keep-alive\r\n\r\n"))
	_, h2, _ := readResponse(t, reader)
	if strings.ToLower(h2.Get("Connection")) != "close" {
		t.Fatalf("second Connection = %q, want close", h2.Get("Connection"))
	}
}

// DELETE removes the target file and answers 200.
func TestReactorDelete(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gone.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	addr := testServer(t, baseServer(dir))
	conn := dial(t, addr)
	defer conn.Close()

	conn.Write([]byte("DELETE /gone.txt HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))
	status, _, _ := readResponse(t, bufio.NewReader(conn))
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if _, err := os.Stat(filepath.Join(dir, "gone.txt")); !os.IsNotExist(err) {
		t.Fatalf("file still exists after DELETE")
	}
}

// HEAD strips the body but keeps Content-Length, per SPEC_FULL §9's
// resolved open question.
func TestReactorHeadStripsBody(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	addr := testServer(t, baseServer(dir))
	conn := dial(t, addr)
	defer conn.Close()

	conn.Write([]byte("HEAD / HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))
	status, headers, body := readResponse(t, bufio.NewReader(conn))
	if status != 200 {
		t.Fatalf("status = %d, want 200", status)
	}
	if headers.Get("Content-Length") != "6" {
		t.Fatalf("Content-Length = %q, want 6", headers.Get("Content-Length"))
	}
	if len(body) != 0 {
		t.Fatalf("body = %q, want empty", body)
	}
}
