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

// Package conn is the reactor's connection table: per-client state keyed by
// file descriptor, plus the reverse maps that route file and CGI pipe FD
// events back to their owning client (SPEC_FULL §3, "Ownership").
package conn

import (
	"sync"
	"time"

	"github/sabouaram/webserv/internal/config"
	"github/sabouaram/webserv/internal/httpmsg"
)

// Phase is the connection's lifecycle state, per spec §3.
type Phase int

const (
	HeaderRead Phase = iota
	BodyRead
	Gateway
	Sending
	KeepAlive
)

// Connection is one client's row in the Table. The reactor is the sole
// owner; Request and Response hang off it, while the parser, response
// writer and any file or CGI job for the same FD live in the reactor's own
// per-client state.
type Connection struct {
	FD       int
	Server   *config.ServerConfig
	Request  *httpmsg.Request
	Response *httpmsg.Response

	Phase Phase

	Created        time.Time
	LastActivity   time.Time
	GatewayStarted time.Time

	RequestsServed int
}

// Table maps client FD to Connection, plus the reverse maps file and CGI
// pipe FDs use to route a readiness event back to their client. Both maps
// are purged together in Remove, so neither can outlive the connection it
// belongs to.
type Table struct {
	mu          sync.Mutex
	conns       map[int]*Connection
	reverseFile map[int]int // file/pipe FD -> client FD
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		conns:       make(map[int]*Connection),
		reverseFile: make(map[int]int),
	}
}

// Add registers a freshly accepted client, per spec §4.B.
func (t *Table) Add(fd int, sc *config.ServerConfig) *Connection {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	c := &Connection{
		FD:           fd,
		Server:       sc,
		Request:      httpmsg.New(),
		Response:     nil,
		Phase:        HeaderRead,
		Created:      now,
		LastActivity: now,
	}
	t.conns[fd] = c
	return c
}

// Get returns the Connection for fd, or nil.
func (t *Table) Get(fd int) *Connection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conns[fd]
}

// Update bumps fd's last-activity timestamp and records its new phase.
func (t *Table) Update(fd int, phase Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.conns[fd]; ok {
		c.LastActivity = time.Now()
		c.Phase = phase
	}
}

// UpdateGateway records that fd's file or CGI job has just become active,
// starting the gateway timeout budget.
func (t *Table) UpdateGateway(fd int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.conns[fd]; ok {
		c.GatewayStarted = time.Now()
		c.Phase = Gateway
	}
}

// UpdateRequests increments fd's served-request counter and returns how
// many more requests it may serve before keep-alive is withdrawn.
func (t *Table) UpdateRequests(fd int, keepAliveMax int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.conns[fd]
	if !ok {
		return 0
	}
	c.RequestsServed++
	remaining := keepAliveMax - c.RequestsServed
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// RegisterFile ties fileFD to the client fd owning it, for reverse lookup
// when the reactor sees fileFD become ready.
func (t *Table) RegisterFile(fileFD, clientFD int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reverseFile[fileFD] = clientFD
}

// UnregisterFile removes fileFD's reverse mapping without touching the
// connection itself.
func (t *Table) UnregisterFile(fileFD int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.reverseFile, fileFD)
}

// OwnerOf returns the client FD owning fileFD, or (0, false).
func (t *Table) OwnerOf(fileFD int) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fd, ok := t.reverseFile[fileFD]
	return fd, ok
}

// TimeoutBudget is one connection's current phase and how long it's been in it.
type TimeoutBudget struct {
	FD      int
	Phase   Phase
	Elapsed time.Duration
}

// GetTimeoutList returns every connection whose current phase has exceeded
// the timeout budget computed by budgetFor, per spec §4.C/§5.
func (t *Table) GetTimeoutList(budgetFor func(*Connection) time.Duration) []TimeoutBudget {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []TimeoutBudget
	now := time.Now()
	for fd, c := range t.conns {
		budget := budgetFor(c)
		if budget <= 0 {
			continue
		}
		elapsed := now.Sub(c.LastActivity)
		if c.Phase == Gateway {
			elapsed = now.Sub(c.GatewayStarted)
		}
		if elapsed > budget {
			out = append(out, TimeoutBudget{FD: fd, Phase: c.Phase, Elapsed: elapsed})
		}
	}
	return out
}

// Remove erases fd's bookkeeping and any reverse-map entries pointing at
// it, so no FD the connection owned can outlive it (spec §3, "Ownership").
func (t *Table) Remove(fd int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, fd)
	for k, v := range t.reverseFile {
		if v == fd {
			delete(t.reverseFile, k)
		}
	}
}

// Len reports the number of tracked connections, for metrics.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}
