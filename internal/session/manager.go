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

// Package session is the process-wide, cookie-keyed session table: the only
// piece of global mutable state in the server (SPEC_FULL §9).
package session

import (
	"strings"
	"sync"
	"time"
)

// Session is one entry: when it was created and when it stops being valid.
type Session struct {
	Created time.Time
	Expires time.Time
}

// Manager is safe for concurrent use, though the reactor is single-threaded
// and in practice only ever calls it from the tick goroutine; the RWMutex
// matches the shape tests exercise it with.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]Session
	keyName  string
}

// New returns an empty Manager. keyName is the cookie name carrying the
// session identifier; it is not a config directive, and cmd/webserv fixes
// it to "session_id".
func New(keyName string) *Manager {
	return &Manager{
		sessions: make(map[string]Session),
		keyName:  keyName,
	}
}

// AddSession parses setCookieValue (a Set-Cookie header value), extracts
// the configured session key's value, and stores it with expiry now+ttl.
func (m *Manager) AddSession(setCookieValue string, ttl time.Duration) {
	key, ok := m.extractKey(setCookieValue)
	if !ok {
		return
	}
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = Session{Created: now, Expires: now.Add(ttl)}
}

func (m *Manager) extractKey(setCookieValue string) (string, bool) {
	for _, part := range strings.Split(setCookieValue, ";") {
		part = strings.TrimSpace(part)
		name, val, found := strings.Cut(part, "=")
		if found && name == m.keyName {
			return val, true
		}
	}
	return "", false
}

// IsSessionAvailable reports whether cookieKey names a live, unexpired
// session. Expired entries are purged lazily here rather than by a
// background sweep, per spec §4.I.
func (m *Manager) IsSessionAvailable(cookieKey string) bool {
	m.mu.RLock()
	s, ok := m.sessions[cookieKey]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(s.Expires) {
		m.mu.Lock()
		delete(m.sessions, cookieKey)
		m.mu.Unlock()
		return false
	}
	return true
}

// KeyFromCookieHeader extracts the session key's value from a raw Cookie
// request header, or ("", false) if the configured key isn't present.
func (m *Manager) KeyFromCookieHeader(cookieHeader string) (string, bool) {
	return m.extractKey(cookieHeader)
}

// Len reports the number of stored sessions, expired or not; exposed for
// metrics and tests.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
