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

package session

import (
	"testing"
	"time"
)

func TestAddAndCheckSession(t *testing.T) {
	m := New("sid")
	m.AddSession("sid=abc123; Path=/", time.Minute)

	if !m.IsSessionAvailable("abc123") {
		t.Fatal("expected session to be available")
	}
	if m.IsSessionAvailable("nope") {
		t.Fatal("expected unknown key to be unavailable")
	}
}

func TestSessionExpiry(t *testing.T) {
	m := New("sid")
	m.AddSession("sid=xyz", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if m.IsSessionAvailable("xyz") {
		t.Fatal("expected expired session to be unavailable")
	}
	if m.Len() != 0 {
		t.Fatalf("expected lazy purge on access, Len() = %d", m.Len())
	}
}

func TestKeyFromCookieHeader(t *testing.T) {
	m := New("sid")
	key, ok := m.KeyFromCookieHeader("other=1; sid=zzz; third=2")
	if !ok || key != "zzz" {
		t.Fatalf("got key=%q ok=%v, want zzz/true", key, ok)
	}
}
