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

import "strings"

// Headers preserves insertion order (needed for multi-valued headers like
// Set-Cookie) while still supporting case-insensitive lookup.
type Headers struct {
	keys []string
	vals []string
}

// Add appends a header, preserving any existing values under the same name.
func (h *Headers) Add(key, val string) {
	h.keys = append(h.keys, key)
	h.vals = append(h.vals, val)
}

// Set replaces every existing value for key with val.
func (h *Headers) Set(key, val string) {
	h.Del(key)
	h.Add(key, val)
}

// Del removes every value stored under key.
func (h *Headers) Del(key string) {
	var keys, vals []string
	for i, k := range h.keys {
		if !strings.EqualFold(k, key) {
			keys = append(keys, k)
			vals = append(vals, h.vals[i])
		}
	}
	h.keys, h.vals = keys, vals
}

// Get returns the first value stored under key, case-insensitively.
func (h *Headers) Get(key string) (string, bool) {
	for i, k := range h.keys {
		if strings.EqualFold(k, key) {
			return h.vals[i], true
		}
	}
	return "", false
}

// Values returns every value stored under key, in insertion order.
func (h *Headers) Values(key string) []string {
	var out []string
	for i, k := range h.keys {
		if strings.EqualFold(k, key) {
			out = append(out, h.vals[i])
		}
	}
	return out
}

// Walk visits every header in insertion order.
func (h *Headers) Walk(fn func(key, val string)) {
	for i := range h.keys {
		fn(h.keys[i], h.vals[i])
	}
}

// Len reports the number of stored header entries.
func (h *Headers) Len() int { return len(h.keys) }
