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

package xlog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Fields is a thread-safe bag of structured key/value context, merged into
// every entry logged through it.
type Fields struct {
	mu sync.RWMutex
	m  map[string]interface{}
}

// NewFields returns an empty Fields set.
func NewFields() *Fields {
	return &Fields{m: make(map[string]interface{})}
}

// Add stores key/val and returns the receiver for chaining.
func (f *Fields) Add(key string, val interface{}) *Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[key] = val
	return f
}

// Clone returns an independent copy of f.
func (f *Fields) Clone() *Fields {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := NewFields()
	for k, v := range f.m {
		n.m[k] = v
	}
	return n
}

// Logrus renders f as logrus.Fields for a single log call.
func (f *Fields) Logrus() logrus.Fields {
	out := make(logrus.Fields)
	if f == nil {
		return out
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for k, v := range f.m {
		out[k] = v
	}
	return out
}
