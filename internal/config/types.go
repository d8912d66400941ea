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

// Package config lexes and parses the nginx-style configuration file into an
// immutable Tree, resolving scope inheritance (Common ⊂ Server ⊂ Location ⊂
// Location…) at parse time so the reactor never has to walk parent scopes at
// request time.
package config

import (
	"strconv"
	"time"
)

// CommonConfig holds the directives shared by Server and Location scopes.
// Every field is resolved (inherited from the enclosing scope) by the time
// the Tree is returned from Parse.
type CommonConfig struct {
	Root                 string         `validate:"required"`
	ErrorPages            map[int]string
	ClientBodyBufferSize  int64          `validate:"gt=0"`
	Index                 []string
}

// LocationConfig is a routing block scoped by URL path prefix.
type LocationConfig struct {
	CommonConfig
	Path          string `validate:"required"`
	Alias         string
	LimitExcept   []string
	ReturnCode    int
	ReturnURI     string
	HasReturn     bool
	Autoindex     bool
	Locations     []*LocationConfig
}

// ServerConfig binds one host:port and owns a tree of locations.
type ServerConfig struct {
	CommonConfig
	Host             string        `validate:"required"`
	Port             int           `validate:"required,gt=0,lt=65536"`
	ServerNames      []string
	HeaderTimeout    time.Duration `validate:"gt=0"`
	BodyTimeout      time.Duration `validate:"gt=0"`
	KeepAliveTimeout time.Duration `validate:"gt=0"`
	GatewayTimeout   time.Duration `validate:"gt=0"`
	KeepAliveMax     int           `validate:"gt=0"`
	CGI              map[string]string
	Locations        []*LocationConfig
}

// Tree is the immutable, fully resolved configuration. It is built once by
// Parse and never mutated afterward; the reactor and router only read it.
type Tree struct {
	Servers []*ServerConfig
}

// Bindable returns the distinct "host:port" pairs the listener set must
// bind, in declaration order, de-duplicated.
func (t *Tree) Bindable() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range t.Servers {
		key := s.bindKey()
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	return out
}

func (s *ServerConfig) bindKey() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// ServersFor returns every ServerConfig bound to "host:port", in
// declaration order; the first is the router's fallback default.
func (t *Tree) ServersFor(hostPort string) []*ServerConfig {
	var out []*ServerConfig
	for _, s := range t.Servers {
		if s.bindKey() == hostPort {
			out = append(out, s)
		}
	}
	return out
}

// Resolve picks the ServerConfig for hostPort matching the request's Host
// header against server_name, falling back to the first server bound to
// that host:port, per spec §4.D.
func (t *Tree) Resolve(hostPort, requestHost string) *ServerConfig {
	servers := t.ServersFor(hostPort)
	if len(servers) == 0 {
		return nil
	}
	for _, s := range servers {
		for _, n := range s.ServerNames {
			if n == requestHost {
				return s
			}
		}
	}
	return servers[0]
}
