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

package router

import (
	"testing"

	"github/sabouaram/webserv/internal/config"
)

func tree() *config.Tree {
	root := &config.LocationConfig{Path: "/", CommonConfig: config.CommonConfig{Root: "/var/www"}}
	api := &config.LocationConfig{Path: "/api", CommonConfig: config.CommonConfig{Root: "/srv/api"}}
	apiV2 := &config.LocationConfig{Path: "/api/v2", CommonConfig: config.CommonConfig{Root: "/srv/api/v2"}}
	api.Locations = []*config.LocationConfig{apiV2}

	sc := &config.ServerConfig{
		Host:        "0.0.0.0",
		Port:        8080,
		ServerNames: []string{"x"},
		CGI:         map[string]string{".py": "/usr/bin/python3"},
		Locations:   []*config.LocationConfig{root, api},
	}
	return &config.Tree{Servers: []*config.ServerConfig{sc}}
}

func TestResolveLongestPrefix(t *testing.T) {
	tr := tree()

	cases := []struct {
		path string
		want string
	}{
		{"/api/v2/users", "/api/v2"},
		{"/api/users", "/api"},
		{"/index.html", "/"},
	}

	for _, c := range cases {
		m := Resolve(tr, "0.0.0.0:8080", "x", c.path)
		if m == nil || m.Location == nil {
			t.Fatalf("Resolve(%q): no match", c.path)
		}
		if m.Location.Path != c.want {
			t.Errorf("Resolve(%q).Location.Path = %q, want %q", c.path, m.Location.Path, c.want)
		}
	}
}

func TestResolveCGI(t *testing.T) {
	tr := tree()
	m := Resolve(tr, "0.0.0.0:8080", "x", "/cgi/echo.py/extra")
	if !m.IsCGI {
		t.Fatalf("expected CGI match for /cgi/echo.py/extra")
	}
	if m.PathInfo != "/extra" {
		t.Errorf("PathInfo = %q, want /extra", m.PathInfo)
	}
}

func TestResolveUnknownHost(t *testing.T) {
	tr := tree()
	if m := Resolve(tr, "1.2.3.4:9999", "x", "/"); m != nil {
		t.Errorf("expected nil match for unbound host:port, got %+v", m)
	}
}
