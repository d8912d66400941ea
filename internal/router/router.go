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

// Package router resolves a request's Host and path to a ServerConfig and
// LocationConfig, rewrites the path per alias/root, and detects CGI.
package router

import (
	"strings"

	"github/sabouaram/webserv/internal/config"
)

// Match is the outcome of resolving one request.
type Match struct {
	Server       *config.ServerConfig
	Location     *config.LocationConfig
	TargetPath   string
	IsCGI        bool
	ScriptPath   string
	PathInfo     string
	Interpreter  string
}

// Resolve picks the ServerConfig for hostPort/requestHost, then the longest-
// prefix LocationConfig for path within it, and computes the target
// filesystem path and CGI classification, per spec §4.E.
func Resolve(tree *config.Tree, hostPort, requestHost, path string) *Match {
	sc := tree.Resolve(hostPort, requestHost)
	if sc == nil {
		return nil
	}

	loc := matchLocation(sc.Locations, path, nil)

	m := &Match{Server: sc, Location: loc}
	m.TargetPath = targetPath(loc, path)

	for ext, interp := range sc.CGI {
		if idx := strings.Index(m.TargetPath, ext); idx >= 0 {
			m.IsCGI = true
			m.Interpreter = interp
			m.ScriptPath = m.TargetPath[:idx+len(ext)]
			m.PathInfo = m.TargetPath[idx+len(ext):]
			break
		}
	}

	return m
}

// matchLocation walks the location tree (including nested locations) and
// returns the location whose Path is the longest prefix of path. P4.
func matchLocation(locs []*config.LocationConfig, path string, best *config.LocationConfig) *config.LocationConfig {
	for _, l := range locs {
		if strings.HasPrefix(path, l.Path) {
			if best == nil || len(l.Path) > len(best.Path) {
				best = l
			}
			best = matchLocation(l.Locations, path, best)
		}
	}
	return best
}

// targetPath computes "." + substituted, applying alias (replace the
// matched prefix) or root (prepend), per spec §4.E.
func targetPath(loc *config.LocationConfig, requestPath string) string {
	if loc == nil {
		return "." + requestPath
	}
	var substituted string
	if loc.Alias != "" {
		substituted = loc.Alias + strings.TrimPrefix(requestPath, loc.Path)
	} else {
		substituted = loc.Root + requestPath
	}
	return "." + substituted
}
