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

// Package handler dispatches a terminal request to a method handler, per
// spec §4.F: preconditions first, then GET/HEAD/POST/PUT/DELETE, falling
// through to the error-page resolver on any failure.
package handler

import (
	"fmt"
	"os"
	"strings"

	"github/sabouaram/webserv/internal/config"
	"github/sabouaram/webserv/internal/fileio"
	"github/sabouaram/webserv/internal/httpmsg"
)

// FileOpen asks the reactor to register targetPath with the file
// scheduler; Response is returned once the file job finishes (see
// internal/fileio and SPEC_FULL §5).
type FileOpen struct {
	Path      string
	Dir       fileio.Direction
	WriteData []byte
	OnSuccess *httpmsg.Response // headers/status to use once the file job completes
}

// CGIStart asks the reactor to hand targetPath off to internal/cgi.
type CGIStart struct {
	ScriptPath  string
	Interpreter string
	PathInfo    string
}

// Decision is the outcome of Handle: exactly one of Response, OpenFile, or
// StartCGI is non-nil.
type Decision struct {
	Response *httpmsg.Response
	OpenFile *FileOpen
	StartCGI *CGIStart
}

// Handle runs the preconditions and method dispatch for req, whose
// Server/Location/IsCGI fields the router has already populated.
func Handle(req *httpmsg.Request, keepAliveRemaining int) *Decision {
	if req.Phase == httpmsg.ReceiveError {
		return &Decision{Response: ResolveErrorPage(req.Location, req.ErrorStatus)}
	}

	loc := req.Location
	if loc == nil {
		return &Decision{Response: ResolveErrorPage(nil, httpmsg.StatusNotFound)}
	}

	if loc.ClientBodyBufferSize > 0 && int64(len(req.Body)) > loc.ClientBodyBufferSize {
		return &Decision{Response: ResolveErrorPage(loc, httpmsg.StatusPayloadTooLarge)}
	}

	if len(loc.LimitExcept) > 0 && !methodAllowed(loc.LimitExcept, req.Method) {
		resp := ResolveErrorPage(loc, httpmsg.StatusMethodNotAllowed)
		resp.Headers.Set("Allow", strings.Join(loc.LimitExcept, ", "))
		return &Decision{Response: resp}
	}

	if loc.HasReturn {
		resp := httpmsg.NewResponse(loc.ReturnCode)
		resp.Headers.Set("Location", loc.ReturnURI)
		return &Decision{Response: resp}
	}

	if req.IsCGI {
		return &Decision{StartCGI: &CGIStart{
			ScriptPath:  req.ScriptPath,
			Interpreter: cgiInterpreter(req),
			PathInfo:    req.PathInfo,
		}}
	}

	switch req.Method {
	case "GET", "HEAD":
		return handleGet(req, loc)
	case "POST":
		return handlePost(req)
	case "PUT":
		return handlePut(req)
	case "DELETE":
		return handleDelete(req, loc)
	default:
		return &Decision{Response: ResolveErrorPage(loc, httpmsg.StatusMethodNotAllowed)}
	}
}

func serverName(sc *config.ServerConfig) string {
	if len(sc.ServerNames) > 0 {
		return sc.ServerNames[0]
	}
	return sc.Host
}

func methodAllowed(allowed []string, method string) bool {
	for _, m := range allowed {
		if m == method {
			return true
		}
	}
	return false
}

func cgiInterpreter(req *httpmsg.Request) string {
	for ext, interp := range req.Server.CGI {
		if strings.HasSuffix(req.ScriptPath, ext) {
			return interp
		}
	}
	return ""
}

func handleGet(req *httpmsg.Request, loc *config.LocationConfig) *Decision {
	info, err := os.Stat(req.CGIPath)
	if err != nil {
		return &Decision{Response: ResolveErrorPage(loc, httpmsg.StatusNotFound)}
	}

	if info.IsDir() {
		if loc.Autoindex {
			body, err := renderAutoindex(req.CGIPath, req.Path)
			if err != nil {
				return &Decision{Response: ResolveErrorPage(loc, httpmsg.StatusForbidden)}
			}
			resp := httpmsg.NewResponse(httpmsg.StatusOK)
			resp.Headers.Set("Content-Type", "text/html")
			resp.Body = body
			return &Decision{Response: resp}
		}
		for _, idx := range loc.Index {
			candidate := req.CGIPath + "/" + idx
			if _, err := os.Stat(candidate); err == nil {
				return &Decision{OpenFile: &FileOpen{
					Path: candidate, Dir: fileio.Read,
					OnSuccess: httpmsg.NewResponse(httpmsg.StatusOK),
				}}
			}
		}
		return &Decision{Response: ResolveErrorPage(loc, httpmsg.StatusNotFound)}
	}

	if !info.Mode().IsRegular() {
		return &Decision{Response: ResolveErrorPage(loc, httpmsg.StatusForbidden)}
	}

	return &Decision{OpenFile: &FileOpen{
		Path: req.CGIPath, Dir: fileio.Read,
		OnSuccess: httpmsg.NewResponse(httpmsg.StatusOK),
	}}
}

func handlePost(req *httpmsg.Request) *Decision {
	if info, err := os.Stat(req.CGIPath); err == nil && info.IsDir() {
		return &Decision{Response: ResolveErrorPage(req.Location, httpmsg.StatusForbidden)}
	}

	resp := httpmsg.NewResponse(httpmsg.StatusCreated)
	location := fmt.Sprintf("%s:%d%s", serverName(req.Server), req.Server.Port, req.Path)
	resp.Headers.Set("Location", location)

	return &Decision{OpenFile: &FileOpen{
		Path: req.CGIPath, Dir: fileio.Write, WriteData: req.Body,
		OnSuccess: resp,
	}}
}

func handlePut(req *httpmsg.Request) *Decision {
	if info, err := os.Stat(req.CGIPath); err == nil && info.IsDir() {
		return &Decision{Response: ResolveErrorPage(req.Location, httpmsg.StatusForbidden)}
	}

	return &Decision{OpenFile: &FileOpen{
		Path: req.CGIPath, Dir: fileio.Write, WriteData: req.Body,
		OnSuccess: httpmsg.NewResponse(httpmsg.StatusNoContent),
	}}
}

func handleDelete(req *httpmsg.Request, loc *config.LocationConfig) *Decision {
	info, err := os.Stat(req.CGIPath)
	if err != nil {
		return &Decision{Response: ResolveErrorPage(loc, httpmsg.StatusNotFound)}
	}
	if info.IsDir() {
		return &Decision{Response: ResolveErrorPage(loc, httpmsg.StatusForbidden)}
	}
	if err := os.Remove(req.CGIPath); err != nil {
		return &Decision{Response: ResolveErrorPage(loc, httpmsg.StatusNotFound)}
	}
	return &Decision{Response: httpmsg.NewResponse(httpmsg.StatusOK)}
}
