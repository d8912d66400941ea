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

package cgi

import (
	"fmt"
	"strconv"
	"strings"

	"github/sabouaram/webserv/internal/httpmsg"
)

// Env holds the parameters needed to build a CGI/1.1 environment, per
// spec §4.H. Any recognised request header is additionally exposed as
// HTTP_<UPPER_SNAKE>.
type Env struct {
	ScriptPath     string
	PathInfo       string
	QueryString    string
	Method         string
	RequestURI     string
	ServerName     string
	ServerPort     int
	ContentLength  int64
	ContentType    string
	Cookie         string
	SessionPresent bool
}

// Build renders the CGI/1.1 environment as "KEY=VALUE" strings suitable
// for exec.Cmd.Env.
func Build(e Env, headers httpmsg.Headers) []string {
	out := []string{
		"GATEWAY_INTERFACE=CGI/1.1",
		"SERVER_PROTOCOL=HTTP/1.1",
		"SERVER_SOFTWARE=webserv/1.0",
		"SCRIPT_NAME=" + e.ScriptPath,
		"PATH_INFO=" + e.PathInfo,
		"PATH_TRANSLATED=" + "." + e.PathInfo,
		"QUERY_STRING=" + e.QueryString,
		"REQUEST_METHOD=" + e.Method,
		"REQUEST_URI=" + e.RequestURI,
		"SERVER_NAME=" + e.ServerName,
		"SERVER_PORT=" + strconv.Itoa(e.ServerPort),
		"CONTENT_LENGTH=" + strconv.FormatInt(e.ContentLength, 10),
		"CONTENT_TYPE=" + e.ContentType,
		"HTTP_COOKIE=" + e.Cookie,
		"SESSION_AVAILABLE=" + strconv.FormatBool(e.SessionPresent),
	}

	headers.Walk(func(key, val string) {
		out = append(out, "HTTP_"+headerEnvName(key)+"="+val)
	})

	return out
}

func headerEnvName(header string) string {
	return strings.ToUpper(strings.ReplaceAll(header, "-", "_"))
}

// Argv returns the interpreter's argument vector: the interpreter itself
// plus a script path relative to its own directory, per spec §4.H.
func Argv(interpreter, scriptBasename string) []string {
	return []string{interpreter, fmt.Sprintf("./%s", scriptBasename)}
}
