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

package handler

import (
	"fmt"
	"os"

	"github/sabouaram/webserv/internal/config"
	"github/sabouaram/webserv/internal/httpmsg"
)

// ResolveErrorPage builds the error response for status. If loc declares a
// configured error_page for status and it can be read, that content is
// used verbatim; any failure (missing loc, missing mapping, unreadable
// file) falls back to the built-in template. The resolver never recurses,
// per spec §7.
func ResolveErrorPage(loc *config.LocationConfig, status int) *httpmsg.Response {
	if loc != nil {
		if p, ok := loc.ErrorPages[status]; ok {
			if data, err := os.ReadFile(p); err == nil {
				resp := httpmsg.NewResponse(status)
				resp.Body = data
				resp.IsError = true
				return resp
			}
		}
	}
	return builtinErrorPage(status)
}

func builtinErrorPage(status int) *httpmsg.Response {
	reason := httpmsg.Reason(status)
	body := fmt.Sprintf(
		"<html><head><title>%d %s</title></head><body><center><h1>%d %s</h1></center></body></html>\n",
		status, reason, status, reason,
	)
	resp := httpmsg.NewResponse(status)
	resp.Body = []byte(body)
	resp.IsError = true
	return resp
}
