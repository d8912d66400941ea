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

// Package httpmsg implements the incremental HTTP/1.1 request parser and the
// HttpRequest/HttpResponse value types shared by the router, handlers, and
// response writer.
package httpmsg

const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusNoContent           = 204
	StatusMovedPermanently    = 301
	StatusFound               = 302
	StatusBadRequest          = 400
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusRequestTimeout      = 408
	StatusPayloadTooLarge     = 413
	StatusURITooLong          = 414
	StatusUpgradeRequired     = 426
	StatusInternalServerError = 500
	StatusBadGateway          = 502
	StatusGatewayTimeout      = 504
	StatusNotImplemented      = 501
	StatusHTTPVersionNotSup   = 505
)

var reasons = map[int]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusNoContent:           "No Content",
	StatusMovedPermanently:    "Moved Permanently",
	StatusFound:               "Found",
	StatusBadRequest:          "Bad Request",
	StatusForbidden:           "Forbidden",
	StatusNotFound:            "Not Found",
	StatusMethodNotAllowed:    "Method Not Allowed",
	StatusRequestTimeout:      "Request Timeout",
	StatusPayloadTooLarge:     "Payload Too Large",
	StatusURITooLong:          "URI Too Long",
	StatusUpgradeRequired:     "Upgrade Required",
	StatusInternalServerError: "Internal Server Error",
	StatusBadGateway:          "Bad Gateway",
	StatusGatewayTimeout:      "Gateway Timeout",
	StatusNotImplemented:      "Not Implemented",
	StatusHTTPVersionNotSup:   "HTTP Version Not Supported",
}

// Reason returns the canonical reason phrase for code, or "Unknown" if code
// is not one the server ever emits.
func Reason(code int) string {
	if r, ok := reasons[code]; ok {
		return r
	}
	return "Unknown"
}
