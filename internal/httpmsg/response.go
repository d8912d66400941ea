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

// CGIStatus classifies whether a response is backed by a CGI job.
type CGIStatus int

const (
	NotCGI CGIStatus = iota
	IsCGI
)

// SendStatus tracks the response writer's progress, per spec §4.J.
type SendStatus int

const (
	Sending SendStatus = iota
	Done
)

// FileDirection says whether Response.FileFD is being read from (GET) or
// written to (POST/PUT).
type FileDirection int

const (
	NoFile FileDirection = iota
	FileRead
	FileWrite
)

// Response is the in-progress or finished reply to one Request.
type Response struct {
	Status  int
	Headers Headers
	Body    []byte

	CGI CGIStatus

	FileFD     int
	FileDir    FileDirection
	FileOffset int64

	SendState  SendStatus
	BytesSent  int64
	IsError    bool
}

// NewResponse returns a Response carrying status and no body.
func NewResponse(status int) *Response {
	return &Response{Status: status, FileFD: -1}
}
