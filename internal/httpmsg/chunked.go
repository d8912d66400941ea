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

import (
	"bytes"
	"strconv"
)

// EncodeChunked frames body as HTTP/1.1 chunked transfer encoding, used by
// tests to exercise the round-trip property (P3); the server itself never
// emits chunked responses.
func EncodeChunked(body []byte) []byte {
	var out bytes.Buffer
	const chunkSize = 4096
	for i := 0; i < len(body); i += chunkSize {
		end := i + chunkSize
		if end > len(body) {
			end = len(body)
		}
		chunk := body[i:end]
		out.WriteString(strconv.FormatInt(int64(len(chunk)), 16))
		out.WriteString("\r\n")
		out.Write(chunk)
		out.WriteString("\r\n")
	}
	out.WriteString("0\r\n\r\n")
	return out.Bytes()
}

// DecodeChunked unchunks buf per spec §4.D: alternately a hex size line and
// a payload of exactly that size; a zero size ends the body. It returns the
// decoded body, whether the terminator was reached, and how many bytes of
// buf were consumed; a chunk that is not yet complete (its size line
// included) is not counted as consumed. A malformed chunk (size line that
// isn't hex, or a payload not followed by CRLF) is reported as an error.
func DecodeChunked(buf []byte) (body []byte, done bool, consumed int, err error) {
	pos := 0
	for {
		start := pos
		lineEnd := bytes.Index(buf[pos:], []byte("\r\n"))
		if lineEnd < 0 {
			return body, false, start, nil // need more data
		}
		sizeLine := buf[pos : pos+lineEnd]
		if semi := bytes.IndexByte(sizeLine, ';'); semi >= 0 {
			sizeLine = sizeLine[:semi]
		}
		size, perr := strconv.ParseInt(string(sizeLine), 16, 64)
		if perr != nil || size < 0 {
			return nil, false, 0, ErrCodeMalformedChunk.Errorf("invalid chunk size line")
		}
		pos += lineEnd + 2

		if size == 0 {
			// terminator: the size-0 line is followed by one CRLF;
			// trailer headers are not parsed.
			end := bytes.Index(buf[pos:], []byte("\r\n"))
			if end < 0 {
				return body, false, start, nil
			}
			pos += end + 2
			return body, true, pos, nil
		}

		if int64(len(buf)-pos) < size+2 {
			return body, false, start, nil // need more data
		}
		payload := buf[pos : pos+int(size)]
		if buf[pos+int(size)] != '\r' || buf[pos+int(size)+1] != '\n' {
			return nil, false, 0, ErrCodeMalformedChunk.Errorf("chunk payload missing CRLF terminator")
		}
		body = append(body, payload...)
		pos += int(size) + 2
	}
}
