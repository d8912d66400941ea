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

// Package response serialises an httpmsg.Response to wire bytes and paces
// its delivery in bounded chunks, per spec §4.J.
package response

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github/sabouaram/webserv/internal/httpmsg"
)

// ChunkSize bounds a single send, matching spec §4.J's 16 KiB figure.
const ChunkSize = 16 * 1024

// Writer lazily composes resp's wire bytes on first call to Next, then
// hands out successive chunks.
type Writer struct {
	resp    *httpmsg.Response
	wire    []byte
	offset  int
}

// New wraps resp for pacing. ApplyExtraHeaders must be called before New
// if keep-alive/Allow/Upgrade headers are needed.
func New(resp *httpmsg.Response) *Writer {
	return &Writer{resp: resp}
}

// ApplyExtraHeaders sets the headers spec §4.J requires immediately before
// a response is armed for send: Connection/Keep-Alive, Allow on 405,
// Upgrade on 426.
func ApplyExtraHeaders(resp *httpmsg.Response, requestWantsKeepAlive bool, keepAliveRemaining int, keepAliveTimeout time.Duration, keepAliveMax int, limitExcept []string) {
	if requestWantsKeepAlive && keepAliveRemaining > 0 {
		resp.Headers.Set("Connection", "keep-alive")
		resp.Headers.Set("Keep-Alive", fmt.Sprintf("timeout=%d, max=%d", int(keepAliveTimeout.Seconds()), keepAliveMax))
	} else {
		resp.Headers.Set("Connection", "close")
	}

	if resp.Status == httpmsg.StatusMethodNotAllowed && len(limitExcept) > 0 {
		resp.Headers.Set("Allow", strings.Join(limitExcept, ", "))
	}
	if resp.Status == httpmsg.StatusUpgradeRequired {
		resp.Headers.Set("Upgrade", "HTTP/1.1")
	}
}

func (w *Writer) compose() {
	if w.wire != nil {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", w.resp.Status, httpmsg.Reason(w.resp.Status))

	if _, hasCL := w.resp.Headers.Get("Content-Length"); !hasCL && w.resp.Status != httpmsg.StatusNoContent {
		w.resp.Headers.Set("Content-Length", strconv.Itoa(len(w.resp.Body)))
	}
	if _, hasDate := w.resp.Headers.Get("Date"); !hasDate {
		w.resp.Headers.Set("Date", time.Now().UTC().Format(time.RFC1123))
	}

	w.resp.Headers.Walk(func(key, val string) {
		fmt.Fprintf(&b, "%s: %s\r\n", key, val)
	})
	b.WriteString("\r\n")

	wire := []byte(b.String())
	if w.resp.Status != httpmsg.StatusNoContent {
		wire = append(wire, w.resp.Body...)
	}
	w.wire = wire
}

// Next returns up to ChunkSize unsent bytes. The caller (reactor) writes
// them to the client socket and calls Advance with however many bytes the
// socket accepted.
func (w *Writer) Next() []byte {
	w.compose()
	end := w.offset + ChunkSize
	if end > len(w.wire) {
		end = len(w.wire)
	}
	return w.wire[w.offset:end]
}

// Advance records n more bytes sent and transitions SendState to Done once
// every byte has gone out.
func (w *Writer) Advance(n int) {
	w.offset += n
	w.resp.BytesSent += int64(n)
	if w.offset >= len(w.wire) {
		w.resp.SendState = httpmsg.Done
	}
}

// Done reports whether every byte of the response has been sent.
func (w *Writer) Done() bool {
	w.compose()
	return w.offset >= len(w.wire)
}
