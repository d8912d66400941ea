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
	"testing"
)

func TestChunkedRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("hi\n"),
		[]byte("hello world"),
		bytes.Repeat([]byte("x"), 10_000),
	}

	for _, want := range cases {
		encoded := EncodeChunked(want)
		got, done, consumed, err := DecodeChunked(encoded)
		if err != nil {
			t.Fatalf("DecodeChunked(%d bytes): %v", len(want), err)
		}
		if !done {
			t.Fatalf("DecodeChunked(%d bytes): not done", len(want))
		}
		if consumed != len(encoded) {
			t.Errorf("consumed = %d, want %d", consumed, len(encoded))
		}
		if !bytes.Equal(got, want) && !(len(got) == 0 && len(want) == 0) {
			t.Errorf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(want))
		}
	}
}

func TestDecodeChunkedIncomplete(t *testing.T) {
	partial := []byte("5\r\nhel")
	_, done, consumed, err := DecodeChunked(partial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done {
		t.Fatalf("expected incomplete decode to report done=false")
	}
	if consumed != 0 {
		t.Errorf("consumed = %d, want 0 for incomplete chunk", consumed)
	}
}

func TestDecodeChunkedMalformedSize(t *testing.T) {
	_, _, _, err := DecodeChunked([]byte("zzz\r\nhello\r\n0\r\n\r\n"))
	if err == nil {
		t.Fatal("expected error for non-hex chunk size")
	}
}
