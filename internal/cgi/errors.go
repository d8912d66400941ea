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

import "github/sabouaram/webserv/internal/xerrors"

const (
	ErrCodeNotExecutable = xerrors.MinPkgCGI + 1
	ErrCodeSpawnFailed   = xerrors.MinPkgCGI + 2
	ErrCodeBadOutput     = xerrors.MinPkgCGI + 3
)

func init() {
	xerrors.RegisterIdFctMessage(xerrors.MinPkgCGI, func(c xerrors.CodeError) string {
		switch c {
		case ErrCodeNotExecutable:
			return "CGI interpreter is not executable"
		case ErrCodeSpawnFailed:
			return "CGI process failed to start"
		case ErrCodeBadOutput:
			return "CGI output malformed"
		default:
			return "CGI error"
		}
	})
}
