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

package config

import "github/sabouaram/webserv/internal/xerrors"

const (
	ErrCodeBadDirective  = xerrors.MinPkgConfig + 1
	ErrCodeUnexpectedTok = xerrors.MinPkgConfig + 2
	ErrCodeUnterminated  = xerrors.MinPkgConfig + 3
	ErrCodeValidation    = xerrors.MinPkgConfig + 4
)

func init() {
	xerrors.RegisterIdFctMessage(xerrors.MinPkgConfig, func(c xerrors.CodeError) string {
		switch c {
		case ErrCodeBadDirective:
			return "bad directive"
		case ErrCodeUnexpectedTok:
			return "unexpected token"
		case ErrCodeUnterminated:
			return "unterminated block"
		case ErrCodeValidation:
			return "config validation failed"
		default:
			return "config error"
		}
	})
}
