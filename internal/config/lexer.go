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

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokLBrace
	tokRBrace
	tokSemi
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lex tokenizes src into a flat token stream. Whitespace separates bare
// words; `"..."` and `'...'` produce a single word token with quotes
// stripped; `{`, `}`, `;` are always standalone tokens, even unquoted and
// unspaced, mirroring nginx's own tokenizer.
func lex(src string) []token {
	var toks []token
	line := 1
	r := []rune(src)
	i, n := 0, len(r)

	for i < n {
		c := r[i]
		switch {
		case c == '\n':
			line++
			i++
		case unicode.IsSpace(c):
			i++
		case c == '#':
			for i < n && r[i] != '\n' {
				i++
			}
		case c == '{':
			toks = append(toks, token{tokLBrace, "{", line})
			i++
		case c == '}':
			toks = append(toks, token{tokRBrace, "}", line})
			i++
		case c == ';':
			toks = append(toks, token{tokSemi, ";", line})
			i++
		case c == '"' || c == '\'':
			quote := c
			start := i + 1
			j := start
			for j < n && r[j] != quote {
				j++
			}
			toks = append(toks, token{tokWord, string(r[start:j]), line})
			i = j + 1
		default:
			start := i
			for i < n && !unicode.IsSpace(r[i]) && r[i] != '{' && r[i] != '}' && r[i] != ';' {
				i++
			}
			word := strings.TrimSpace(string(r[start:i]))
			if word != "" {
				toks = append(toks, token{tokWord, word, line})
			}
		}
	}

	toks = append(toks, token{tokEOF, "", line})
	return toks
}
