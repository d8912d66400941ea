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
	"strconv"
	"strings"
	"time"
)

// defaultBodyBufferSize is used when no client_body_buffer_size directive is
// inherited down to a given scope.
const defaultBodyBufferSize = 1 << 20

type parser struct {
	toks []token
	pos  int
}

// Parse lexes and parses src, a full nginx-style configuration file, into an
// immutable Tree. Scope inheritance is resolved before Parse returns: every
// LocationConfig and ServerConfig carries its own fully-resolved
// CommonConfig, copied down from its enclosing scope at parse time.
func Parse(src string) (*Tree, error) {
	p := &parser{toks: lex(src)}
	t := &Tree{}

	for p.peek().kind != tokEOF {
		word := p.expectWord()
		if word != "server" {
			return nil, ErrCodeUnexpectedTok.Errorf("expected 'server', got '" + word + "'")
		}
		sc, err := p.parseServer()
		if err != nil {
			return nil, err
		}
		t.Servers = append(t.Servers, sc)
	}

	return t, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expectWord() string {
	t := p.next()
	return t.text
}

func (p *parser) expect(kind tokenKind) error {
	t := p.next()
	if t.kind != kind {
		return ErrCodeUnexpectedTok.Errorf("unexpected token '" + t.text + "'")
	}
	return nil
}

func (p *parser) parseServer() (*ServerConfig, error) {
	if err := p.expect(tokLBrace); err != nil {
		return nil, err
	}

	sc := &ServerConfig{
		CommonConfig: CommonConfig{
			ErrorPages:           make(map[int]string),
			ClientBodyBufferSize: defaultBodyBufferSize,
		},
		CGI:              make(map[string]string),
		HeaderTimeout:    60 * time.Second,
		BodyTimeout:      60 * time.Second,
		KeepAliveTimeout: 75 * time.Second,
		GatewayTimeout:   30 * time.Second,
		KeepAliveMax:     100,
	}

	for {
		t := p.peek()
		if t.kind == tokRBrace {
			p.next()
			break
		}
		if t.kind == tokEOF {
			return nil, ErrCodeUnterminated.Errorf("unterminated server block")
		}

		directive := p.expectWord()
		switch directive {
		case "listen":
			arg := p.expectWord()
			host, port, err := splitHostPort(arg)
			if err != nil {
				return nil, err
			}
			sc.Host, sc.Port = host, port
		case "server_name":
			for p.peek().kind == tokWord {
				sc.ServerNames = append(sc.ServerNames, p.expectWord())
			}
		case "timeout":
			secs, err := strconv.Atoi(p.expectWord())
			if err != nil {
				return nil, ErrCodeBadDirective.Errorf("invalid timeout value", err)
			}
			d := time.Duration(secs) * time.Second
			sc.HeaderTimeout, sc.BodyTimeout, sc.KeepAliveTimeout = d, d, d
		case "cgi":
			ext := p.expectWord()
			interp := p.expectWord()
			sc.CGI[ext] = interp
		case "location":
			loc, err := p.parseLocation(sc.CommonConfig)
			if err != nil {
				return nil, err
			}
			sc.Locations = append(sc.Locations, loc)
			continue // location consumes its own closing brace, no semicolon
		default:
			if err := applyCommonDirective(&sc.CommonConfig, directive, p); err != nil {
				return nil, err
			}
		}

		if directive != "location" {
			if err := p.expect(tokSemi); err != nil {
				return nil, err
			}
		}
	}

	resolveLocations(sc.Locations, sc.CommonConfig)
	return sc, nil
}

func (p *parser) parseLocation(inherited CommonConfig) (*LocationConfig, error) {
	path := p.expectWord()
	if err := p.expect(tokLBrace); err != nil {
		return nil, err
	}

	loc := &LocationConfig{
		CommonConfig: inherited,
		Path:         path,
	}
	loc.ErrorPages = cloneErrorPages(inherited.ErrorPages)

	for {
		t := p.peek()
		if t.kind == tokRBrace {
			p.next()
			break
		}
		if t.kind == tokEOF {
			return nil, ErrCodeUnterminated.Errorf("unterminated location block")
		}

		directive := p.expectWord()
		switch directive {
		case "alias":
			loc.Alias = p.expectWord()
		case "limit_except":
			for p.peek().kind == tokWord {
				loc.LimitExcept = append(loc.LimitExcept, p.expectWord())
			}
		case "autoindex":
			loc.Autoindex = p.expectWord() == "on"
		case "return":
			code, err := strconv.Atoi(p.expectWord())
			if err != nil {
				return nil, ErrCodeBadDirective.Errorf("invalid return code", err)
			}
			loc.ReturnCode = code
			loc.HasReturn = true
			if p.peek().kind == tokWord {
				loc.ReturnURI = p.expectWord()
			}
		case "location":
			child, err := p.parseLocation(loc.CommonConfig)
			if err != nil {
				return nil, err
			}
			loc.Locations = append(loc.Locations, child)
			continue
		default:
			if err := applyCommonDirective(&loc.CommonConfig, directive, p); err != nil {
				return nil, err
			}
		}

		if directive != "location" {
			if err := p.expect(tokSemi); err != nil {
				return nil, err
			}
		}
	}

	return loc, nil
}

// applyCommonDirective handles the directives shared by server and location
// scope (root, error_page, client_body_buffer_size, index).
func applyCommonDirective(c *CommonConfig, directive string, p *parser) error {
	switch directive {
	case "root":
		c.Root = p.expectWord()
	case "error_page":
		var codes []int
		for p.peek().kind == tokWord {
			w := p.expectWord()
			if n, err := strconv.Atoi(w); err == nil {
				codes = append(codes, n)
			} else {
				if c.ErrorPages == nil {
					c.ErrorPages = make(map[int]string)
				}
				for _, code := range codes {
					c.ErrorPages[code] = w
				}
				return nil
			}
		}
		return ErrCodeBadDirective.Errorf("error_page missing path")
	case "client_body_buffer_size":
		sz, err := ParseByteSize(p.expectWord())
		if err != nil {
			return err
		}
		c.ClientBodyBufferSize = sz
	case "index":
		for p.peek().kind == tokWord {
			c.Index = append(c.Index, p.expectWord())
		}
	default:
		return ErrCodeBadDirective.Errorf("unknown directive '" + directive + "'")
	}
	return nil
}

func cloneErrorPages(m map[int]string) map[int]string {
	out := make(map[int]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// resolveLocations propagates each server's CommonConfig down through
// nested locations, so every LocationConfig ends up self-contained; a
// child's error_page for a given status shadows its parent's, per
// SPEC_FULL §4.K.
func resolveLocations(locs []*LocationConfig, parent CommonConfig) {
	for _, l := range locs {
		if l.Root == "" {
			l.Root = parent.Root
		}
		if l.ClientBodyBufferSize == 0 {
			l.ClientBodyBufferSize = parent.ClientBodyBufferSize
		}
		if len(l.Index) == 0 {
			l.Index = parent.Index
		}
		resolveLocations(l.Locations, l.CommonConfig)
	}
}

func splitHostPort(s string) (string, int, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return "", 0, ErrCodeBadDirective.Errorf("listen directive missing port")
	}
	host := s[:idx]
	port, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return "", 0, ErrCodeBadDirective.Errorf("invalid listen port", err)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return host, port, nil
}
