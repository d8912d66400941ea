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
	"html"
	"os"
	"path"
	"strings"
)

// renderAutoindex generates an HTML directory listing for dir, mounted at
// requestPath, skipping dotfiles, per spec §4.F.
func renderAutoindex(dir, requestPath string) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("<html><head><title>Index of ")
	b.WriteString(html.EscapeString(requestPath))
	b.WriteString("</title></head><body>\n<h1>Index of ")
	b.WriteString(html.EscapeString(requestPath))
	b.WriteString("</h1>\n<ul>\n")

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		href := name
		label := name
		if e.IsDir() {
			href += "/"
			label += "/"
		}
		fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n",
			html.EscapeString(path.Join(requestPath, href)), html.EscapeString(label))
	}

	b.WriteString("</ul>\n</body></html>\n")
	return []byte(b.String()), nil
}
