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
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct-tag validation over every ServerConfig and
// LocationConfig in t, catching the directives that have hard constraints
// (positive timeouts, a non-empty listen host, a required root) before the
// reactor ever binds a socket, per SPEC_FULL §4.L.
func Validate(t *Tree) error {
	if len(t.Servers) == 0 {
		return ErrCodeValidation.Errorf("no server blocks defined")
	}
	for _, s := range t.Servers {
		if err := validate.Struct(s); err != nil {
			return ErrCodeValidation.Errorf("server '"+s.bindKey()+"': "+err.Error(), err)
		}
		if err := validateLocations(s.Locations); err != nil {
			return err
		}
	}
	return nil
}

func validateLocations(locs []*LocationConfig) error {
	for _, l := range locs {
		if err := validate.Struct(l); err != nil {
			return ErrCodeValidation.Errorf("location '"+l.Path+"': "+err.Error(), err)
		}
		if err := validateLocations(l.Locations); err != nil {
			return err
		}
	}
	return nil
}
