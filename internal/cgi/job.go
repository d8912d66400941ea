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

// Package cgi runs the three-phase CGI job lifecycle described in
// spec §4.H: stage the request body to a temp file, fork the interpreter,
// collect its output.
package cgi

import (
	"os"
	"os/exec"
)

// Phase is a CGI job's lifecycle stage.
type Phase int

const (
	Writing Phase = iota
	Reading
	Done
)

// Job is one CGI invocation, owned by the HttpResponse that created it
// (spec §3, "Ownership").
type Job struct {
	ScriptPath      string
	Interpreter     string
	PathInfo        string
	Body            []byte
	Env             []string

	TempFile   *os.File
	PipeRead   *os.File
	pipeWrite  *os.File
	cmd        *exec.Cmd

	Phase   Phase
	Output  []byte
}

// withdraw closes every FD the job holds and kills the child if it is
// still alive, per spec §4.H "Errors during any phase cause
// withdrawResource".
func (j *Job) withdraw() {
	if j.TempFile != nil {
		name := j.TempFile.Name()
		_ = j.TempFile.Close()
		_ = os.Remove(name)
		j.TempFile = nil
	}
	if j.pipeWrite != nil {
		_ = j.pipeWrite.Close()
		j.pipeWrite = nil
	}
	if j.PipeRead != nil {
		_ = j.PipeRead.Close()
		j.PipeRead = nil
	}
	if j.cmd != nil && j.cmd.Process != nil {
		_ = j.cmd.Process.Kill()
	}
}
