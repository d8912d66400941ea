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

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github/sabouaram/webserv/internal/httpmsg"
)

// StartWriting stages the request body to an anonymous temp file and
// returns a Job in the Writing phase. The reactor arms the returned file
// for write-interest via internal/fileio and feeds it j.Body in chunks.
// Mirrors the teacher's ioutils.NewTempFile helper (os.CreateTemp under the
// configured temp dir, removed on close rather than kept around).
func StartWriting(scriptPath, interpreter, pathInfo string, body []byte, env []string) (*Job, error) {
	if err := checkExecutable(interpreter); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp("", "webserv-cgi-*")
	if err != nil {
		return nil, ErrCodeSpawnFailed.Errorf("create temp file", err)
	}

	return &Job{
		ScriptPath:  scriptPath,
		Interpreter: interpreter,
		PathInfo:    pathInfo,
		Body:        body,
		Env:         env,
		TempFile:    f,
		Phase:       Writing,
	}, nil
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return ErrCodeNotExecutable.Errorf("interpreter not found", err)
	}
	if info.Mode()&0o111 == 0 {
		return ErrCodeNotExecutable.Errorf("interpreter not executable")
	}
	return nil
}

// Spawn transitions a Writing job to Reading: seeks the temp file back to
// 0, creates a pipe, and execs the interpreter with the script's directory
// as its working directory and argv = [interpreter, "./<basename>"], per
// spec §4.H. The returned *os.File is the pipe's read end, already handed
// to the caller for arming with read-interest.
func (j *Job) Spawn() (*os.File, error) {
	if _, err := j.TempFile.Seek(0, 0); err != nil {
		j.withdraw()
		return nil, ErrCodeSpawnFailed.Errorf("seek temp file", err)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		j.withdraw()
		return nil, ErrCodeSpawnFailed.Errorf("create pipe", err)
	}

	dir := filepath.Dir(j.ScriptPath)
	base := filepath.Base(j.ScriptPath)

	cmd := exec.Command(j.Interpreter, Argv(j.Interpreter, base)[1:]...)
	cmd.Dir = dir
	cmd.Env = j.Env
	cmd.Stdin = j.TempFile
	cmd.Stdout = pw

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		j.withdraw()
		return nil, ErrCodeSpawnFailed.Errorf("start interpreter", err)
	}

	_ = pw.Close() // parent doesn't write
	j.pipeWrite = nil
	j.PipeRead = pr
	j.cmd = cmd
	j.Phase = Reading

	return pr, nil
}

// Finish reaps the child and transitions to Done. Call once the pipe read
// end has returned EOF and j.Output holds the full CGI output.
func (j *Job) Finish() {
	if j.cmd != nil {
		_ = j.cmd.Wait()
	}
	_ = j.TempFile.Close()
	_ = os.Remove(j.TempFile.Name())
	if j.PipeRead != nil {
		_ = j.PipeRead.Close()
		j.PipeRead = nil
	}
	j.Phase = Done
}

// Abort withdraws every resource the job holds; called on any error during
// any phase, per spec §4.H.
func (j *Job) Abort() { j.withdraw() }

// ParseOutput splits raw CGI output at the first blank line into headers
// and body, per spec §4.H.3. A missing Status header yields 502 (the
// latest-variant choice SPEC_FULL §9 resolves); a present Set-Cookie value
// is returned separately for the session manager to register.
func ParseOutput(raw []byte) (status int, headers httpmsg.Headers, body []byte, setCookie string, err error) {
	idx := bytes.Index(raw, []byte("\r\n\r\n"))
	if idx < 0 {
		return 0, headers, nil, "", ErrCodeBadOutput.Errorf("no header/body separator in CGI output")
	}

	headerBlock := raw[:idx]
	body = raw[idx+4:]

	status = 0
	for _, line := range bytes.Split(headerBlock, []byte("\r\n")) {
		if len(line) == 0 {
			continue
		}
		sep := bytes.IndexByte(line, ':')
		if sep < 0 {
			continue
		}
		key := strings.TrimSpace(string(line[:sep]))
		val := strings.TrimSpace(string(line[sep+1:]))

		if strings.EqualFold(key, "Status") {
			if fields := strings.Fields(val); len(fields) > 0 {
				if n, perr := strconv.Atoi(fields[0]); perr == nil {
					status = n
				}
			}
			continue
		}
		if strings.EqualFold(key, "Set-Cookie") {
			setCookie = val
		}
		headers.Add(key, val)
	}

	if status == 0 {
		status = httpmsg.StatusBadGateway
	}

	return status, headers, body, setCookie, nil
}
