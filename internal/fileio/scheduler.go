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

// Package fileio is the non-blocking-equivalent file scheduler described in
// spec §4.G. Linux epoll refuses regular-file descriptors (EPERM), unlike
// the original engine's select()-based loop which always reports them
// ready; the Scheduler reproduces that always-ready behaviour by draining
// one bounded chunk per armed file on every reactor tick, outside of
// epoll_wait, per SPEC_FULL §5.
package fileio

import (
	"io"
	"os"
	"sync"
	"syscall"
)

// ChunkSize bounds a single read or write per tick, matching spec §4.G's
// 16 KiB figure.
const ChunkSize = 16 * 1024

// Direction says whether a job reads from or writes to disk.
type Direction int

const (
	Read Direction = iota
	Write
)

// Outcome is what happened during one Drain pass over a job.
type Outcome int

const (
	Pending Outcome = iota
	Progressed
	Finished
	Failed
)

// Job is one in-flight file operation, owned by the response that opened
// it (spec §3, "Ownership").
type Job struct {
	File      *os.File
	ClientFD  int
	Dir       Direction
	WriteData []byte // source buffer for Write jobs
	Offset    int64
	ReadBuf   []byte // accumulated output for Read jobs
}

// Scheduler is file_map: fd -> client_fd, plus the Job each fd is doing.
type Scheduler struct {
	mu   sync.Mutex
	jobs map[int]*Job
}

// New returns an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{jobs: make(map[int]*Job)}
}

// Register arms f for I/O on behalf of clientFD and sets f non-blocking
// (best-effort; regular files ignore O_NONBLOCK on Linux, but the flag is
// set for parity with socket/pipe FDs per spec §5).
func (s *Scheduler) Register(f *os.File, clientFD int, dir Direction, writeData []byte) *Job {
	fd := int(f.Fd())
	_ = syscall.SetNonblock(fd, true)
	j := &Job{File: f, ClientFD: clientFD, Dir: dir, WriteData: writeData}
	s.mu.Lock()
	s.jobs[fd] = j
	s.mu.Unlock()
	return j
}

// Unregister disarms fd (spec §4.G's "clear interest"); it does not close
// the file, which stays with the job's owner.
func (s *Scheduler) Unregister(fd int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, fd)
}

// ArmedFDs returns every currently registered file FD, for the reactor's
// per-tick drain pass.
func (s *Scheduler) ArmedFDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.jobs))
	for fd := range s.jobs {
		out = append(out, fd)
	}
	return out
}

// Job returns the Job registered for fd, or nil.
func (s *Scheduler) Job(fd int) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[fd]
}

// Drain performs one bounded chunk of I/O on fd's job and reports the
// outcome. The reactor calls this for every armed file FD once per tick,
// in ascending FD order, after epoll_wait returns.
func (s *Scheduler) Drain(fd int) Outcome {
	j := s.Job(fd)
	if j == nil {
		return Pending
	}

	if j.Dir == Write {
		return s.drainWrite(j)
	}
	return s.drainRead(j)
}

func (s *Scheduler) drainWrite(j *Job) Outcome {
	end := j.Offset + ChunkSize
	if end > int64(len(j.WriteData)) {
		end = int64(len(j.WriteData))
	}
	chunk := j.WriteData[j.Offset:end]

	if len(chunk) == 0 {
		return Finished
	}

	n, err := j.File.Write(chunk)
	if err != nil {
		return Failed
	}
	j.Offset += int64(n)
	if j.Offset >= int64(len(j.WriteData)) {
		return Finished
	}
	return Progressed
}

func (s *Scheduler) drainRead(j *Job) Outcome {
	buf := make([]byte, ChunkSize)
	n, err := j.File.Read(buf)
	if n > 0 {
		j.ReadBuf = append(j.ReadBuf, buf[:n]...)
	}
	if err == io.EOF {
		return Finished
	}
	if err != nil {
		return Failed
	}
	if n == 0 {
		return Finished
	}
	return Progressed
}
