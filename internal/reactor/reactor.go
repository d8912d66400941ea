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

// Package reactor is the single-threaded readiness-multiplexing event loop:
// it owns the epoll FD set, the connection table, the file scheduler, and
// the CGI jobs in flight, and dispatches each ready FD by kind every tick
// (spec §4.A).
package reactor

import (
	"context"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github/sabouaram/webserv/internal/cgi"
	"github/sabouaram/webserv/internal/config"
	"github/sabouaram/webserv/internal/conn"
	"github/sabouaram/webserv/internal/fileio"
	"github/sabouaram/webserv/internal/handler"
	"github/sabouaram/webserv/internal/httpmsg"
	"github/sabouaram/webserv/internal/metrics"
	"github/sabouaram/webserv/internal/response"
	"github/sabouaram/webserv/internal/session"
	"github/sabouaram/webserv/internal/xlog"
)

const recvChunk = 16 * 1024

// clientState is the per-client bookkeeping the reactor keeps outside of
// conn.Table — the parser, response writer, and whichever producer
// (file job or CGI job) is currently feeding the response.
type clientState struct {
	parser      *httpmsg.Parser
	writer      *response.Writer
	listenerKey string
	connID      string

	fileJob  *fileio.Job
	fileOpen *handler.FileOpen

	cgiJob *cgi.Job
}

// Reactor is the single-threaded readiness loop described in spec §4.A.
type Reactor struct {
	epfd      int
	listeners []*listener
	listenerByFD map[int]*listener

	clients map[int]*clientState

	table     *conn.Table
	fileSched *fileio.Scheduler
	sessions  *session.Manager
	log       *xlog.Logger
	tree      *config.Tree
	metrics   *metrics.Registry
}

// New builds a Reactor bound to every "host:port" in tree, per spec §4.B.
// m may be nil (tests construct a Reactor without a metrics registry).
func New(tree *config.Tree, sessions *session.Manager, log *xlog.Logger, m *metrics.Registry) (*Reactor, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, ErrCodeBindFailed.Errorf("epoll_create1", err)
	}

	r := &Reactor{
		epfd:         epfd,
		listenerByFD: make(map[int]*listener),
		clients:      make(map[int]*clientState),
		table:        conn.New(),
		fileSched:    fileio.New(),
		sessions:     sessions,
		log:          log,
		tree:         tree,
		metrics:      m,
	}

	for _, hostPort := range tree.Bindable() {
		l, err := bindListener(hostPort)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.listeners = append(r.listeners, l)
		r.listenerByFD[l.fd] = l
		if err := r.armRead(l.fd, true); err != nil {
			r.Close()
			return nil, err
		}
	}

	return r, nil
}

// Close releases every listener and the epoll FD itself, per spec §7 tier 3
// ("descriptors are closed in the destructor of the listener set").
func (r *Reactor) Close() {
	for _, l := range r.listeners {
		l.close()
	}
	unix.Close(r.epfd)
}

func (r *Reactor) epollCtl(op int, fd int, events uint32) error {
	return unix.EpollCtl(r.epfd, op, fd, &unix.EpollEvent{Fd: int32(fd), Events: events})
}

func (r *Reactor) armRead(fd int, isNew bool) error {
	op := unix.EPOLL_CTL_MOD
	if isNew {
		op = unix.EPOLL_CTL_ADD
	}
	return r.epollCtl(op, fd, unix.EPOLLIN)
}

func (r *Reactor) armWrite(fd int) error {
	return r.epollCtl(unix.EPOLL_CTL_MOD, fd, unix.EPOLLOUT)
}

func (r *Reactor) disarm(fd int) {
	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Tick runs one pass of the loop: epoll_wait, ascending-FD dispatch, the
// file drain pass, then the timeout sweep. Exported so tests can step the
// reactor deterministically instead of calling Run.
func (r *Reactor) Tick(timeoutMillis int) error {
	events := make([]unix.EpollEvent, 256)
	n, err := unix.EpollWait(r.epfd, events, timeoutMillis)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return ErrCodeBindFailed.Errorf("epoll_wait", err)
	}

	events = events[:n]
	sort.Slice(events, func(i, j int) bool { return events[i].Fd < events[j].Fd })

	for _, ev := range events {
		fd := int(ev.Fd)
		switch {
		case ev.Events&unix.EPOLLOUT != 0:
			r.onWritable(fd)
		case ev.Events&unix.EPOLLIN != 0:
			r.onReadable(fd)
		}
	}

	r.drainFiles()
	r.sweepTimeouts()
	if r.metrics != nil {
		r.metrics.SessionsLive.Set(float64(r.sessions.Len()))
	}
	return nil
}

func (r *Reactor) onReadable(fd int) {
	if l, ok := r.listenerByFD[fd]; ok {
		r.doAccept(l)
		return
	}
	if cs := r.cgiReaderFor(fd); cs != nil {
		r.doCGIRead(fd, cs)
		return
	}
	if cs, ok := r.clients[fd]; ok {
		r.doClientRecv(fd, cs)
	}
}

func (r *Reactor) onWritable(fd int) {
	if cs, ok := r.clients[fd]; ok {
		r.doClientSend(fd, cs)
	}
}

func (r *Reactor) cgiReaderFor(fd int) *clientState {
	clientFD, ok := r.table.OwnerOf(fd)
	if !ok {
		return nil
	}
	cs, ok := r.clients[clientFD]
	if !ok || cs.cgiJob == nil || cs.cgiJob.PipeRead == nil || int(cs.cgiJob.PipeRead.Fd()) != fd {
		return nil
	}
	return cs
}

func (r *Reactor) doAccept(l *listener) {
	fd, _, err := l.accept()
	if err != nil {
		r.log.ErrorCode("accept failed", err, nil)
		return
	}
	if fd < 0 {
		return
	}

	sc := r.firstServerFor(l.hostPort)
	r.table.Add(fd, sc)
	connID := uuid.NewString()
	r.clients[fd] = &clientState{
		parser:      httpmsg.NewParser(r.tree, l.hostPort),
		listenerKey: l.hostPort,
		connID:      connID,
	}
	r.log.Debug("accepted connection", xlog.NewFields().Add("conn_id", connID).Add("listener", l.hostPort))
	_ = r.armRead(fd, true)
	if r.metrics != nil {
		r.metrics.ActiveConnections.Set(float64(r.table.Len()))
	}
}

func (r *Reactor) firstServerFor(hostPort string) *config.ServerConfig {
	servers := r.tree.ServersFor(hostPort)
	if len(servers) == 0 {
		return nil
	}
	return servers[0]
}

func (r *Reactor) doClientRecv(fd int, cs *clientState) {
	buf := make([]byte, recvChunk)
	n, err := unix.Read(fd, buf)
	if n > 0 {
		cs.parser.Feed(buf[:n])
		r.table.Update(fd, conn.BodyRead)
	}
	if n == 0 || (err != nil && err != unix.EAGAIN) {
		r.closeConnection(fd)
		return
	}

	if cs.parser.Req.Phase == httpmsg.ReceiveDone || cs.parser.Req.Phase == httpmsg.ReceiveError {
		r.dispatch(fd, cs)
	}
}

func (r *Reactor) dispatch(fd int, cs *clientState) {
	req := cs.parser.Req
	c := r.table.Get(fd)
	if c != nil {
		c.Request = req
	}

	keepAliveMax := 100
	if req.Server != nil {
		keepAliveMax = req.Server.KeepAliveMax
	}
	remaining := r.table.UpdateRequests(fd, keepAliveMax)

	if r.metrics != nil {
		r.metrics.RequestsTotal.WithLabelValues(req.Method).Inc()
	}

	d := handler.Handle(req, remaining)

	switch {
	case d.Response != nil:
		r.finishWithResponse(fd, cs, d.Response, r.table.Get(fd).RequestsServed)
	case d.OpenFile != nil:
		r.startFileJob(fd, cs, d.OpenFile)
	case d.StartCGI != nil:
		r.startCGIJob(fd, cs, d.StartCGI, req)
	}
}

func (r *Reactor) startFileJob(fd int, cs *clientState, open *handler.FileOpen) {
	var f *os.File
	var err error
	if open.Dir == fileio.Write {
		f, err = os.OpenFile(open.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	} else {
		f, err = os.Open(open.Path)
	}
	if err != nil {
		r.finishWithResponse(fd, cs, handler.ResolveErrorPage(nil, httpmsg.StatusForbidden), 0)
		return
	}

	cs.fileOpen = open
	cs.fileJob = r.fileSched.Register(f, fd, open.Dir, open.WriteData)
	r.table.RegisterFile(int(f.Fd()), fd)
	r.table.UpdateGateway(fd)
}

func (r *Reactor) startCGIJob(fd int, cs *clientState, start *handler.CGIStart, req *httpmsg.Request) {
	if start.Interpreter == "" {
		r.finishWithResponse(fd, cs, handler.ResolveErrorPage(req.Location, httpmsg.StatusInternalServerError), 0)
		return
	}

	cookie, _ := req.Headers.Get("Cookie")
	sessionOK := false
	if key, ok := r.sessions.KeyFromCookieHeader(cookie); ok {
		sessionOK = r.sessions.IsSessionAvailable(key)
	}

	env := cgi.Build(cgi.Env{
		ScriptPath:     start.ScriptPath,
		PathInfo:       start.PathInfo,
		QueryString:    req.RawQuery,
		Method:         req.Method,
		RequestURI:     req.Path,
		ServerName:     serverNameOf(req),
		ServerPort:     portOf(req),
		ContentLength:  int64(len(req.Body)),
		ContentType:    headerOr(req, "Content-Type"),
		Cookie:         cookie,
		SessionPresent: sessionOK,
	}, req.Headers)

	job, err := cgi.StartWriting(start.ScriptPath, start.Interpreter, start.PathInfo, req.Body, env)
	if err != nil {
		r.finishWithResponse(fd, cs, handler.ResolveErrorPage(req.Location, httpmsg.StatusInternalServerError), 0)
		return
	}

	cs.cgiJob = job
	r.fileSched.Register(job.TempFile, fd, fileio.Write, job.Body)
	r.table.RegisterFile(int(job.TempFile.Fd()), fd)
	r.table.UpdateGateway(fd)
	if r.metrics != nil {
		r.metrics.CGIJobsInFlight.Inc()
	}
}

func serverNameOf(req *httpmsg.Request) string {
	if req.Server != nil && len(req.Server.ServerNames) > 0 {
		return req.Server.ServerNames[0]
	}
	return ""
}

func portOf(req *httpmsg.Request) int {
	if req.Server != nil {
		return req.Server.Port
	}
	return 0
}

func headerOr(req *httpmsg.Request, key string) string {
	v, _ := req.Headers.Get(key)
	return v
}

// drainFiles runs one bounded chunk of I/O for every armed file FD, in
// ascending order, reproducing select()'s always-ready semantics for
// regular files (SPEC_FULL §5).
func (r *Reactor) drainFiles() {
	fds := r.fileSched.ArmedFDs()
	sort.Ints(fds)

	for _, fd := range fds {
		clientFD, ok := r.table.OwnerOf(fd)
		if !ok {
			continue
		}
		cs, ok := r.clients[clientFD]
		if !ok {
			continue
		}

		outcome := r.fileSched.Drain(fd)
		switch outcome {
		case fileio.Failed:
			r.fileSched.Unregister(fd)
			r.table.UnregisterFile(fd)
			r.finishWithResponse(clientFD, cs, handler.ResolveErrorPage(nil, httpmsg.StatusInternalServerError), 0)
		case fileio.Finished:
			r.fileSched.Unregister(fd)
			r.table.UnregisterFile(fd)
			r.onFileFinished(clientFD, cs)
		}
	}
}

func (r *Reactor) onFileFinished(clientFD int, cs *clientState) {
	if cs.cgiJob != nil && cs.cgiJob.Phase == cgi.Writing {
		pipeRead, err := cs.cgiJob.Spawn()
		if err != nil {
			r.finishWithResponse(clientFD, cs, handler.ResolveErrorPage(nil, httpmsg.StatusInternalServerError), 0)
			return
		}
		r.table.RegisterFile(int(pipeRead.Fd()), clientFD)
		_ = r.armRead(int(pipeRead.Fd()), true)
		return
	}

	if cs.fileJob != nil {
		job := cs.fileJob
		open := cs.fileOpen
		cs.fileJob, cs.fileOpen = nil, nil

		resp := open.OnSuccess
		if open.Dir == fileio.Read {
			resp.Body = job.ReadBuf
		}
		job.File.Close()
		r.finishWithResponse(clientFD, cs, resp, r.table.Get(clientFD).RequestsServed)
	}
}

func (r *Reactor) doCGIRead(fd int, cs *clientState) {
	buf := make([]byte, fileio.ChunkSize)
	n, err := unix.Read(fd, buf)
	if n > 0 {
		cs.cgiJob.Output = append(cs.cgiJob.Output, buf[:n]...)
	}
	if n == 0 || (err != nil && err != unix.EAGAIN) {
		r.disarm(fd)
		r.table.UnregisterFile(fd)
		r.onCGIFinished(cs)
	}
}

func (r *Reactor) onCGIFinished(cs *clientState) {
	job := cs.cgiJob
	job.Finish()

	clientFD := 0
	for fd, c := range r.clients {
		if c == cs {
			clientFD = fd
			break
		}
	}

	status, headers, body, setCookie, err := cgi.ParseOutput(job.Output)
	var resp *httpmsg.Response
	if err != nil {
		resp = handler.ResolveErrorPage(nil, httpmsg.StatusBadGateway)
	} else {
		resp = httpmsg.NewResponse(status)
		resp.CGI = httpmsg.IsCGI
		resp.Body = body
		headers.Walk(func(k, v string) { resp.Headers.Add(k, v) })
		if setCookie != "" {
			r.sessions.AddSession(setCookie, sessionTimeoutFor(cs.parser.Req))
		}
	}

	cs.cgiJob = nil
	if r.metrics != nil {
		r.metrics.CGIJobsInFlight.Dec()
	}
	r.finishWithResponse(clientFD, cs, resp, r.table.Get(clientFD).RequestsServed)
}

func (r *Reactor) finishWithResponse(fd int, cs *clientState, resp *httpmsg.Response, requestsServed int) {
	if r.metrics != nil {
		r.metrics.ObserveStatus(resp.Status)
	}
	req := cs.parser.Req
	keepAliveTimeout := r.keepAliveTimeoutFor(req)
	keepAliveMax := 100
	if req.Server != nil {
		keepAliveMax = req.Server.KeepAliveMax
	}
	remaining := keepAliveMax - requestsServed

	response.ApplyExtraHeaders(resp, req.KeepAlive(), remaining, keepAliveTimeout, keepAliveMax, limitExceptOf(req))

	if req.Method == "HEAD" {
		// Content-Length must reflect the body GET would have sent, so it
		// is fixed before the body itself is cleared.
		if _, hasCL := resp.Headers.Get("Content-Length"); !hasCL && resp.Status != httpmsg.StatusNoContent {
			resp.Headers.Set("Content-Length", strconv.Itoa(len(resp.Body)))
		}
		resp.Body = nil
		resp.Headers.Del("Content-Type")
	}

	cs.writer = response.New(resp)
	_ = r.armWrite(fd)
	r.table.Update(fd, conn.Sending)
}

func limitExceptOf(req *httpmsg.Request) []string {
	if req.Location != nil {
		return req.Location.LimitExcept
	}
	return nil
}

func (r *Reactor) keepAliveTimeoutFor(req *httpmsg.Request) time.Duration {
	if req.Server != nil {
		return req.Server.KeepAliveTimeout
	}
	return 0
}

// sessionTimeoutFor answers the original engine's getSessionTimeout(), which
// reused the server's general "timeout" directive rather than a dedicated
// one; HeaderTimeout carries that value here (the parser sets Header/Body/
// KeepAlive timeouts together from the same directive).
func sessionTimeoutFor(req *httpmsg.Request) time.Duration {
	if req.Server != nil {
		return req.Server.HeaderTimeout
	}
	return 0
}

func (r *Reactor) doClientSend(fd int, cs *clientState) {
	if cs.writer == nil {
		return
	}
	chunk := cs.writer.Next()
	if len(chunk) == 0 {
		r.onSendDone(fd, cs)
		return
	}
	n, err := unix.Write(fd, chunk)
	if err != nil && err != unix.EAGAIN {
		r.closeConnection(fd)
		return
	}
	if n > 0 {
		cs.writer.Advance(n)
	}
	if cs.writer.Done() {
		r.onSendDone(fd, cs)
	}
}

func (r *Reactor) onSendDone(fd int, cs *clientState) {
	if cs.parser.Req.KeepAlive() && r.table.Get(fd) != nil {
		cs.parser.Reset()
		cs.writer = nil
		_ = r.armRead(fd, false)
		r.table.Update(fd, conn.KeepAlive)
	} else {
		r.closeConnection(fd)
	}
}

// closeConnection erases every reverse-map entry and owned FD tied to fd,
// per spec §3's "never outlive the owning connection" invariant.
func (r *Reactor) closeConnection(fd int) {
	if cs, ok := r.clients[fd]; ok {
		if cs.fileJob != nil {
			fileFD := int(cs.fileJob.File.Fd())
			r.table.UnregisterFile(fileFD)
			r.fileSched.Unregister(fileFD)
			_ = cs.fileJob.File.Close()
		}
		if cs.cgiJob != nil {
			if cs.cgiJob.TempFile != nil {
				r.fileSched.Unregister(int(cs.cgiJob.TempFile.Fd()))
			}
			cs.cgiJob.Abort()
			if r.metrics != nil {
				r.metrics.CGIJobsInFlight.Dec()
			}
		}
		delete(r.clients, fd)
	}
	r.disarm(fd)
	_ = unix.Close(fd)
	r.table.Remove(fd)
	if r.metrics != nil {
		r.metrics.ActiveConnections.Set(float64(r.table.Len()))
	}
}

// budgetFor returns the timeout budget for c's current phase, reading the
// three-way (header/body/keep-alive) plus gateway budget from c.Server,
// per spec §5 ("Each connection has three timeout budgets... CGI
// additionally has a gateway timeout").
func budgetFor(c *conn.Connection) time.Duration {
	if c.Server == nil {
		return 0
	}
	switch c.Phase {
	case conn.HeaderRead:
		return c.Server.HeaderTimeout
	case conn.BodyRead:
		return c.Server.BodyTimeout
	case conn.Gateway:
		return c.Server.GatewayTimeout
	case conn.KeepAlive:
		return c.Server.KeepAliveTimeout
	default:
		return 0
	}
}

// sweepTimeouts runs once per tick, per spec §5's "sweep runs once per
// tick": header/body receive timeouts become 408 with forced close; CGI
// gateway timeouts withdraw the job and become 504; everything else
// (an idle keep-alive connection) is closed outright.
func (r *Reactor) sweepTimeouts() {
	overdue := r.table.GetTimeoutList(budgetFor)

	for _, tb := range overdue {
		cs, ok := r.clients[tb.FD]
		if !ok {
			continue
		}
		switch tb.Phase {
		case conn.HeaderRead, conn.BodyRead:
			resp := handler.ResolveErrorPage(nil, httpmsg.StatusRequestTimeout)
			resp.Headers.Set("Connection", "close")
			r.forceClose(tb.FD, cs, resp)
		case conn.Gateway:
			if cs.cgiJob != nil {
				cs.cgiJob.Abort()
				cs.cgiJob = nil
				if r.metrics != nil {
					r.metrics.CGIJobsInFlight.Dec()
				}
			}
			resp := handler.ResolveErrorPage(nil, httpmsg.StatusGatewayTimeout)
			resp.Headers.Set("Connection", "close")
			r.forceClose(tb.FD, cs, resp)
		default:
			r.closeConnection(tb.FD)
		}
	}
}

// forceClose arms resp for send and guarantees the connection closes once
// it's fully sent, bypassing the normal keep-alive decision.
func (r *Reactor) forceClose(fd int, cs *clientState, resp *httpmsg.Response) {
	cs.parser.Req.Connection = "close"
	cs.writer = response.New(resp)
	_ = r.armWrite(fd)
	r.table.Update(fd, conn.Sending)
}

// Run drives the reactor until ctx is cancelled, per SPEC_FULL §4.L: the
// bootstrap cancels ctx on SIGINT/SIGTERM so Close() runs afterward,
// closing every listener (spec §7 tier 3).
func (r *Reactor) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := r.Tick(1000); err != nil {
			return err
		}
	}
}
