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

package reactor

import (
	"net"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"github/sabouaram/webserv/internal/xerrors"
)

const (
	ErrCodeBindFailed = xerrors.MinPkgReactor + 1
	ErrCodeAcceptFail = xerrors.MinPkgReactor + 2
)

func init() {
	xerrors.RegisterIdFctMessage(xerrors.MinPkgReactor, func(c xerrors.CodeError) string {
		switch c {
		case ErrCodeBindFailed:
			return "bind/listen failed"
		case ErrCodeAcceptFail:
			return "accept failed"
		default:
			return "reactor error"
		}
	})
}

const (
	bindRetries    = 10
	bindRetryDelay = 5 * time.Second
)

// listener is one bound, listening, non-blocking socket.
type listener struct {
	fd       int
	hostPort string
}

// bindListener binds and listens on hostPort, retrying transient failures
// up to bindRetries times with bindRetryDelay between attempts, per
// spec §4.B.
func bindListener(hostPort string) (*listener, error) {
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return nil, ErrCodeBindFailed.Errorf("invalid host:port '"+hostPort+"'", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, ErrCodeBindFailed.Errorf("invalid port in '"+hostPort+"'", err)
	}

	var addr [4]byte
	if host == "" || host == "0.0.0.0" {
		addr = [4]byte{0, 0, 0, 0}
	} else {
		ip := net.ParseIP(host).To4()
		if ip == nil {
			return nil, ErrCodeBindFailed.Errorf("host '" + host + "' is not an IPv4 address")
		}
		copy(addr[:], ip)
	}

	var lastErr error
	for attempt := 0; attempt < bindRetries; attempt++ {
		fd, err := tryBind(addr, port)
		if err == nil {
			return &listener{fd: fd, hostPort: hostPort}, nil
		}
		lastErr = err
		if attempt < bindRetries-1 {
			time.Sleep(bindRetryDelay)
		}
	}
	return nil, ErrCodeBindFailed.Errorf("bind/listen '"+hostPort+"' after "+strconv.Itoa(bindRetries)+" attempts", lastErr)
}

func tryBind(addr [4]byte, port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: addr}); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return -1, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// accept accepts one pending connection, setting it non-blocking, per
// spec §4.B. Returns (-1, "", nil) when no connection is pending and
// (-1, "", err) on a genuine failure; callers should log and continue
// rather than treat this as fatal.
func (l *listener) accept() (int, string, error) {
	fd, sa, err := unix.Accept(l.fd)
	if err != nil {
		if err == unix.EAGAIN {
			return -1, "", nil
		}
		return -1, "", ErrCodeAcceptFail.Errorf("accept on '"+l.hostPort+"'", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, "", ErrCodeAcceptFail.Errorf("set accepted socket non-blocking", err)
	}
	return fd, peerAddr(sa), nil
}

func peerAddr(sa unix.Sockaddr) string {
	if a, ok := sa.(*unix.SockaddrInet4); ok {
		ip := net.IP(a.Addr[:])
		return ip.String() + ":" + strconv.Itoa(a.Port)
	}
	return ""
}

func (l *listener) close() { unix.Close(l.fd) }
