// The raw-TCP transport: a line-oriented Source over net.Conn,
// grounded on the teacher's main.go listen() and client.go's
// bufio.Scanner read loop.
//
// Copyright (c) 2021, 2023  Philip Kaludercic
//
// This file is part of go-kgp.
//
// go-kgp is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-kgp is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-kgp . If not, see
// <http://www.gnu.org/licenses/>

package transport

import (
	"bufio"
	"fmt"
	"net"

	"go-gw/internal/glog"
	"go-gw/supervisor"
)

type tcpSource struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

func newTCPSource(conn net.Conn) *tcpSource {
	return &tcpSource{conn: conn, scanner: bufio.NewScanner(conn)}
}

func (s *tcpSource) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("connection closed")
}

func (s *tcpSource) WriteLine(line string) error {
	_, err := fmt.Fprint(s.conn, line, "\r\n")
	return err
}

func (s *tcpSource) RemoteAddr() string { return s.conn.RemoteAddr().String() }
func (s *tcpSource) Close() error       { return s.conn.Close() }

// TCPListener accepts plain-text connections on addr until Shutdown
// closes the listener, same lifecycle as the teacher's TCPConf
// init/deinit pair.
type TCPListener struct {
	ln  net.Listener
	sup *supervisor.Supervisor
}

func ListenTCP(addr string, sup *supervisor.Supervisor) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	t := &TCPListener{ln: ln, sup: sup}
	go t.acceptLoop()
	return t, nil
}

func (t *TCPListener) acceptLoop() {
	for {
		conn, err := t.ln.Accept()
		if err != nil {
			glog.Debug.Printf("tcp accept: %v", err)
			return
		}
		c := NewConn(newTCPSource(conn), t.sup)
		go c.Serve()
	}
}

func (t *TCPListener) String() string { return "TCPListener(" + t.ln.Addr().String() + ")" }

func (t *TCPListener) Start() {}

func (t *TCPListener) Shutdown() {
	if err := t.ln.Close(); err != nil {
		glog.Debug.Printf("tcp shutdown: %v", err)
	}
}
