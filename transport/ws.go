// The WebSocket transport: a line-oriented Source over
// gorilla/websocket, one text message per frame, with the
// ping/timeout heartbeat grounded on ws_session.rs's
// HEARTBEAT_INTERVAL/CLIENT_TIMEOUT constants.
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
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-gw/internal/glog"
	"go-gw/supervisor"
)

// HeartbeatInterval and ClientTimeout mirror ws_session.rs: a ping is
// sent on every interval tick, and the connection is dropped if no
// pong (or any other traffic) arrives within the timeout.
const (
	HeartbeatInterval = 30 * time.Second
	ClientTimeout     = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	// Origin checking is intentionally permissive: this server sits
	// behind the same CORS-permissive boundary as the HTTP login
	// endpoint (see web package), so there is nothing extra to
	// enforce here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsSource struct {
	conn *websocket.Conn

	mu       sync.Mutex
	lastSeen time.Time
}

func newWSSource(conn *websocket.Conn) *wsSource {
	s := &wsSource{conn: conn, lastSeen: time.Now()}
	conn.SetPongHandler(func(string) error {
		s.touch()
		return nil
	})
	return s
}

func (s *wsSource) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *wsSource) ReadLine() (string, error) {
	_, msg, err := s.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	s.touch()
	return string(msg), nil
}

func (s *wsSource) WriteLine(line string) error {
	return s.conn.WriteMessage(websocket.TextMessage, []byte(line))
}

func (s *wsSource) RemoteAddr() string { return s.conn.RemoteAddr().String() }
func (s *wsSource) Close() error       { return s.conn.Close() }

func (s *wsSource) heartbeat(stop <-chan struct{}) {
	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			idle := time.Since(s.lastSeen)
			s.mu.Unlock()
			if idle > ClientTimeout {
				glog.Debug.Printf("%s: heartbeat timeout, closing", s.RemoteAddr())
				s.conn.Close()
				return
			}
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// UpgradeHandler returns an http.HandlerFunc that upgrades a request
// to WebSocket and serves it as a Conn, for mounting under the web
// package's router (e.g. GET /ws/).
func UpgradeHandler(sup *supervisor.Supervisor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			glog.Debug.Printf("ws upgrade: %v", err)
			return
		}

		src := newWSSource(wsConn)
		stop := make(chan struct{})
		go src.heartbeat(stop)

		c := NewConn(src, sup)
		c.Serve()
		close(stop)
	}
}
