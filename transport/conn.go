// Transport-neutral connection handling: reads "/cmd {json}" lines
// from a Source (TCP or WebSocket), translates each into a supervisor
// command, and exposes a session.Endpoint the Supervisor can send
// frames back through. Grounded on the teacher's client.go Client
// type, generalized from its "id[@ref] cmd arg..." framing to
// spec §6's "/cmd {json}" framing.
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

// Package transport owns the two external connection kinds this
// server accepts (raw TCP and WebSocket) and reduces both to the same
// line-oriented Source, so the command dispatch in this package never
// has to know which one it is talking to.
package transport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-gw/gw"
	"go-gw/internal/glog"
	"go-gw/proto"
	"go-gw/supervisor"
)

// Source abstracts one physical connection down to line-oriented
// send/receive, so Conn's dispatch logic is identical for TCP and
// WebSocket. ReadLine blocks until a full frame is available, or
// returns an error once the connection is gone.
type Source interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	RemoteAddr() string
	Close() error
}

// Conn wraps a Source into the session.Endpoint the Supervisor speaks
// to, and runs the read loop that feeds it commands.
type Conn struct {
	src  Source
	sup  *supervisor.Supervisor
	key  string
	addr string

	mu     sync.Mutex
	userID string // set once a /login or /verify names this connection

	lastRX time.Time
}

// NewConn wraps src and begins serving it on this goroutine; Serve
// blocks until the connection closes. Each connection gets a fresh
// UUID as its Session Registry key, so a reconnecting client is never
// mistaken for its own previous connection.
func NewConn(src Source, sup *supervisor.Supervisor) *Conn {
	return &Conn{
		src:    src,
		sup:    sup,
		key:    uuid.NewString(),
		addr:   src.RemoteAddr(),
		lastRX: time.Now(),
	}
}

// Key identifies this physical connection to the Session Registry.
func (c *Conn) Key() string { return c.key }

// Send delivers an outbound frame, swallowing write errors the same
// way the teacher's Client.Respond does: a dead connection is
// discovered by its read loop exiting, not by a failed write.
func (c *Conn) Send(frame string) {
	if err := c.src.WriteLine(frame); err != nil {
		glog.Debug.Printf("%s: write failed: %v", c.addr, err)
	}
}

func (c *Conn) boundUser() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

func (c *Conn) bindUser(user string) {
	c.mu.Lock()
	c.userID = user
	c.mu.Unlock()
}

// Serve runs the read loop until the connection errors out or closes.
// It never returns before the connection is done, so callers should
// invoke it from its own goroutine.
func (c *Conn) Serve() {
	defer c.src.Close()
	defer func() {
		if user := c.boundUser(); user != "" {
			c.sup.Submit(supervisor.DisconnectCmd{UserID: user})
		}
	}()

	glog.Log.Printf("new connection from %s", c.addr)
	for {
		line, err := c.src.ReadLine()
		if err != nil {
			glog.Debug.Printf("%s: %v", c.addr, err)
			return
		}
		c.lastRX = time.Now()

		f, err := proto.Parse(line)
		if err != nil {
			c.Send(proto.EncodeError("frame", err.Error()))
			continue
		}
		c.dispatch(f)
	}
}

func (c *Conn) dispatch(f proto.Frame) {
	switch f.Cmd {
	case "login":
		var p loginPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			c.Send(proto.EncodeError("login", "malformed payload"))
			return
		}
		c.bindUser(p.UserID)
		c.sup.Submit(supervisor.ConnectCmd{UserID: p.UserID, Password: p.Password, Endpoint: c})

	case "verify":
		var p verifyPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			c.Send(proto.EncodeError("verify", "malformed payload"))
			return
		}
		c.bindUser(p.UserID)
		c.sup.Submit(supervisor.VerifySessionCmd{UserID: p.UserID, Endpoint: c, Token: p.Token})

	case "host_game":
		gameID, err := bareGameID(f.Payload)
		if err != nil {
			c.Send(proto.EncodeError("host_game", err.Error()))
			return
		}
		c.requireUser("host_game", func(user string) {
			c.sup.Submit(supervisor.HostGameCmd{HostUserID: user, GameID: gameID})
		})

	case "join_game":
		gameID, err := bareGameID(f.Payload)
		if err != nil {
			c.Send(proto.EncodeError("join_game", err.Error()))
			return
		}
		c.requireUser("join_game", func(user string) {
			c.sup.Submit(supervisor.JoinGameCmd{UserID: user, GameID: gameID})
		})

	case "conf_game":
		var p confGamePayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			c.Send(proto.EncodeError("conf_game", "malformed payload"))
			return
		}
		op, err := decodeConfigOp(p.Op)
		if err != nil {
			c.Send(proto.EncodeError("conf_game", err.Error()))
			return
		}
		c.requireUser("conf_game", func(user string) {
			c.sup.Submit(supervisor.ConfigGameCmd{HostUserID: user, GameID: p.GameID, Op: op})
		})

	case "start_game":
		gameID, err := bareGameID(f.Payload)
		if err != nil {
			c.Send(proto.EncodeError("start_game", err.Error()))
			return
		}
		c.requireUser("start_game", func(user string) {
			c.sup.Submit(supervisor.StartGameCmd{HostUserID: user, GameID: gameID})
		})

	case "user_status":
		c.requireUser("user_status", func(user string) {
			c.sup.Submit(supervisor.UserStatusCmd{UserID: user})
		})

	case "player_action":
		var p playerActionPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			c.Send(proto.EncodeError("player_action", "malformed payload"))
			return
		}
		a, err := decodeAction(p.Action)
		if err != nil {
			c.Send(proto.EncodeError("player_action", err.Error()))
			return
		}
		c.requireUser("player_action", func(user string) {
			c.sup.Submit(supervisor.PlayerActionCmd{UserID: user, GameID: p.GameID, Action: a})
		})

	default:
		c.Send(proto.EncodeError("frame", "unknown command"))
	}
}

// requireUser rejects commands from a connection that has not sent a
// login or verify frame naming a user yet; every command but those
// two implicitly trusts the identity the connection already claimed,
// exactly as relay_server.rs's handlers assume a prior Connect.
func (c *Conn) requireUser(ctx string, fn func(user string)) {
	user := c.boundUser()
	if user == "" {
		c.Send(proto.EncodeError(ctx, gw.NewError(gw.NotAuthenticated, ctx, "login first").Error()))
		return
	}
	fn(user)
}
