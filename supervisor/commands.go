// The supervisor's command surface, spec §4.5. Every field a handler
// needs is carried explicitly on the command; nothing is looked up
// from ambient state before the single-writer loop processes it.
//
// Copyright (c) 2023  Philip Kaludercic
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

package supervisor

import (
	"go-gw/game"
	"go-gw/session"
)

// ConnectCmd logs a user in (creating them on first login). Endpoint
// is nil for the HTTP credential-check boundary (spec §6); in that
// case Reply must be set, since there is no bound endpoint the
// Supervisor could otherwise answer through.
type ConnectCmd struct {
	UserID   string
	Password string
	Endpoint session.Endpoint
	Reply    chan ConnectReply
}

type ConnectReply struct {
	Result session.ConnectResult
	Err    error
}

type VerifySessionCmd struct {
	UserID   string
	Endpoint session.Endpoint
	Token    string
}

type DisconnectCmd struct {
	UserID string
}

type HostGameCmd struct {
	HostUserID string
	GameID     string
}

type JoinGameCmd struct {
	UserID string
	GameID string
}

type ConfigGameCmd struct {
	HostUserID string
	GameID     string
	Op         game.ConfigOp
}

type StartGameCmd struct {
	HostUserID string
	GameID     string
}

type UserStatusCmd struct {
	UserID string
}

type PlayerActionCmd struct {
	UserID string
	GameID string
	Action game.Action
}

// replenishCmd and spawnHeartCmd are posted by the Turn Scheduler,
// never by a transport layer; they carry nothing but the game id,
// exactly like relay_server.rs's Replenish message.
type replenishCmd struct {
	GameID string
}

type spawnHeartCmd struct {
	GameID string
}
