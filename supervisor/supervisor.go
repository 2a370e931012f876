// The single-writer entry point: receives every command, dispatches
// to Game/Election/Scheduler, and fans out responses via the Session
// Registry, per spec §4.5 and §5.
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

// Package supervisor is the core of this repository: a strictly
// single-threaded actor, modeled on the teacher's queueManager
// (queue.go) and on relay_server.rs's RelayServer, that owns every
// user, session, game and user->game binding. Nothing outside this
// package's run loop ever mutates that state.
package supervisor

import (
	"sort"
	"sync/atomic"
	"time"

	"go-gw/game"
	"go-gw/gw"
	"go-gw/internal/glog"
	"go-gw/proto"
	"go-gw/sched"
	"go-gw/session"
)

type Supervisor struct {
	reg       *session.Registry
	sched     *sched.Scheduler
	games     map[string]*game.Game
	userGames map[string]string

	inbox chan any
	seed  int64

	// spawnHearts, when true, makes StartGame/Replenish also schedule
	// SpawnHeart events. Off by default in tests that don't want the
	// nondeterminism; on by default in production (see conf).
	spawnHearts bool
}

func New(reg *session.Registry, sc *sched.Scheduler) *Supervisor {
	return &Supervisor{
		reg:         reg,
		sched:       sc,
		games:       make(map[string]*game.Game),
		userGames:   make(map[string]string),
		inbox:       make(chan any, 256),
		seed:        time.Now().UnixNano(),
		spawnHearts: true,
	}
}

func (s *Supervisor) String() string { return "Supervisor" }

// SetSpawnHearts toggles whether StartGame/Replenish schedule
// stochastic heart spawns; exposed for deterministic tests.
func (s *Supervisor) SetSpawnHearts(on bool) { s.spawnHearts = on }

func (s *Supervisor) nextSeed() int64 { return atomic.AddInt64(&s.seed, 1) }

// Submit enqueues cmd for processing by the single run loop. Safe to
// call from any goroutine; this is the only way anything outside this
// package touches supervisor state.
func (s *Supervisor) Submit(cmd any) {
	s.inbox <- cmd
}

// Start runs the dispatch loop in its own goroutine until Shutdown
// closes the inbox, exactly as the teacher's queueManager runs
// for{select{...}} in its own goroutine for the lifetime of the
// process.
func (s *Supervisor) Start() {
	go s.run()
}

func (s *Supervisor) Shutdown() {
	close(s.inbox)
}

func (s *Supervisor) run() {
	for cmd := range s.inbox {
		s.dispatch(cmd)
	}
}

func (s *Supervisor) dispatch(cmd any) {
	switch c := cmd.(type) {
	case ConnectCmd:
		s.handleConnect(c)
	case VerifySessionCmd:
		s.handleVerifySession(c)
	case DisconnectCmd:
		s.handleDisconnect(c)
	case HostGameCmd:
		s.handleHostGame(c)
	case JoinGameCmd:
		s.handleJoinGame(c)
	case ConfigGameCmd:
		s.handleConfigGame(c)
	case StartGameCmd:
		s.handleStartGame(c)
	case UserStatusCmd:
		s.handleUserStatus(c)
	case PlayerActionCmd:
		s.handlePlayerAction(c)
	case replenishCmd:
		s.handleReplenish(c)
	case spawnHeartCmd:
		s.handleSpawnHeart(c)
	default:
		glog.Debug.Printf("supervisor: unknown command %T", cmd)
	}
}

func allPlayers(g *game.Game) []string {
	out := make([]string, 0, len(g.Players))
	for u := range g.Players {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func otherPlayers(g *game.Game, exclude string) []string {
	out := make([]string, 0, len(g.Players))
	for u := range g.Players {
		if u != exclude {
			out = append(out, u)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Supervisor) sendAPUpdate(g *game.Game, user string) {
	p := g.Players[user]
	s.reg.SendUser(user, proto.MustEncode("action_point_update", game.APUpdate{
		UserID: user, GameID: g.ID, ActionPoints: p.ActionPoints,
	}))
}

type userStatusPayload struct {
	GameID *string `json:"game_id,omitempty"`
}

func (s *Supervisor) clearUserGames(g *game.Game) {
	for user := range g.Players {
		if s.userGames[user] == g.ID {
			delete(s.userGames, user)
		}
		s.reg.SendUser(user, proto.MustEncode("user_status", userStatusPayload{}))
	}
}

func (s *Supervisor) scheduleReplenish(g *game.Game) {
	turnTime := time.Duration(g.Config.TurnTimeSecs) * time.Second
	id := g.ID
	s.sched.ScheduleReplenish(turnTime, func() {
		s.Submit(replenishCmd{GameID: id})
	})
	if s.spawnHearts {
		delay := g.NewItemSpawnDelayMs()
		s.sched.ScheduleSpawnHeart(delay, func() {
			s.Submit(spawnHeartCmd{GameID: id})
		})
	}
}

type configGameResult struct {
	Game     GameSnapshot      `json:"game"`
	Reseated map[string]gw.Pos `json:"reseated,omitempty"`
}
