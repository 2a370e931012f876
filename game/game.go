// The per-game state machine: board, players, phase, action-point
// economy and a contained Election for cursing.
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

// Package game implements one game's authoritative state machine, as
// spec.md §4.2 describes it. A Game never talks to the network or to
// other games; the supervisor package drives it and fans out the
// events and updates it returns.
package game

import (
	"math/rand"
	"time"

	"go-gw/election"
	"go-gw/gw"
)

type Phase int

const (
	Init Phase = iota
	InProg
	End
)

func (p Phase) String() string {
	switch p {
	case Init:
		return "init"
	case InProg:
		return "in_progress"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

type JoinResult int

const (
	Joined JoinResult = iota
	Rejoined
)

// Game owns one game's players, board and cursing election. All
// mutation flows through its exported methods; every method stages
// its work on clones of the affected players and commits only once
// every check has passed, per spec §4.2 / §5.
type Game struct {
	ID         string
	HostUserID string
	Phase      Phase
	Config     gw.GameConfig

	Players map[string]gw.Player
	Alive   map[string]struct{}
	Dead    map[string]struct{}

	Board  *gw.Board
	Hearts *gw.Board // reuses Board's heart map; same instance as Board

	TurnEndUnix int64

	Cursings *election.Election

	rng *rand.Rand
}

// New creates a game in phase Init, owned by hostUser, with the given
// configuration. The election starts with no candidates or voters;
// they are populated as players die and are revived.
func New(id, hostUser string, cfg gw.GameConfig, seed int64) *Game {
	b := gw.MakeBoard(cfg.BoardSize)
	return &Game{
		ID:         id,
		HostUserID: hostUser,
		Phase:      Init,
		Config:     cfg,
		Players:    make(map[string]gw.Player),
		Alive:      make(map[string]struct{}),
		Dead:       make(map[string]struct{}),
		Board:      b,
		Hearts:     b,
		Cursings:   election.New("cursings"),
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// InsertPlayer adds user to the game, or reports that they are
// already present. It never mutates state on the Rejoined path.
func (g *Game) InsertPlayer(user string) (JoinResult, error) {
	if _, ok := g.Players[user]; ok {
		return Rejoined, nil
	}
	if g.Phase != Init {
		return 0, gw.NewError(gw.IllegalState, "join_game", "game already started")
	}
	if uint(len(g.Players)) >= g.Config.MaxPlayers {
		return 0, gw.NewError(gw.RuleViolation, "join_game", "game is at max capacity")
	}

	p := gw.Player{
		UserID:       user,
		GameID:       g.ID,
		Lives:        g.Config.InitLives,
		ActionPoints: g.Config.InitActionPoints,
		Range:        g.Config.InitRange,
		Pos:          gw.Unplaced,
	}
	if g.Config.InitPos == gw.Random {
		p.Pos = g.Board.RandomVacantCell(g.rng)
		g.Board.PlacePlayer(p.Pos, user)
	}
	g.Players[user] = p
	g.Alive[user] = struct{}{}
	g.Cursings.AddCandidate(user)
	return Joined, nil
}

// Configure applies op to the game's configuration. Only legal in
// Init and only by the host; enforced by the caller (the supervisor
// knows who the host is), this method only enforces the phase.
func (g *Game) placeRandomly(user string) {
	p := g.Players[user]
	if p.Pos.IsPlaced() {
		g.Board.RemovePlayer(p.Pos)
	}
	p.Pos = g.Board.RandomVacantCell(g.rng)
	g.Board.PlacePlayer(p.Pos, user)
	g.Players[user] = p
}

// StartGame transitions Init -> InProg. Requires at least two
// players; any player without a valid position is placed randomly
// first.
func (g *Game) StartGame() error {
	if g.Phase != Init {
		return gw.NewError(gw.IllegalState, "start_game", "game already started")
	}
	if len(g.Players) < 2 {
		return gw.NewError(gw.RuleViolation, "start_game", "need at least two players")
	}
	for user, p := range g.Players {
		if !p.Pos.IsPlaced() {
			g.placeRandomly(user)
		}
	}
	g.Phase = InProg
	g.TurnEndUnix = time.Now().Unix() + int64(g.Config.TurnTimeSecs)
	return nil
}

// APUpdate is emitted for every player whose action-point count was
// reconsidered, even when it did not change, so clients can observe
// absence of gain (spec §4.2, "replenish").
type APUpdate struct {
	UserID       string `json:"user_id"`
	GameID       string `json:"game_id"`
	ActionPoints uint   `json:"action_points"`
}

// Replenish grants one action point to every alive player not in
// cursed, and reschedules the turn timer. Requires InProg.
func (g *Game) Replenish(cursed map[string]struct{}) ([]APUpdate, error) {
	if g.Phase != InProg {
		return nil, gw.NewError(gw.IllegalState, "replenish", "game not in progress")
	}
	updates := make([]APUpdate, 0, len(g.Alive))
	for user := range g.Alive {
		p := g.Players[user]
		if _, isCursed := cursed[user]; !isCursed {
			p.ActionPoints++
			g.Players[user] = p
		}
		updates = append(updates, APUpdate{UserID: user, GameID: g.ID, ActionPoints: g.Players[user].ActionPoints})
	}
	g.TurnEndUnix = time.Now().Unix() + int64(g.Config.TurnTimeSecs)
	return updates, nil
}

// NewItemSpawnDelayMs samples a uniform sub-turn delay for the next
// heart spawn.
func (g *Game) NewItemSpawnDelayMs() time.Duration {
	n := g.Config.TurnTimeSecs * 1000
	if n == 0 {
		return 0
	}
	return time.Duration(g.rng.Int63n(int64(n))) * time.Millisecond
}

// HeartSpawnEvent describes the effect of a single stochastic heart
// spawn: either it landed on an empty cell (HeartsDelta) or on an
// occupied one (Heal/Revive of the occupant).
type HeartSpawnEvent struct {
	Pos         gw.Pos
	HeartsDelta uint // new count at Pos; 0 if it landed on a player
	Occupant    string
	Revived     bool
}

// SpawnTileHeart picks a uniformly random cell and applies a heart to
// it: incrementing the hearts board if vacant, or healing/reviving
// the occupant directly if occupied (spec §4.2.2).
func (g *Game) SpawnTileHeart() HeartSpawnEvent {
	pos := g.Board.RandomCell(g.rng)
	if user, occupied := g.Board.Occupant(pos); occupied {
		p := g.Players[user]
		wasDead := p.IsDead()
		p.Lives++
		g.Players[user] = p
		if wasDead {
			g.reviveBookkeeping(user)
		}
		return HeartSpawnEvent{Pos: pos, Occupant: user, Revived: wasDead}
	}
	count := g.Board.AddHeart(pos)
	return HeartSpawnEvent{Pos: pos, HeartsDelta: count}
}

// reviveBookkeeping moves user from dead to alive and from a cursing
// voter back to a candidate, per spec §4.2 ("target becomes an
// Election candidate again").
func (g *Game) reviveBookkeeping(user string) {
	delete(g.Dead, user)
	g.Alive[user] = struct{}{}
	g.Cursings.MoveVoterToCandidate(user)
}

// killBookkeeping moves user from alive to dead and from a cursing
// candidate to a voter, per spec §4.2 ("actor becomes dead and moves
// to voters").
func (g *Game) killBookkeeping(user string) {
	delete(g.Alive, user)
	g.Dead[user] = struct{}{}
	g.Cursings.MoveCandidateToVoter(user)
	if len(g.Alive) == 1 {
		g.Phase = End
	}
}
