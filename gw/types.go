// Shared domain types for the grid game core.
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

package gw

import (
	"fmt"
	"math"
)

// Pos is a board coordinate. The sentinel value Unplaced (MAX,MAX)
// means "not placed on the board", per spec. Both fields use the same
// unsigned type so the sentinel is representable without a separate
// tagged union, while keeping the wire encoding {"x":...,"y":...}
// identical for placed and unplaced positions.
type Pos struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

// Unplaced is the sentinel position meaning "not on the board".
var Unplaced = Pos{X: math.MaxUint32, Y: math.MaxUint32}

func (p Pos) IsPlaced() bool { return p != Unplaced }

// Key renders the position the way board maps key their cells on the
// wire: "x,y", distinct from the {x,y} JSON object form used for
// Pos values that appear as ordinary struct fields.
func (p Pos) Key() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Chebyshev returns the Chebyshev distance between p and q: the
// larger of the two axis deltas. The glossary's "Manhattan distance"
// label is a misnomer carried over from the original source; the
// actual check compares each axis independently to a range, which is
// the Chebyshev metric.
func (p Pos) Chebyshev(q Pos) uint32 {
	dx := absDelta(p.X, q.X)
	dy := absDelta(p.Y, q.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func absDelta(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// InitPos selects how newly-joined and re-randomized players are
// placed on the board.
type InitPos int

const (
	Random InitPos = iota
	Manual
)

func (p InitPos) String() string {
	if p == Manual {
		return "manual"
	}
	return "random"
}

// Player is one participant's per-game record.
type Player struct {
	UserID       string `json:"user_id"`
	GameID       string `json:"game_id"`
	Lives        uint   `json:"lives"`
	ActionPoints uint   `json:"action_points"`
	Pos          Pos    `json:"pos"`
	Range        uint   `json:"range"`
}

func (p Player) IsAlive() bool { return p.Lives > 0 }
func (p Player) IsDead() bool  { return p.Lives == 0 }

// Clone returns a value copy, used by every action handler to stage
// mutations before committing them back into the game.
func (p Player) Clone() Player { return p }

func (p Player) HasActionPoints(n uint) bool { return p.ActionPoints >= n }

// GameConfig holds the per-game rule parameters, mutable only while
// the game is in phase Init and only by the host.
type GameConfig struct {
	TurnTimeSecs     uint    `toml:"turn_time_secs" json:"turn_time_secs"`
	MaxPlayers       uint    `toml:"max_players" json:"max_players"`
	BoardSize        uint    `toml:"board_size" json:"board_size"`
	InitActionPoints uint    `toml:"init_action_points" json:"init_action_points"`
	InitLives        uint    `toml:"init_lives" json:"init_lives"`
	InitRange        uint    `toml:"init_range" json:"init_range"`
	InitPos          InitPos `toml:"-" json:"init_pos"`
}

// DefaultGameConfig is the configuration a freshly-hosted game starts
// with, overridable in Init via ConfigGame.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		TurnTimeSecs:     30,
		MaxPlayers:       8,
		BoardSize:        10,
		InitActionPoints: 1,
		InitLives:        3,
		InitRange:        2,
		InitPos:          Random,
	}
}
