// Init-phase configuration operations, per spec §4.2's "Configuration"
// table.
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

package game

import "go-gw/gw"

type ConfigOpKind int

const (
	OpTurnTimeSecs ConfigOpKind = iota
	OpMaxPlayers
	OpBoardSize
	OpInitLives
	OpInitRange
	OpInitActPts
	OpInitPos
)

// ConfigOp is the tagged union of spec §6's conf_game payload.
type ConfigOp struct {
	Kind  ConfigOpKind
	Value uint
	Pos   gw.InitPos
}

// ConfigResult carries the reconciliation data a config op may
// produce; only populated for InitPos Random, which reseats every
// placed player and reports the cell each one moved from -> to.
type ConfigResult struct {
	Reseated map[string]gw.Pos // old cell key -> new position
}

// Configure applies op in phase Init. The caller is responsible for
// verifying the requester is the host.
func (g *Game) Configure(op ConfigOp) (*ConfigResult, error) {
	if g.Phase != Init {
		return nil, gw.NewError(gw.IllegalState, "conf_game", "game already started")
	}

	switch op.Kind {
	case OpTurnTimeSecs:
		if op.Value < 10 || op.Value > 86400 {
			return nil, gw.NewError(gw.RuleViolation, "conf_game", "turn_time_secs must be in [10, 86400]")
		}
		g.Config.TurnTimeSecs = op.Value

	case OpMaxPlayers:
		if op.Value > g.Config.BoardSize*g.Config.BoardSize {
			return nil, gw.NewError(gw.RuleViolation, "conf_game", "max_players exceeds board capacity")
		}
		if op.Value < uint(len(g.Players)) {
			return nil, gw.NewError(gw.RuleViolation, "conf_game", "max_players below current player count")
		}
		g.Config.MaxPlayers = op.Value

	case OpBoardSize:
		if op.Value*op.Value < g.Config.MaxPlayers {
			return nil, gw.NewError(gw.RuleViolation, "conf_game", "board too small for max_players")
		}
		g.Config.BoardSize = op.Value
		g.Board = gw.MakeBoard(op.Value)
		g.Hearts = g.Board
		for user, p := range g.Players {
			p.Pos = gw.Unplaced
			g.Players[user] = p
		}

	case OpInitActPts:
		g.Config.InitActionPoints = op.Value
		for user, p := range g.Players {
			p.ActionPoints = op.Value
			g.Players[user] = p
		}

	case OpInitLives:
		g.Config.InitLives = op.Value
		for user, p := range g.Players {
			p.Lives = op.Value
			g.Players[user] = p
		}

	case OpInitRange:
		g.Config.InitRange = op.Value
		for user, p := range g.Players {
			p.Range = op.Value
			g.Players[user] = p
		}

	case OpInitPos:
		g.Config.InitPos = op.Pos
		if op.Pos == gw.Random {
			reseated := make(map[string]gw.Pos, len(g.Players))
			for user, p := range g.Players {
				old := p.Pos
				g.placeRandomly(user)
				reseated[old.Key()] = g.Players[user].Pos
			}
			return &ConfigResult{Reseated: reseated}, nil
		}

	default:
		return nil, gw.NewError(gw.BadRequest, "conf_game", "unknown config option")
	}

	return nil, nil
}
