// Inbound wire payloads, per spec §6's "Command line protocol
// (transport-neutral)" list, and their translation into supervisor
// commands.
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

package transport

import (
	"encoding/json"
	"fmt"
	"strings"

	"go-gw/game"
	"go-gw/gw"
)

type loginPayload struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// verifyPayload mirrors relay_server.rs's VerifySession message,
// which carries an optional user_id alongside the token: a connection
// presenting a stale or absent user_id is simply logged out.
type verifyPayload struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

type confGamePayload struct {
	GameID string          `json:"game_id"`
	Op     json.RawMessage `json:"op"`
}

type playerActionPayload struct {
	GameID string          `json:"game_id"`
	Action json.RawMessage `json:"action"`
}

// bareGameID reads a game_id passed as the raw remainder of the line,
// the way ws_session.rs's parse_message hands msg straight through to
// host_game/join_game/start_game with no JSON decoding at all.
func bareGameID(raw json.RawMessage) (string, error) {
	id := strings.TrimSpace(string(raw))
	if id == "" {
		return "", fmt.Errorf("missing game_id")
	}
	return id, nil
}

// decodeConfigOp unwraps the tagged-union shape described in spec §6:
// a single-key object naming the variant, e.g. {"TurnTimeSecs": 30}
// or {"InitPos": "Random"}.
func decodeConfigOp(raw json.RawMessage) (game.ConfigOp, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return game.ConfigOp{}, err
	}
	if len(tagged) != 1 {
		return game.ConfigOp{}, fmt.Errorf("expected exactly one config op, got %d", len(tagged))
	}

	for tag, body := range tagged {
		switch tag {
		case "TurnTimeSecs":
			return uintOp(game.OpTurnTimeSecs, body)
		case "MaxPlayers":
			return uintOp(game.OpMaxPlayers, body)
		case "BoardSize":
			return uintOp(game.OpBoardSize, body)
		case "InitLives":
			return uintOp(game.OpInitLives, body)
		case "InitRange":
			return uintOp(game.OpInitRange, body)
		case "InitActPts":
			return uintOp(game.OpInitActPts, body)
		case "InitPos":
			var name string
			if err := json.Unmarshal(body, &name); err != nil {
				return game.ConfigOp{}, err
			}
			switch name {
			case "Random":
				return game.ConfigOp{Kind: game.OpInitPos, Pos: gw.Random}, nil
			case "Manual":
				return game.ConfigOp{Kind: game.OpInitPos, Pos: gw.Manual}, nil
			default:
				return game.ConfigOp{}, fmt.Errorf("unknown init_pos %q", name)
			}
		default:
			return game.ConfigOp{}, fmt.Errorf("unknown config op %q", tag)
		}
	}
	panic("unreachable")
}

func uintOp(kind game.ConfigOpKind, body json.RawMessage) (game.ConfigOp, error) {
	var v uint
	if err := json.Unmarshal(body, &v); err != nil {
		return game.ConfigOp{}, err
	}
	return game.ConfigOp{Kind: kind, Value: v}, nil
}

// decodeAction unwraps spec §6's player_action tagged union.
func decodeAction(raw json.RawMessage) (game.Action, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return game.Action{}, err
	}
	if len(tagged) != 1 {
		return game.Action{}, fmt.Errorf("expected exactly one action, got %d", len(tagged))
	}

	for tag, body := range tagged {
		switch tag {
		case "Move":
			var v struct {
				Pos gw.Pos `json:"pos"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return game.Action{}, err
			}
			return game.Action{Kind: game.Move, Pos: v.Pos}, nil

		case "Attack":
			var v struct {
				TargetUserID string `json:"target_user_id"`
				LivesEffect  uint   `json:"lives_effect"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return game.Action{}, err
			}
			return game.Action{Kind: game.Attack, Target: v.TargetUserID, HasTarget: true, LivesEffect: v.LivesEffect}, nil

		case "Give":
			var v struct {
				TargetUserID string `json:"target_user_id"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return game.Action{}, err
			}
			return game.Action{Kind: game.Give, Target: v.TargetUserID, HasTarget: true}, nil

		case "RangeUpgrade":
			var v struct {
				PointCost uint `json:"point_cost"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return game.Action{}, err
			}
			return game.Action{Kind: game.RangeUpgrade, PointCost: v.PointCost}, nil

		case "Heal":
			var v struct {
				PointCost uint `json:"point_cost"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return game.Action{}, err
			}
			return game.Action{Kind: game.Heal, PointCost: v.PointCost}, nil

		case "Revive":
			var v struct {
				TargetUserID string `json:"target_user_id"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return game.Action{}, err
			}
			return game.Action{Kind: game.Revive, Target: v.TargetUserID, HasTarget: true}, nil

		case "Curse":
			var v struct {
				TargetUserID *string `json:"target_user_id"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return game.Action{}, err
			}
			if v.TargetUserID == nil {
				return game.Action{Kind: game.Curse}, nil
			}
			return game.Action{Kind: game.Curse, Target: *v.TargetUserID, HasTarget: true}, nil

		case "TileHearts":
			var v struct {
				Pos      gw.Pos `json:"pos"`
				NewLives uint   `json:"new_lives"`
			}
			if err := json.Unmarshal(body, &v); err != nil {
				return game.Action{}, err
			}
			return game.Action{Kind: game.Redeem, Pos: v.Pos, NewLives: v.NewLives}, nil

		default:
			return game.Action{}, fmt.Errorf("unknown action %q", tag)
		}
	}
	panic("unreachable")
}
