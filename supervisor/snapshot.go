// Wire-ready game snapshots, grounded on common.rs's MsgResult
// constructors and spec §6's outbound payload shapes.
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
	"sort"

	"go-gw/game"
	"go-gw/gw"
)

type GameSnapshot struct {
	GameID      string                `json:"game_id"`
	HostUserID  string                `json:"host_user_id"`
	Phase       string                `json:"phase"`
	Config      gw.GameConfig         `json:"config"`
	Players     map[string]gw.Player  `json:"players"`
	Alive       []string              `json:"alive"`
	Dead        []string              `json:"dead"`
	PlayerBoard map[string]string     `json:"player_board"`
	HeartsBoard map[string]uint       `json:"hearts_board"`
	TurnEndUnix int64                 `json:"turn_end_unix"`
}

func snapshot(g *game.Game) GameSnapshot {
	alive := make([]string, 0, len(g.Alive))
	for u := range g.Alive {
		alive = append(alive, u)
	}
	sort.Strings(alive)
	dead := make([]string, 0, len(g.Dead))
	for u := range g.Dead {
		dead = append(dead, u)
	}
	sort.Strings(dead)

	players := make(map[string]gw.Player, len(g.Players))
	for u, p := range g.Players {
		players[u] = p
	}

	return GameSnapshot{
		GameID:      g.ID,
		HostUserID:  g.HostUserID,
		Phase:       g.Phase.String(),
		Config:      g.Config,
		Players:     players,
		Alive:       alive,
		Dead:        dead,
		PlayerBoard: g.Board.PlayersSnapshot(),
		HeartsBoard: g.Board.HeartsSnapshot(),
		TurnEndUnix: g.TurnEndUnix,
	}
}

type playersAliveUpdate struct {
	GameID    string   `json:"game_id"`
	AliveDead []string `json:"alive_dead"`
}

type boardActionPointsUpdate struct {
	GameID string      `json:"game_id"`
	Board  interface{} `json:"board"`
	New    *gw.Pos     `json:"new,omitempty"`
	Old    *gw.Pos     `json:"old,omitempty"`
}
