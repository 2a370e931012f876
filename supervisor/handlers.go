// Command handlers, one per spec §4.5 operation.
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
	"go-gw/gw"
	"go-gw/proto"
)

func (s *Supervisor) handleConnect(c ConnectCmd) {
	res, err := s.reg.Connect(c.UserID, c.Password, c.Endpoint)
	if c.Reply != nil {
		c.Reply <- ConnectReply{Result: res, Err: err}
		return
	}
	if err != nil {
		if c.Endpoint != nil {
			c.Endpoint.Send(proto.EncodeError("login", err.Error()))
		}
		return
	}
	if c.Endpoint != nil {
		c.Endpoint.Send(proto.MustEncode("login", res))
	}
}

func (s *Supervisor) handleVerifySession(c VerifySessionCmd) {
	// session.Registry already sends the /alert or /logout frame the
	// outcome implies; the Supervisor has nothing further to do.
	s.reg.VerifySession(c.UserID, c.Endpoint, c.Token)
}

func (s *Supervisor) handleDisconnect(c DisconnectCmd) {
	s.reg.Disconnect(c.UserID)
}

func (s *Supervisor) handleHostGame(c HostGameCmd) {
	const ctx = "host_game"

	if existing, bound := s.userGames[c.HostUserID]; bound && existing != c.GameID {
		s.reg.SendUser(c.HostUserID, proto.EncodeError(ctx, "already bound to a different game"))
		return
	}

	g, exists := s.games[c.GameID]
	isNew := false
	if exists {
		if g.HostUserID != c.HostUserID {
			s.reg.SendUser(c.HostUserID, proto.EncodeError(ctx, "game exists with a different host"))
			return
		}
	} else {
		g = game.New(c.GameID, c.HostUserID, gw.DefaultGameConfig(), s.nextSeed())
		s.games[c.GameID] = g
		isNew = true
	}

	if _, err := g.InsertPlayer(c.HostUserID); err != nil {
		s.reg.SendUser(c.HostUserID, proto.EncodeError(ctx, err.Error()))
		return
	}
	s.userGames[c.HostUserID] = c.GameID

	s.reg.SendUser(c.HostUserID, proto.MustEncode("host_game_success", snapshot(g)))
	s.sendAPUpdate(g, c.HostUserID)

	alert := "rejoined game"
	if isNew {
		alert = "new game created"
	}
	s.reg.SendUser(c.HostUserID, proto.MustEncode("alert", alert))
}

func (s *Supervisor) handleJoinGame(c JoinGameCmd) {
	const ctx = "join_game"

	if existing, bound := s.userGames[c.UserID]; bound && existing != c.GameID {
		s.reg.SendUser(c.UserID, proto.EncodeError(ctx, "already in a different game"))
		return
	}

	g, ok := s.games[c.GameID]
	if !ok {
		s.reg.SendUser(c.UserID, proto.EncodeError(ctx, "game not found"))
		return
	}

	result, err := g.InsertPlayer(c.UserID)
	if err != nil {
		s.reg.SendUser(c.UserID, proto.EncodeError(ctx, err.Error()))
		return
	}
	if g.Phase != game.End {
		s.userGames[c.UserID] = c.GameID
	}

	s.reg.SendUser(c.UserID, proto.MustEncode("join_game_success", snapshot(g)))
	s.sendAPUpdate(g, c.UserID)

	if result == game.Joined {
		s.reg.SendAll(otherPlayers(g, c.UserID), proto.MustEncode("player_joined", g.Players[c.UserID]))
	}
}

func (s *Supervisor) handleConfigGame(c ConfigGameCmd) {
	const ctx = "conf_game"

	g, ok := s.games[c.GameID]
	if !ok {
		s.reg.SendUser(c.HostUserID, proto.EncodeError(ctx, "game not found"))
		return
	}
	if g.HostUserID != c.HostUserID {
		s.reg.SendUser(c.HostUserID, proto.EncodeError(ctx, "only the host may configure the game"))
		return
	}

	result, err := g.Configure(c.Op)
	if err != nil {
		s.reg.SendUser(c.HostUserID, proto.EncodeError(ctx, err.Error()))
		return
	}

	payload := configGameResult{Game: snapshot(g)}
	if result != nil {
		payload.Reseated = result.Reseated
	}
	s.reg.SendAll(allPlayers(g), proto.MustEncode("conf_game", payload))
}

func (s *Supervisor) handleStartGame(c StartGameCmd) {
	const ctx = "start_game"

	g, ok := s.games[c.GameID]
	if !ok {
		s.reg.SendUser(c.HostUserID, proto.EncodeError(ctx, "game not found"))
		return
	}
	if g.HostUserID != c.HostUserID {
		s.reg.SendUser(c.HostUserID, proto.EncodeError(ctx, "only the host may start the game"))
		return
	}
	if err := g.StartGame(); err != nil {
		s.reg.SendUser(c.HostUserID, proto.EncodeError(ctx, err.Error()))
		return
	}

	players := allPlayers(g)
	s.reg.SendAll(players, proto.MustEncode("start_game", snapshot(g)))
	for _, user := range players {
		s.sendAPUpdate(g, user)
	}
	s.scheduleReplenish(g)
}

func (s *Supervisor) handleUserStatus(c UserStatusCmd) {
	payload := userStatusPayload{}
	if gameID, ok := s.userGames[c.UserID]; ok {
		payload.GameID = &gameID
	}
	s.reg.SendUser(c.UserID, proto.MustEncode("user_status", payload))
}

func (s *Supervisor) handlePlayerAction(c PlayerActionCmd) {
	const ctx = "player_action"

	bound, ok := s.userGames[c.UserID]
	if !ok || bound != c.GameID {
		s.reg.SendUser(c.UserID, proto.EncodeError(ctx, "not bound to that game"))
		return
	}
	g, ok := s.games[c.GameID]
	if !ok {
		s.reg.SendUser(c.UserID, proto.EncodeError(ctx, "game not found"))
		return
	}

	ev, updates, err := g.PlayerAction(c.UserID, c.Action)
	if err != nil {
		s.reg.SendUser(c.UserID, proto.EncodeError(ctx, err.Error()))
		return
	}

	recipients := allPlayers(g)
	s.reg.SendAll(recipients, proto.MustEncode("player_action", ev))
	for _, u := range updates {
		s.reg.SendUser(u.UserID, proto.MustEncode("action_point_update", u))
	}

	if g.Phase == game.End {
		s.reg.SendAll(recipients, proto.MustEncode("players_alive_update", playersAliveUpdate{
			GameID: g.ID, AliveDead: append([]string{}, recipients...),
		}))
		s.clearUserGames(g)
	}
}

func (s *Supervisor) handleReplenish(c replenishCmd) {
	g, ok := s.games[c.GameID]
	if !ok || g.Phase == game.End {
		return
	}

	cursed := toSet(g.Cursings.GetWinners())
	updates, err := g.Replenish(cursed)
	if err != nil {
		return
	}
	for _, u := range updates {
		s.reg.SendUser(u.UserID, proto.MustEncode("action_point_update", u))
	}
	s.reg.SendAll(allPlayers(g), proto.MustEncode("turn_end_unix", turnEndPayload{
		GameID: g.ID, TurnEndUnix: g.TurnEndUnix,
	}))
	s.reg.SendAll(allPlayers(g), proto.MustEncode("replenish", updates))

	s.scheduleReplenish(g)
}

func (s *Supervisor) handleSpawnHeart(c spawnHeartCmd) {
	g, ok := s.games[c.GameID]
	if !ok || g.Phase == game.End {
		return
	}

	ev := g.SpawnTileHeart()
	if ev.Occupant != "" {
		kind := game.EventHeal
		if ev.Revived {
			kind = game.EventRevive
		}
		s.reg.SendAll(allPlayers(g), proto.MustEncode("player_action", game.Event{
			Kind: kind, Target: ev.Occupant,
		}))
		return
	}

	s.reg.SendAll(allPlayers(g), proto.MustEncode("board_action_points", boardActionPointsUpdate{
		GameID: g.ID,
		Board:  map[string]uint{ev.Pos.Key(): ev.HeartsDelta},
		New:    &ev.Pos,
	}))
}

type turnEndPayload struct {
	GameID      string `json:"game_id"`
	TurnEndUnix int64  `json:"turn_end_unix"`
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
