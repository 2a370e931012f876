// The player action pipeline: validate-then-stage-then-commit, per
// spec §4.2 and the "per-action staging" design note in spec §9.
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

type ActionKind int

const (
	Move ActionKind = iota
	Attack
	Give
	RangeUpgrade
	Heal
	Revive
	Curse
	Redeem
)

// Action is the tagged union of spec §6's player_action payload.
// Only the fields relevant to Kind are meaningful.
type Action struct {
	Kind ActionKind

	Pos  gw.Pos // Move, Redeem
	Target string // Attack, Give, Revive, Curse
	HasTarget bool // Curse's target is optional

	LivesEffect uint // Attack; must be 1
	PointCost   uint // RangeUpgrade, Heal; must be 3
	NewLives    uint // Redeem: heart count consumed, informational
}

// EventKind identifies what a player_action produced, for the
// supervisor's outbound /player_action frame.
type EventKind string

const (
	EventMove         EventKind = "move"
	EventAttack       EventKind = "attack"
	EventGive         EventKind = "give"
	EventRangeUpgrade EventKind = "range_upgrade"
	EventHeal         EventKind = "heal"
	EventRevive       EventKind = "revive"
	EventCurse        EventKind = "curse"
	EventRedeem       EventKind = "redeem"
)

// Event describes what a successful action did, for broadcast.
type Event struct {
	Kind   EventKind `json:"kind"`
	Actor  string    `json:"actor"`
	Target string    `json:"target,omitempty"`
	From   *gw.Pos   `json:"from,omitempty"`
	To     *gw.Pos   `json:"to,omitempty"`
	Died   bool      `json:"died,omitempty"`
}

func (g *Game) aliveAndPresent(user string) (gw.Player, error) {
	p, ok := g.Players[user]
	if !ok {
		return gw.Player{}, gw.NewError(gw.NotFound, "player_action", "unknown player")
	}
	return p, nil
}

func (g *Game) moveableInProg(actor gw.Player, to gw.Pos) bool {
	if actor.ActionPoints < 1 {
		return false
	}
	return actor.Pos.Chebyshev(to) <= actor.Range
}

// PlayerAction validates and applies a single action atomically. On
// any validation failure it returns an error and leaves the game
// state untouched.
func (g *Game) PlayerAction(user string, a Action) (Event, []APUpdate, error) {
	if g.Phase == End {
		return Event{}, nil, gw.NewError(gw.IllegalState, "player_action", "game has ended")
	}
	actor, err := g.aliveAndPresent(user)
	if err != nil {
		return Event{}, nil, err
	}

	switch a.Kind {
	case Move:
		return g.applyMove(actor, a)
	case Attack:
		return g.applyAttack(actor, a)
	case Give:
		return g.applyGive(actor, a)
	case RangeUpgrade:
		return g.applyRangeUpgrade(actor, a)
	case Heal:
		return g.applyHeal(actor, a)
	case Revive:
		return g.applyRevive(actor, a)
	case Curse:
		return g.applyCurse(actor, a)
	case Redeem:
		return g.applyRedeem(actor, a)
	default:
		return Event{}, nil, gw.NewError(gw.BadRequest, "player_action", "unknown action")
	}
}

func (g *Game) applyMove(actor gw.Player, a Action) (Event, []APUpdate, error) {
	if !g.Board.InBounds(a.Pos) {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "move", "out of bounds")
	}
	if _, occupied := g.Board.Occupant(a.Pos); occupied {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "move", "cell occupied")
	}

	if g.Phase == InProg {
		if actor.IsDead() {
			return Event{}, nil, gw.NewError(gw.IllegalState, "move", "actor is dead")
		}
		if !g.moveableInProg(actor, a.Pos) {
			return Event{}, nil, gw.NewError(gw.RuleViolation, "move", "out of range or no action points")
		}
	} else { // Init
		if g.Config.InitPos != gw.Manual {
			return Event{}, nil, gw.NewError(gw.IllegalState, "move", "placement is not manual")
		}
	}

	from := actor.Pos
	if g.Phase == InProg {
		actor.ActionPoints--
	}
	actor.Pos = a.Pos
	g.Board.MovePlayer(from, a.Pos, actor.UserID)
	g.Players[actor.UserID] = actor

	fromCopy, toCopy := from, a.Pos
	ev := Event{Kind: EventMove, Actor: actor.UserID, From: &fromCopy, To: &toCopy}
	updates := []APUpdate{{UserID: actor.UserID, GameID: g.ID, ActionPoints: actor.ActionPoints}}
	return ev, updates, nil
}

func (g *Game) applyAttack(actor gw.Player, a Action) (Event, []APUpdate, error) {
	if actor.UserID == a.Target {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "attack", "cannot target self")
	}
	target, err := g.aliveAndPresent(a.Target)
	if err != nil {
		return Event{}, nil, err
	}
	if actor.IsDead() || target.IsDead() {
		return Event{}, nil, gw.NewError(gw.IllegalState, "attack", "both players must be alive")
	}
	if !g.moveableInProg(actor, target.Pos) {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "attack", "out of range or no action points")
	}
	if a.LivesEffect != 1 {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "attack", "invalid effect value")
	}

	actor.ActionPoints--
	target.Lives--

	died := target.IsDead()
	updates := []APUpdate{}
	if died {
		actor.ActionPoints += target.ActionPoints
		target.ActionPoints = 0
	}

	g.Players[actor.UserID] = actor
	g.Players[target.UserID] = target
	if died {
		g.killBookkeeping(target.UserID)
		updates = append(updates, APUpdate{UserID: target.UserID, GameID: g.ID, ActionPoints: 0})
	}
	updates = append(updates, APUpdate{UserID: actor.UserID, GameID: g.ID, ActionPoints: actor.ActionPoints})

	return Event{Kind: EventAttack, Actor: actor.UserID, Target: target.UserID, Died: died}, updates, nil
}

func (g *Game) applyGive(actor gw.Player, a Action) (Event, []APUpdate, error) {
	if actor.UserID == a.Target {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "give", "cannot target self")
	}
	target, err := g.aliveAndPresent(a.Target)
	if err != nil {
		return Event{}, nil, err
	}
	if actor.IsDead() || target.IsDead() {
		return Event{}, nil, gw.NewError(gw.IllegalState, "give", "both players must be alive")
	}
	if !g.moveableInProg(actor, target.Pos) {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "give", "out of range or no action points")
	}

	actor.ActionPoints--
	target.ActionPoints++
	g.Players[actor.UserID] = actor
	g.Players[target.UserID] = target

	ev := Event{Kind: EventGive, Actor: actor.UserID, Target: target.UserID}
	updates := []APUpdate{
		{UserID: target.UserID, GameID: g.ID, ActionPoints: target.ActionPoints},
		{UserID: actor.UserID, GameID: g.ID, ActionPoints: actor.ActionPoints},
	}
	return ev, updates, nil
}

func (g *Game) applyRangeUpgrade(actor gw.Player, a Action) (Event, []APUpdate, error) {
	if actor.IsDead() {
		return Event{}, nil, gw.NewError(gw.IllegalState, "range_upgrade", "actor is dead")
	}
	if a.PointCost != 3 || !actor.HasActionPoints(3) {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "range_upgrade", "requires 3 action points")
	}
	actor.ActionPoints -= 3
	actor.Range++
	g.Players[actor.UserID] = actor

	ev := Event{Kind: EventRangeUpgrade, Actor: actor.UserID}
	return ev, []APUpdate{{UserID: actor.UserID, GameID: g.ID, ActionPoints: actor.ActionPoints}}, nil
}

func (g *Game) applyHeal(actor gw.Player, a Action) (Event, []APUpdate, error) {
	if actor.IsDead() {
		return Event{}, nil, gw.NewError(gw.IllegalState, "heal", "actor is dead")
	}
	if a.PointCost != 3 || !actor.HasActionPoints(3) {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "heal", "requires 3 action points")
	}
	actor.ActionPoints -= 3
	actor.Lives++
	g.Players[actor.UserID] = actor

	ev := Event{Kind: EventHeal, Actor: actor.UserID}
	return ev, []APUpdate{{UserID: actor.UserID, GameID: g.ID, ActionPoints: actor.ActionPoints}}, nil
}

func (g *Game) applyRevive(actor gw.Player, a Action) (Event, []APUpdate, error) {
	if actor.UserID == a.Target {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "revive", "cannot target self")
	}
	if actor.IsDead() {
		return Event{}, nil, gw.NewError(gw.IllegalState, "revive", "actor is dead")
	}
	target, err := g.aliveAndPresent(a.Target)
	if err != nil {
		return Event{}, nil, err
	}
	if target.IsAlive() {
		return Event{}, nil, gw.NewError(gw.IllegalState, "revive", "target is alive")
	}
	if actor.Lives == 0 {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "revive", "actor has no lives")
	}

	actor.Lives--
	target.Lives++
	g.Players[actor.UserID] = actor
	g.Players[target.UserID] = target
	g.reviveBookkeeping(target.UserID)

	if actor.IsDead() {
		g.killBookkeeping(actor.UserID)
	}

	ev := Event{Kind: EventRevive, Actor: actor.UserID, Target: target.UserID}
	updates := []APUpdate{{UserID: actor.UserID, GameID: g.ID, ActionPoints: actor.ActionPoints}}
	return ev, updates, nil
}

func (g *Game) applyCurse(actor gw.Player, a Action) (Event, []APUpdate, error) {
	if actor.IsAlive() {
		return Event{}, nil, gw.NewError(gw.IllegalState, "curse", "actor must be dead")
	}
	if a.HasTarget {
		if err := g.Cursings.Vote(actor.UserID, []string{a.Target}); err != nil {
			return Event{}, nil, gw.Wrap(gw.RuleViolation, "curse", err)
		}
	} else {
		g.Cursings.RemoveBallot(actor.UserID)
	}
	ev := Event{Kind: EventCurse, Actor: actor.UserID, Target: a.Target}
	return ev, []APUpdate{{UserID: actor.UserID, GameID: g.ID, ActionPoints: actor.ActionPoints}}, nil
}

func (g *Game) applyRedeem(actor gw.Player, a Action) (Event, []APUpdate, error) {
	if actor.Pos != a.Pos {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "redeem", "not standing on that cell")
	}
	count := g.Board.HeartCount(a.Pos)
	if count == 0 {
		return Event{}, nil, gw.NewError(gw.RuleViolation, "redeem", "no hearts on that cell")
	}
	wasDead := actor.IsDead()
	actor.Lives += count
	g.Board.ClearHearts(a.Pos)
	g.Players[actor.UserID] = actor
	if wasDead && actor.IsAlive() {
		g.reviveBookkeeping(actor.UserID)
	}

	ev := Event{Kind: EventRedeem, Actor: actor.UserID}
	return ev, []APUpdate{{UserID: actor.UserID, GameID: g.ID, ActionPoints: actor.ActionPoints}}, nil
}
