// The player board and hearts board.
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

import "math/rand"

// Board is a square grid holding at most one player per cell and a
// count of spawned hearts per cell. Both maps are sparse: a cell
// absent from players is vacant, a cell absent from hearts holds zero
// hearts.
type Board struct {
	size    uint
	players map[Pos]string
	hearts  map[Pos]uint
}

func MakeBoard(size uint) *Board {
	return &Board{
		size:    size,
		players: make(map[Pos]string),
		hearts:  make(map[Pos]uint),
	}
}

func (b *Board) Size() uint { return b.size }

func (b *Board) InBounds(p Pos) bool {
	return uint64(p.X) < uint64(b.size) && uint64(p.Y) < uint64(b.size)
}

func (b *Board) Occupant(p Pos) (string, bool) {
	u, ok := b.players[p]
	return u, ok
}

func (b *Board) PlacePlayer(p Pos, user string) {
	b.players[p] = user
}

func (b *Board) RemovePlayer(p Pos) {
	delete(b.players, p)
}

func (b *Board) MovePlayer(from, to Pos, user string) {
	if from.IsPlaced() {
		delete(b.players, from)
	}
	b.players[to] = user
}

// RandomVacantCell picks a uniformly random unoccupied cell using
// rejection sampling, as spec §4.2's insert_player does for
// InitPos==Random. It assumes the board is not already full.
func (b *Board) RandomVacantCell(rng *rand.Rand) Pos {
	for {
		p := Pos{X: uint32(rng.Intn(int(b.size))), Y: uint32(rng.Intn(int(b.size)))}
		if _, occupied := b.players[p]; !occupied {
			return p
		}
	}
}

// RandomCell picks a uniformly random cell regardless of occupancy,
// used for heart spawns which may land on an occupied cell.
func (b *Board) RandomCell(rng *rand.Rand) Pos {
	return Pos{X: uint32(rng.Intn(int(b.size))), Y: uint32(rng.Intn(int(b.size)))}
}

func (b *Board) HeartCount(p Pos) uint { return b.hearts[p] }

func (b *Board) AddHeart(p Pos) uint {
	b.hearts[p]++
	return b.hearts[p]
}

func (b *Board) ClearHearts(p Pos) {
	delete(b.hearts, p)
}

// PlayersSnapshot renders the player board the way it is serialized
// on the wire: cell key "x,y" to user_id.
func (b *Board) PlayersSnapshot() map[string]string {
	out := make(map[string]string, len(b.players))
	for p, u := range b.players {
		out[p.Key()] = u
	}
	return out
}

// HeartsSnapshot renders the hearts board the way it is serialized on
// the wire: cell key "x,y" to heart count.
func (b *Board) HeartsSnapshot() map[string]uint {
	out := make(map[string]uint, len(b.hearts))
	for p, c := range b.hearts {
		out[p.Key()] = c
	}
	return out
}

func (b *Board) VacantCount() uint {
	return b.size*b.size - uint(len(b.players))
}
