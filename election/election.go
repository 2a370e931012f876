// Ranked-choice ballot tally with dynamic candidate/voter rosters.
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

// Package election implements the instant-runoff ballot tally used by
// a Game's cursing vote. It is a self-contained component: candidates
// and voters are opaque string identifiers, so it has no dependency
// on the game package it is embedded in.
package election

import (
	"errors"
	"sort"
)

const maxRounds = 10000

// ballot is one voter's ranked preference list plus a cursor into it:
// prefs[cursor] is the candidate the ballot is currently allocated
// to. The cursor only advances when that candidate is eliminated.
type ballot struct {
	voter  string
	prefs  []string
	cursor int
}

// Election is a ranked-choice tally over a dynamic candidate/voter
// roster. The zero value is not usable; construct with New.
type Election struct {
	Name       string
	candidates map[string]struct{}
	voters     map[string]struct{}
	ballots    map[string]*ballot            // voter -> ballot
	allocation map[string]map[string]struct{} // candidate -> set of voters
	open       bool
}

func New(name string) *Election {
	return &Election{
		Name:       name,
		candidates: make(map[string]struct{}),
		voters:     make(map[string]struct{}),
		ballots:    make(map[string]*ballot),
		allocation: make(map[string]map[string]struct{}),
		open:       true,
	}
}

func fail(msg string) error { return errors.New(msg) }

// SetCandidates replaces the candidate roster. Only meaningful while
// the election is open.
func (e *Election) SetCandidates(ids []string) error {
	if !e.open {
		return fail("election closed")
	}
	e.candidates = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		e.candidates[id] = struct{}{}
		if _, ok := e.allocation[id]; !ok {
			e.allocation[id] = make(map[string]struct{})
		}
	}
	return nil
}

// SetVoters replaces the voter roster. Only meaningful while the
// election is open.
func (e *Election) SetVoters(ids []string) error {
	if !e.open {
		return fail("election closed")
	}
	e.voters = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		e.voters[id] = struct{}{}
	}
	return nil
}

// AddCandidate inserts a single candidate without touching the rest
// of the roster, used when a new player joins a game and becomes
// eligible to be cursed.
func (e *Election) AddCandidate(id string) {
	e.candidates[id] = struct{}{}
	if _, ok := e.allocation[id]; !ok {
		e.allocation[id] = make(map[string]struct{})
	}
}

func (e *Election) IsCandidate(id string) bool { _, ok := e.candidates[id]; return ok }
func (e *Election) IsVoter(id string) bool     { _, ok := e.voters[id]; return ok }

// Vote casts or replaces voter's ballot. prefs must be non-empty,
// contain only current candidates, contain no duplicates, and be no
// longer than the candidate roster.
func (e *Election) Vote(voter string, prefs []string) error {
	if !e.open {
		return fail("election closed")
	}
	if _, ok := e.voters[voter]; !ok {
		return fail("not a voter")
	}
	if len(prefs) == 0 || len(prefs) > len(e.candidates) {
		return fail("invalid preference count")
	}
	seen := make(map[string]struct{}, len(prefs))
	for _, c := range prefs {
		if _, ok := e.candidates[c]; !ok {
			return fail("unknown candidate in ballot")
		}
		if _, dup := seen[c]; dup {
			return fail("duplicate candidate in ballot")
		}
		seen[c] = struct{}{}
	}

	e.removeBallotLocked(voter)

	cp := make([]string, len(prefs))
	copy(cp, prefs)
	b := &ballot{voter: voter, prefs: cp, cursor: 0}
	e.ballots[voter] = b
	e.allocate(b)
	return nil
}

func (e *Election) allocate(b *ballot) {
	cand := b.prefs[b.cursor]
	if e.allocation[cand] == nil {
		e.allocation[cand] = make(map[string]struct{})
	}
	e.allocation[cand][b.voter] = struct{}{}
}

func (e *Election) deallocate(b *ballot) {
	cand := b.prefs[b.cursor]
	if set, ok := e.allocation[cand]; ok {
		delete(set, b.voter)
	}
}

// RemoveBallot withdraws voter's ballot, if any.
func (e *Election) RemoveBallot(voter string) {
	e.removeBallotLocked(voter)
}

func (e *Election) removeBallotLocked(voter string) {
	b, ok := e.ballots[voter]
	if !ok {
		return
	}
	e.deallocate(b)
	delete(e.ballots, voter)
}

// MoveVoterToCandidate drops voter's ballot and promotes them to a
// candidate with an empty allocation set.
func (e *Election) MoveVoterToCandidate(id string) error {
	if _, ok := e.voters[id]; !ok {
		return fail("not a voter")
	}
	e.removeBallotLocked(id)
	delete(e.voters, id)
	e.candidates[id] = struct{}{}
	e.allocation[id] = make(map[string]struct{})
	return nil
}

// MoveCandidateToVoter drops every ballot currently allocated to id
// (those voters become ballotless, not reallocated, to avoid stale
// allocations against a candidate that no longer exists) and demotes
// id to a voter.
func (e *Election) MoveCandidateToVoter(id string) error {
	if !e.open {
		return fail("election closed")
	}
	if _, ok := e.candidates[id]; !ok {
		return fail("not a candidate")
	}
	for voter := range e.allocation[id] {
		delete(e.ballots, voter)
	}
	delete(e.allocation, id)
	delete(e.candidates, id)
	e.voters[id] = struct{}{}
	return nil
}

// GetVoterBallot returns voter's current first preference, if any.
func (e *Election) GetVoterBallot(voter string) (string, bool) {
	b, ok := e.ballots[voter]
	if !ok {
		return "", false
	}
	return b.prefs[b.cursor], true
}

func (e *Election) allocationCounts() map[string]int {
	counts := make(map[string]int, len(e.candidates))
	for c := range e.candidates {
		counts[c] = len(e.allocation[c])
	}
	return counts
}

// GetWinners returns the candidates tied for the highest non-zero
// allocation count. If every candidate has zero allocations, it
// returns an empty slice.
func (e *Election) GetWinners() []string {
	counts := e.allocationCounts()
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	if max == 0 {
		return nil
	}
	var winners []string
	for c, n := range counts {
		if n == max {
			winners = append(winners, c)
		}
	}
	sort.Strings(winners)
	return winners
}

func (e *Election) longestBallot() int {
	max := 0
	for _, b := range e.ballots {
		if len(b.prefs) > max {
			max = len(b.prefs)
		}
	}
	return max
}

// ApplyPreferentialVoting closes the election and runs instant-runoff
// reallocation rounds until a majority winner emerges, no further
// elimination is possible, or every ballot has been exhausted. Ties
// for the minimum candidate to eliminate are broken by Go's
// nondeterministic map iteration order, same as the original's
// hash-map traversal order; this is accepted nondeterminism, not a
// bug (spec §9 design notes).
func (e *Election) ApplyPreferentialVoting() []string {
	e.open = false
	maxLen := e.longestBallot()
	total := len(e.ballots)

	for round := 0; round < maxRounds; round++ {
		counts := e.allocationCounts()

		max := -1
		var maxSet []string
		min := -1
		var minCand string
		haveMin := false
		for c, n := range counts {
			if n > max {
				max = n
				maxSet = []string{c}
			} else if n == max {
				maxSet = append(maxSet, c)
			}
			if n > 0 && (!haveMin || n < min) {
				min = n
				minCand = c
				haveMin = true
			}
		}

		if total > 0 && max*2 > total {
			sort.Strings(maxSet)
			return maxSet
		}
		if !haveMin || min >= max {
			sort.Strings(maxSet)
			return maxSet
		}
		if round >= maxLen {
			sort.Strings(maxSet)
			return maxSet
		}

		// Eliminate minCand: reassign its ballots to the next
		// preference still standing as a candidate; drop ballots
		// that run out of preferences.
		losers := e.allocation[minCand]
		voters := make([]string, 0, len(losers))
		for v := range losers {
			voters = append(voters, v)
		}
		sort.Strings(voters)
		for _, v := range voters {
			b := e.ballots[v]
			e.deallocate(b)
			b.cursor++
			for b.cursor < len(b.prefs) {
				if _, ok := e.candidates[b.prefs[b.cursor]]; ok {
					break
				}
				b.cursor++
			}
			if b.cursor >= len(b.prefs) {
				delete(e.ballots, v)
				continue
			}
			e.allocate(b)
		}
	}

	counts := e.allocationCounts()
	max := 0
	var maxSet []string
	for c, n := range counts {
		if n > max {
			max = n
			maxSet = []string{c}
		} else if n == max && n > 0 {
			maxSet = append(maxSet, c)
		}
	}
	sort.Strings(maxSet)
	return maxSet
}

// Reset clears all ballots and reopens the election. Rosters are
// untouched.
func (e *Election) Reset() {
	e.ballots = make(map[string]*ballot)
	for c := range e.candidates {
		e.allocation[c] = make(map[string]struct{})
	}
	e.open = true
}

func (e *Election) Open() bool { return e.open }

func (e *Election) Candidates() []string {
	out := make([]string, 0, len(e.candidates))
	for c := range e.candidates {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (e *Election) Voters() []string {
	out := make([]string, 0, len(e.voters))
	for v := range e.voters {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
