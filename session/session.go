// The session registry: binds user identities to outbound delivery
// endpoints and arbitrates conflicting sessions, per spec §4.4.
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

// Package session implements the Session Registry. It is exclusively
// owned and called by the supervisor package's single-writer loop; it
// holds no lock of its own (spec §5's "single-writer" concurrency
// model makes one unnecessary, the same way queue.go's queueManager
// needs no lock around its own maps).
package session

import (
	"crypto/rand"

	"go-gw/gw"
	"go-gw/internal/glog"
)

// Endpoint is an outbound delivery target: a client connection able
// to receive wire frames. Key distinguishes one physical connection
// from another so the registry can tell "same endpoint reconnecting"
// from "a different connection claiming the same user".
type Endpoint interface {
	Key() string
	Send(frame string)
}

type user struct {
	password string
	endpoint Endpoint
	token    string
}

// Registry binds user_id to (password, current endpoint, current
// verification token).
type Registry struct {
	users map[string]*user
}

func New() *Registry {
	return &Registry{users: make(map[string]*user)}
}

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// newToken mints the short random verification token minted on every
// login, grounded on common.rs's gen_rng_string. crypto/rand is used
// rather than math/rand, strengthening but not changing the behavior
// of the original's thread-local PRNG: this token gates which
// endpoint is authoritative for a user, so it should not be
// predictable.
func newToken() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	out := make([]byte, 4)
	for i, b := range buf {
		out[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(out)
}

// ConnectResult is what Connect reports back to the caller.
type ConnectResult struct {
	Token string
	Alert string
}

// Connect creates the user on first login, or checks the password on
// subsequent ones. If endpoint is non-nil, it becomes the user's
// bound endpoint (replacing and logging out any prior one) and a
// fresh token is minted; a bare credential check (the HTTP login
// boundary, spec §6) passes a nil endpoint and gets no token.
func (r *Registry) Connect(userID, password string, endpoint Endpoint) (ConnectResult, error) {
	u, exists := r.users[userID]
	if !exists {
		u = &user{password: password}
		r.users[userID] = u
	} else if u.password != password {
		return ConnectResult{}, gw.NewError(gw.AuthFail, "login", "password does not match")
	}

	alert := "user exists"
	if !exists {
		alert = "user created"
	}

	if endpoint == nil {
		return ConnectResult{Alert: alert}, nil
	}

	old := u.endpoint
	u.endpoint = endpoint
	token := newToken()
	u.token = token
	if old != nil && old.Key() != endpoint.Key() {
		old.Send("/logout " + userID)
	}
	return ConnectResult{Token: token, Alert: alert}, nil
}

// VerifyOutcome tells the caller what, if anything, it needs to do in
// response to a /verify frame.
type VerifyOutcome int

const (
	VerifyAccepted VerifyOutcome = iota
	VerifyAcceptedNewSession
	VerifyRejected
)

// VerifySession arbitrates a reconnecting client, per spec §4.4. It
// is the one place a stale session is told to log out instead of
// silently continuing to believe it owns the user's endpoint.
func (r *Registry) VerifySession(userID string, endpoint Endpoint, token string) VerifyOutcome {
	if userID != "" {
		if u, ok := r.users[userID]; ok && u.token == token {
			if u.endpoint != nil && u.endpoint.Key() == endpoint.Key() {
				return VerifyAccepted
			}
			u.endpoint = endpoint
			endpoint.Send("/alert new session")
			return VerifyAcceptedNewSession
		}
	}
	endpoint.Send("/logout " + userID)
	return VerifyRejected
}

// Disconnect removes the user's bound endpoint; the user record and
// password survive so they can reconnect.
func (r *Registry) Disconnect(userID string) {
	if u, ok := r.users[userID]; ok {
		u.endpoint = nil
	}
}

// SendUser is a best-effort, fire-and-forget delivery: failures are
// logged and swallowed, never propagated to the caller, matching
// relay_server.rs's do_send_log.
func (r *Registry) SendUser(userID, frame string) {
	u, ok := r.users[userID]
	if !ok || u.endpoint == nil {
		glog.Debug.Printf("send to %s dropped: no endpoint", userID)
		return
	}
	u.endpoint.Send(frame)
}

func (r *Registry) SendAll(userIDs []string, frame string) {
	for _, id := range userIDs {
		r.SendUser(id, frame)
	}
}

// Endpoint returns the user's currently bound endpoint, if any.
func (r *Registry) Endpoint(userID string) (Endpoint, bool) {
	u, ok := r.users[userID]
	if !ok || u.endpoint == nil {
		return nil, false
	}
	return u.endpoint, true
}
