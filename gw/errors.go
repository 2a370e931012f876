// Error taxonomy shared by every core component.
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

import "fmt"

// ErrKind classifies why a command or action was rejected.
type ErrKind int

const (
	BadRequest ErrKind = iota
	NotAuthenticated
	AuthFail
	Conflict
	NotFound
	IllegalState
	RuleViolation
	Serialization
)

func (k ErrKind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case NotAuthenticated:
		return "not_authenticated"
	case AuthFail:
		return "auth_fail"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case IllegalState:
		return "illegal_state"
	case RuleViolation:
		return "rule_violation"
	case Serialization:
		return "serialization"
	default:
		return "unknown"
	}
}

// Error is the error type every handler in this repository returns.
// Context identifies the operation for the "/error <context>: <text>"
// wire frame (spec §7); it never carries the raw Go error text to a
// client, only Text.
type Error struct {
	Kind    ErrKind
	Context string
	Text    string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Context == "" {
		return e.Text
	}
	return fmt.Sprintf("%s: %s", e.Context, e.Text)
}

func (e *Error) Unwrap() error { return e.Wrapped }

func NewError(kind ErrKind, context, text string) *Error {
	return &Error{Kind: kind, Context: context, Text: text}
}

func Wrap(kind ErrKind, context string, err error) *Error {
	return &Error{Kind: kind, Context: context, Text: err.Error(), Wrapped: err}
}
