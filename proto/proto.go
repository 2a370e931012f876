// The text-frame wire protocol: "/<cmd> <json-payload>" lines, in
// both directions, per spec §6.
//
// Copyright (c) 2021, 2022, 2023  Philip Kaludercic
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

// Package proto frames and parses the "/cmd {json}" lines exchanged
// with clients. It replaces the teacher's "id[@ref] cmd arg..."
// tokenizer (proto/proto.go in the teacher) with spec §6's simpler
// framing, but keeps its defensive, allocation-light line handling.
package proto

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformed is returned by Parse when a line is not "/cmd" or
// "/cmd <payload>".
var ErrMalformed = errors.New("malformed frame")

// Frame is one decoded inbound or outbound line.
type Frame struct {
	Cmd     string
	Payload json.RawMessage // nil if the frame carried no payload
}

// Parse splits a raw line into a command and its optional JSON
// payload. It does not validate the payload's shape; callers
// unmarshal into the type they expect for Cmd.
func Parse(line string) (Frame, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) == 0 || line[0] != '/' {
		return Frame{}, ErrMalformed
	}
	line = line[1:]

	sp := strings.IndexByte(line, ' ')
	if sp == -1 {
		return Frame{Cmd: line}, nil
	}
	cmd := line[:sp]
	payload := strings.TrimLeft(line[sp+1:], " ")
	if cmd == "" {
		return Frame{}, ErrMalformed
	}
	return Frame{Cmd: cmd, Payload: json.RawMessage(payload)}, nil
}

// Encode renders an outbound frame. payload may be nil for commands
// with no arguments.
func Encode(cmd string, payload any) (string, error) {
	if payload == nil {
		return "/" + cmd, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return "/" + cmd + " " + string(b), nil
}

// MustEncode panics on a marshal failure. Every payload type passed
// to it in this repository is plain data (structs of strings, ints,
// maps, slices) that cannot fail to marshal, so this is only ever a
// backstop against a future mistake, not a path exercised in
// practice.
func MustEncode(cmd string, payload any) string {
	f, err := Encode(cmd, payload)
	if err != nil {
		panic(err)
	}
	return f
}

// EncodeError renders the "/error <context>: <text>" frame of
// spec §7.
func EncodeError(context, text string) string {
	return "/error " + context + ": " + text
}
