// Configuration specification and lifecycle management.
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

// Package conf holds the process-wide configuration and the
// Manager lifecycle that cmd/server uses to start and stop every
// long-running component (transport listeners, the HTTP server, the
// Supervisor) together.
package conf

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go-gw/internal/glog"
)

// TCPConf mirrors the teacher's TCPConf: the raw-TCP transport is
// independently enabled/disabled and configured.
type TCPConf struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    uint   `toml:"port"`
}

func (t TCPConf) Addr() string { return fmt.Sprintf("%s:%d", t.Host, t.Port) }

// WebConf configures the HTTP login/cookie-session/WebSocket
// boundary.
type WebConf struct {
	Enabled   bool   `toml:"enabled"`
	Host      string `toml:"host"`
	Port      uint   `toml:"port"`
	Websocket bool   `toml:"websocket"`

	// SessionKey authenticates the gorilla/sessions cookie store.
	// Left empty, a random key is generated at startup (sessions
	// then do not survive a restart), mirroring the PRIVATE_KEY
	// environment-variable convention of the original relay server.
	SessionKey string `toml:"session_key"`
}

func (w WebConf) Addr() string { return fmt.Sprintf("%s:%d", w.Host, w.Port) }

// GameConf carries the default new-game configuration; per-game
// values may still be changed by the host through conf_game while
// the game is in phase Init.
type GameConf struct {
	TurnTimeSecs     uint `toml:"turn_time_secs"`
	MaxPlayers       uint `toml:"max_players"`
	BoardSize        uint `toml:"board_size"`
	InitActionPoints uint `toml:"init_action_points"`
	InitLives        uint `toml:"init_lives"`
	InitRange        uint `toml:"init_range"`
}

// Conf is the root configuration object, decoded from TOML and
// overridable by flags and environment variables (see cli.go).
type Conf struct {
	Debug bool     `toml:"debug"`
	TCP   TCPConf  `toml:"tcp"`
	Web   WebConf  `toml:"web"`
	Game  GameConf `toml:"game"`

	man []Manager
	run bool
}

// Default returns the configuration this server ships with absent
// any file, flag or environment override.
func Default() *Conf {
	return &Conf{
		TCP: TCPConf{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    2671,
		},
		Web: WebConf{
			Enabled:   true,
			Host:      "0.0.0.0",
			Port:      8080,
			Websocket: true,
		},
		Game: GameConf{
			TurnTimeSecs:     30,
			MaxPlayers:       8,
			BoardSize:        10,
			InitActionPoints: 1,
			InitLives:        3,
			InitRange:        2,
		},
	}
}

// Manager is anything with a start/stop lifecycle that cmd/server
// brings up together and tears down together on interrupt, exactly
// the teacher's conf/manage.go Manager interface.
type Manager interface {
	fmt.Stringer
	Start()
	Shutdown()
}

// Register adds m to the set of managers Run starts and stops. Must
// be called before Run.
func (c *Conf) Register(m Manager) {
	if c.run {
		panic(fmt.Sprintf("late register: %s", m))
	}
	c.man = append(c.man, m)
}

// Run starts every registered manager and blocks until SIGINT, then
// shuts every manager down in the reverse order they were started.
func (c *Conf) Run(ctx context.Context) {
	for _, m := range c.man {
		glog.Debug.Printf("starting %s", m)
		m.Start()
	}
	c.run = true

	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	select {
	case <-intr:
		glog.Log.Println("caught interrupt")
	case <-ctx.Done():
		glog.Log.Println("context cancelled")
	}

	glog.Log.Println("shutting down managers")
	for i := len(c.man) - 1; i >= 0; i-- {
		m := c.man[i]
		glog.Debug.Printf("shutting %s down", m)
		m.Shutdown()
	}
}
