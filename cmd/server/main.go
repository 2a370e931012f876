// Entry point: parses configuration, wires the Session Registry,
// Turn Scheduler and Supervisor to the TCP and HTTP transports, and
// blocks until interrupted, mirroring the teacher's main.go.
//
// Copyright (c) 2021, 2023  Philip Kaludercic
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

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go-gw/conf"
	"go-gw/internal/glog"
	"go-gw/sched"
	"go-gw/session"
	"go-gw/supervisor"
	"go-gw/transport"
	"go-gw/web"
)

func main() {
	flags := &conf.Flags{}
	cmd := &cobra.Command{
		Use:           "go-gw",
		Short:         "Authoritative server for a realtime, turn-based multiplayer grid game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}
	conf.RegisterFlags(cmd.Flags(), flags)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(flags *conf.Flags) error {
	c, err := conf.Resolve(flags)
	if err != nil {
		return err
	}

	if c.Debug {
		glog.Enable(os.Stderr)
	} else {
		glog.Enable(io.Discard)
	}

	if flags.DumpConfig {
		return c.Dump(os.Stdout)
	}

	reg := session.New()
	scheduler := sched.New()
	sup := supervisor.New(reg, scheduler)

	c.Register(sup)
	c.Register(scheduler)

	if c.TCP.Enabled {
		tcp, err := transport.ListenTCP(c.TCP.Addr(), sup)
		if err != nil {
			return fmt.Errorf("tcp listener: %w", err)
		}
		c.Register(tcp)
	}

	if c.Web.Enabled {
		c.Register(web.New(c.Web, sup))
	}

	c.Run(context.Background())
	return nil
}
