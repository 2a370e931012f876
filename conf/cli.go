// Command-line and environment-variable overrides, grounded on
// Seednode-partybox's cobra/pflag/viper wiring.
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

package conf

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultConfigFile = "go-gw.toml"

// Flags holds the values pflag parses into directly; ParseFlags then
// reconciles them onto a *Conf loaded from file.
type Flags struct {
	ConfigFile string
	Debug      bool
	DumpConfig bool

	TCPPort uint
	WebPort uint
	NoTCP   bool
	NoWeb   bool
}

// RegisterFlags wires fs the same way Seednode-partybox's newCmd
// does: StringVar/BoolVar/UintVar calls bound directly into the
// struct, normalized so "_" and "-" are interchangeable, and bound
// into viper for GW_-prefixed environment overrides.
func RegisterFlags(fs *pflag.FlagSet, f *Flags) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&f.ConfigFile, "conf", defaultConfigFile, "path to the TOML configuration file (env: GW_CONF)")
	fs.BoolVar(&f.Debug, "debug", false, "enable debug logging (env: GW_DEBUG)")
	fs.BoolVar(&f.DumpConfig, "dump-config", false, "print the effective configuration as TOML and exit")
	fs.UintVar(&f.TCPPort, "tcp-port", 0, "override the raw-TCP listen port (env: GW_TCP_PORT)")
	fs.UintVar(&f.WebPort, "web-port", 0, "override the HTTP listen port (env: GW_WEB_PORT)")
	fs.BoolVar(&f.NoTCP, "no-tcp", false, "disable the raw-TCP transport (env: GW_NO_TCP)")
	fs.BoolVar(&f.NoWeb, "no-web", false, "disable the HTTP/WebSocket transport (env: GW_NO_WEB)")

	fs.VisitAll(func(fl *pflag.Flag) {
		_ = v.BindPFlag(fl.Name, fl)
		_ = v.BindEnv(fl.Name)
		if !fl.Changed && v.IsSet(fl.Name) {
			_ = fs.Set(fl.Name, fmt.Sprintf("%v", v.Get(fl.Name)))
		}
	})

	return v
}

// Resolve loads the TOML file named by f.ConfigFile and applies the
// flag overrides on top of it.
func Resolve(f *Flags) (*Conf, error) {
	c, err := Load(f.ConfigFile, f.ConfigFile == defaultConfigFile)
	if err != nil {
		return nil, err
	}

	c.Debug = c.Debug || f.Debug
	if f.TCPPort != 0 {
		c.TCP.Port = f.TCPPort
	}
	if f.WebPort != 0 {
		c.Web.Port = f.WebPort
	}
	if f.NoTCP {
		c.TCP.Enabled = false
	}
	if f.NoWeb {
		c.Web.Enabled = false
	}
	return c, nil
}
