// Configuration file loading and dumping.
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

package conf

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and decodes the TOML file at path over top of Default.
// A missing file at the default path is not an error; a missing file
// at an explicitly-requested path is.
func Load(path string, isDefaultPath bool) (*Conf, error) {
	c := Default()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && isDefaultPath {
			return c, nil
		}
		return nil, err
	}
	defer file.Close()

	if _, err := toml.NewDecoder(file).Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Dump serializes c as TOML, for the --dump-config flag.
func (c *Conf) Dump(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
