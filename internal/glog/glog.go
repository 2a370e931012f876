// Shared logging
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

// Package glog holds the two loggers shared across the whole
// process: Debug, silent unless explicitly enabled, and Log, the
// operational logger every manager writes to.
package glog

import (
	"io"
	"log"
	"os"
)

var Debug = log.New(io.Discard, "[debug] ", log.Ltime|log.Lshortfile|log.Lmicroseconds)

var Log = log.New(os.Stderr, "", log.Ltime|log.Ldate)

// Enable redirects Debug to w, used once at startup when -debug is set.
func Enable(w io.Writer) {
	Debug.SetOutput(w)
}
