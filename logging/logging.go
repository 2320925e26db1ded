/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package logging configures the zerolog logger shared by recordkit packages.
package logging

import (
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger zerolog.Logger
	once   sync.Once
)

// L returns the process logger, building it on first use.
func L() *zerolog.Logger {
	once.Do(func() {
		logger = New(os.Stdout)
	})
	return &logger
}

// SetLogger replaces the process logger.
func SetLogger(l zerolog.Logger) {
	once.Do(func() {})
	logger = l
}

// New builds a JSON logger writing to out. Entries carry the calling
// file:line and function. PRETTY=1 switches to console
// output on stderr and DEBUG=1 lowers the level to debug.
func New(out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"
	zerolog.CallerMarshalFunc = callerName

	l := zerolog.New(out).With().Timestamp().Caller().Logger()

	if os.Getenv("PRETTY") == "1" {
		l = l.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if os.Getenv("DEBUG") == "1" {
		l = l.Level(zerolog.DebugLevel)
	} else {
		l = l.Level(zerolog.InfoLevel)
	}
	return l
}

func callerName(pc uintptr, file string, line int) string {
	function := ""
	if fun := runtime.FuncForPC(pc); fun != nil {
		name := fun.Name()
		if slash := strings.LastIndex(name, "/"); slash > 0 {
			name = name[slash+1:]
		}
		function = " " + name + "()"
	}
	return file + ":" + strconv.Itoa(line) + function
}
