/*
NAME
  config.go

DESCRIPTION
  config.go defines the Config recognized by the core pipeline (§6) and
  its validation.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package atrac1

import "github.com/ausocean/utils/logging"

// WindowMode selects how a frame's block-size decision is made.
type WindowMode int

const (
	// WindowAuto runs the transient detector each frame.
	WindowAuto WindowMode = iota
	// WindowForced honors Config.WindowMask unconditionally, bypassing the
	// transient detector (the CLI's --notransient[=mask]).
	WindowForced
)

// Log is the logging function signature the core accepts, matching the
// convention used elsewhere in this module: a level, a message, and
// optional structured key/value pairs.
type Log func(lvl int8, msg string, args ...interface{})

// Config is the core pipeline's configuration (§6).
type Config struct {
	// Channels is the number of interleaved PCM channels (1 or 2).
	Channels int

	// BFUIdxConst is 0 for adaptive BFU-count search, or 1..8 to fix the
	// count to one of the 8 presets (bfuCountPresets[BFUIdxConst-1]).
	BFUIdxConst int
	// FastBFUNumSearch enables binary-search BFU-count selection.
	FastBFUNumSearch bool

	// WindowMode selects AUTO (run the transient detector) or FORCED
	// (always honor WindowMask).
	WindowMode WindowMode
	// WindowMask forces short window on low/mid/hi (bits 0,1,2) when
	// WindowMode is WindowForced.
	WindowMask uint8

	// Log receives diagnostic and error messages; if nil, logging is a
	// no-op.
	Log Log
}

// DefaultConfig returns a Config with adaptive BFU search, AUTO window
// mode, and no-op logging; single channel.
func DefaultConfig() Config {
	return Config{
		Channels:   1,
		WindowMode: WindowAuto,
		Log:        func(int8, string, ...interface{}) {},
	}
}

// Validate checks the configuration's internal consistency (§7 "Argument
// range error"), returning a *ConfigError describing the first problem
// found.
func (c Config) Validate() error {
	if c.Channels != 1 && c.Channels != 2 {
		return &ConfigError{Field: "Channels", Reason: "must be 1 or 2"}
	}
	if c.BFUIdxConst < 0 || c.BFUIdxConst > 8 {
		return &ConfigError{Field: "BFUIdxConst", Reason: "must be in [0, 8]"}
	}
	if c.WindowMode != WindowAuto && c.WindowMode != WindowForced {
		return &ConfigError{Field: "WindowMode", Reason: "unrecognized window mode"}
	}
	if c.WindowMask > 7 {
		return &ConfigError{Field: "WindowMask", Reason: "must fit in 3 bits"}
	}
	return nil
}

func (c Config) logger() Log {
	if c.Log != nil {
		return c.Log
	}
	return func(int8, string, ...interface{}) {}
}

// bitAllocConfig projects the fields of Config the bit allocator needs.
func (c Config) bitAllocConfig() BitAllocConfig {
	return BitAllocConfig{BFUIdxConst: c.BFUIdxConst, FastSearch: c.FastBFUNumSearch}
}

// level aliases for callers that don't want to import logging directly
// just to log from a driver loop.
const (
	LogDebug = logging.Debug
	LogInfo  = logging.Info
	LogWarn  = logging.Warning
	LogError = logging.Error
)
