/*
NAME
  errors.go

DESCRIPTION
  errors.go defines the structured error kinds the core pipeline can
  return to its driver (§7).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package atrac1

import "fmt"

// MalformedFrameError is returned by unpackFrame (and so by
// Processor.DecodeFrame) when a compressed frame
// declares a bit layout that cannot be satisfied within FrameSize bytes
// (§7 "Malformed frame").
type MalformedFrameError struct {
	Reason string
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("atrac1: malformed frame: %s", e.Reason)
}

// ConfigError is returned by Config.Validate (and so by NewProcessor)
// when a configuration combination
// is out of range (§7 "Argument range error").
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("atrac1: invalid config field %s: %s", e.Field, e.Reason)
}
