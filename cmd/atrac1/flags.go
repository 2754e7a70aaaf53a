/*
NAME
  flags.go

DESCRIPTION
  flags.go defines and validates the atrac1 CLI's command-line flags.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"flag"
	"fmt"
	"strconv"
)

// flags holds the parsed command line for one run of the atrac1 CLI,
// mirroring original_source/src/main.cpp's flag set (§6).
type flags struct {
	encode  bool
	decode  bool
	in      string
	out     string
	bitrate int

	bfuIdxConst int
	bfuIdxFast  bool

	// noTransient is set when --notransient was given at all;
	// transientMask is only meaningful then. The flag always takes a
	// value: --notransient= gives no mask and --notransient=N gives mask
	// N. A bare --notransient takes the next argument as its value.
	noTransient   bool
	transientMask uint8
}

func parseFlags(args []string) (flags, error) {
	fs := flag.NewFlagSet("atrac1", flag.ContinueOnError)
	encode := fs.Bool("e", false, "encode PCM to ATRAC1")
	decode := fs.Bool("d", false, "decode ATRAC1 to PCM")
	in := fs.String("i", "", "input file path")
	out := fs.String("o", "", "output file path")
	bitrate := fs.Int("bitrate", 0, "target bitrate in bits/sec (ATRAC3 only)")
	bfuIdxConst := fs.Int("bfuidxconst", 0, "fix the BFU count to preset N (1..8); 0 is adaptive")
	bfuIdxFast := fs.Bool("bfuidxfast", false, "use binary-search BFU count selection")
	noTransient := fs.String("notransient", "", "disable the transient detector; give = for no mask or =mask (bit0=low,1=mid,2=hi)")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}

	f := flags{
		encode:      *encode,
		decode:      *decode,
		in:          *in,
		out:         *out,
		bitrate:     *bitrate,
		bfuIdxConst: *bfuIdxConst,
		bfuIdxFast:  *bfuIdxFast,
	}

	if wasSet(fs, "notransient") {
		f.noTransient = true
		if *noTransient != "" {
			mask, err := strconv.ParseUint(*noTransient, 10, 8)
			if err != nil {
				return flags{}, fmt.Errorf("invalid --notransient mask %q: %w", *noTransient, err)
			}
			if mask > 7 {
				return flags{}, fmt.Errorf("--notransient mask %d doesn't fit in 3 bits", mask)
			}
			f.transientMask = uint8(mask)
		}
	}

	return f, f.validate()
}

// wasSet reports whether name was actually passed on the command line
// (as opposed to holding its zero value by default).
func wasSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

func (f flags) validate() error {
	if f.encode == f.decode {
		return fmt.Errorf("exactly one of -e or -d must be given")
	}
	if f.in == "" {
		return fmt.Errorf("-i is required")
	}
	if f.out == "" {
		return fmt.Errorf("-o is required")
	}
	if f.bfuIdxConst < 0 || f.bfuIdxConst > 8 {
		return fmt.Errorf("--bfuidxconst must be in [0, 8]")
	}
	return nil
}

func (f flags) String() string {
	mode := "decode"
	if f.encode {
		mode = "encode"
	}
	return fmt.Sprintf("%s %s -> %s", mode, f.in, f.out)
}
