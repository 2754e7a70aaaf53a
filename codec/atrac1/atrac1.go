/*
NAME
  atrac1.go

DESCRIPTION
  atrac1.go holds the core ATRAC1 constants and the BlockSizeMode (BSM)
  type shared across the rest of the package.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package atrac1 implements the ATRAC1 perceptual audio codec's core
// signal-processing and bitstream pipeline: the QMF analysis/synthesis
// bank, the windowed long/short MDCT, the transient detector, the
// block-floating scaler, the bit allocator, and the compressed-frame
// packer/unpacker. WAV/AEA file I/O, CLI parsing, and generic buffering
// are collaborators layered on top; see container/aea and cmd/atrac1.
package atrac1

import "fmt"

// NumSamples is the number of PCM samples processed per channel per frame.
const NumSamples = 512

// NumQMF is the number of QMF bands (low, mid, hi).
const NumQMF = 3

// FrameSize is the size in bytes of one compressed ATRAC1 frame.
const FrameSize = 212

// PCM value range: signed 16-bit range expressed as float64 (§3).
const (
	PCMValueMax = 32767.0
	PCMValueMin = -32768.0
)

// Band indices into the per-channel state and the spectral frame.
const (
	BandLow = 0
	BandMid = 1
	BandHi  = 2
)

// BlockSizeMode is the 3-tuple (logCount[low], logCount[mid], logCount[hi])
// describing, for one frame, whether each band uses a single long MDCT
// (logCount 0) or multiple short MDCTs (logCount 1). See spec.md §3.
type BlockSizeMode struct {
	LogCount [NumQMF]uint8
}

// NewBlockSizeMode constructs a BlockSizeMode from three booleans (true =
// short window). FromMask builds one from a 3-bit mask instead (bit0=low,
// bit1=mid, bit2=hi), matching the CLI's --notransient mask convention (§6).
func NewBlockSizeMode(low, mid, hi bool) BlockSizeMode {
	var b BlockSizeMode
	if low {
		b.LogCount[BandLow] = 1
	}
	if mid {
		b.LogCount[BandMid] = 1
	}
	if hi {
		b.LogCount[BandHi] = 1
	}
	return b
}

// FromMask builds a BlockSizeMode from a 3-bit mask, bit0=low, bit1=mid,
// bit2=hi.
func FromMask(mask uint8) BlockSizeMode {
	return NewBlockSizeMode(mask&1 != 0, mask&2 != 0, mask&4 != 0)
}

// Mask returns the 3-bit mask representation of b.
func (b BlockSizeMode) Mask() uint8 {
	var m uint8
	if b.LogCount[BandLow] != 0 {
		m |= 1
	}
	if b.LogCount[BandMid] != 0 {
		m |= 2
	}
	if b.LogCount[BandHi] != 0 {
		m |= 4
	}
	return m
}

// Short reports whether band is in short-window mode.
func (b BlockSizeMode) Short(band int) bool {
	return b.LogCount[band] != 0
}

// NumBlocks returns the number of MDCT blocks for band (1 for long, 4 for
// short low/mid, 8 for short hi).
func (b BlockSizeMode) NumBlocks(band int) int {
	return numBlocksForBand(band, b.Short(band))
}

// String implements fmt.Stringer for diagnostics.
func (b BlockSizeMode) String() string {
	return fmt.Sprintf("BSM(low=%d,mid=%d,hi=%d)", b.LogCount[0], b.LogCount[1], b.LogCount[2])
}

// bandBufSize is the persistent delay-line size for band (256 for
// low/mid, 512 for hi): double the band's samples-per-frame, with the
// upper half holding the carried-over overlap region (§3).
func bandBufSize(band int) int {
	if band == BandHi {
		return 512
	}
	return 256
}

// bandSamples is the number of new PCM-domain samples produced/consumed
// per frame for band (128 for low/mid, 256 for hi).
func bandSamples(band int) int {
	if band == BandHi {
		return 256
	}
	return 128
}
