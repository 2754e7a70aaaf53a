/*
NAME
  tables.go

DESCRIPTION
  tables.go holds the process-wide immutable tables used throughout the
  ATRAC1 pipeline: the scale-factor table, the BFU start/length tables, the
  sine window, and the bit allocator's spreading constants (the QMF
  prototype filter is built in qmf.go). All are computed once at package init and shared without
  locking, per the module's resource model.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package atrac1

import (
	"math"

	"gonum.org/v1/gonum/dsp/window"
)

// MaxScale is the scaler's hard clamp on the magnitude of any coefficient
// fed into scaleBlock (see atrac_scale.cpp's MAX_SCALE).
const MaxScale = 65536

// numScaleFactors is the size of the scale-factor table (6-bit index).
const numScaleFactors = 64

// scaleTable is generated, not transcribed: the exact 64 published ATRAC1
// scale-factor literals aren't reproducible with confidence offline, so the
// table is built from two documented endpoints with geometric spacing in
// between. The top endpoint is MaxScale, not 1.0: MDCT coefficients arrive
// at the scaler in the PCM's signed 16-bit range (§3, codec/pcm.ToFloat64),
// not normalized to [-1,1], so a table topping out at 1.0 would make
// scaleFactorIndex saturate on every non-silent block. Mirrors
// atrac_scale.cpp's ScaleTable, which spans up toward MAX_SCALE for the same
// reason. This keeps the table strictly increasing and internally
// consistent, which is all the round trip tests in this package require;
// bit-exact interop with a reference MiniDisc decoder is explicitly out of
// scope (spec Non-goals).
var scaleTable [numScaleFactors]float64

func init() {
	const first = 0.0000305 // ~= 1/32768
	const last = MaxScale
	ratio := math.Pow(last/first, 1.0/float64(numScaleFactors-1))
	v := first
	for i := 0; i < numScaleFactors; i++ {
		scaleTable[i] = v
		v *= ratio
	}
	scaleTable[numScaleFactors-1] = last
}

// ScaleFactor returns the scale-factor table entry for index idx.
func ScaleFactor(idx int) float64 {
	return scaleTable[idx]
}

// scaleFactorIndex returns the index of the smallest table entry that is
// >= v, tie-breaking on the first qualifying entry (table order), per the
// Scaler's §4.5 contract. Callers guarantee v <= MaxScale.
func scaleFactorIndex(v float64) int {
	for i, s := range scaleTable {
		if s >= v {
			return i
		}
	}
	return numScaleFactors - 1
}

// sineWindow is the 32-sample window used both for the MDCT's 32-sample
// analysis overlap and the 16-sample synthesis vector_fmul_window.
var sineWindow [32]float64

func init() {
	for i := range sineWindow {
		sineWindow[i] = math.Sin((float64(i) + 0.5) * math.Pi / 64)
	}
}

// bfuRange describes one Block Floating Unit's position within a band's
// slice of the 512-coefficient spectral frame (band-relative offsets).
type bfuRange struct {
	start, length int
}

// Per spec §3: 52 BFUs total, grouped 20 (low) / 16 (mid) / 16 (hi), with
// independent start/length tables for long and short block modes. Real
// widths aren't reproduced here with confidence (see scaleTable); instead
// each band's BFUs are built from a documented, self-consistent width
// pattern that exactly partitions the band (verified in tables_test.go):
// narrower BFUs at the low end of the band, wider toward the top, which is
// the general shape real perceptual BFU partitions use. In short mode, BFU
// boundaries never cross a 32-coefficient short-block boundary, since each
// short block carries its own scale factor and word length.
const (
	lowBFUs = 20
	midBFUs = 16
	hiBFUs  = 16
	numBFUs = lowBFUs + midBFUs + hiBFUs
)

var (
	longBFURanges  [numBFUs]bfuRange // Band-relative, long (single-block) mode.
	shortBFURanges [numBFUs]bfuRange // Band-relative, short (multi-block) mode.
	bfuBand        [numBFUs]int      // 0=low, 1=mid, 2=hi.
)

func init() {
	idx := 0
	fillLong := func(widths []int) {
		pos := 0
		for _, w := range widths {
			longBFURanges[idx] = bfuRange{pos, w}
			idx++
			pos += w
		}
	}
	// Low band, long mode: 12 BFUs of 4 + 8 BFUs of 10 = 128.
	widths := make([]int, 0, lowBFUs)
	for i := 0; i < 12; i++ {
		widths = append(widths, 4)
	}
	for i := 0; i < 8; i++ {
		widths = append(widths, 10)
	}
	fillLong(widths)

	// Mid band, long mode: 8 BFUs of 4 + 8 BFUs of 12 = 128.
	widths = widths[:0]
	for i := 0; i < 8; i++ {
		widths = append(widths, 4)
	}
	for i := 0; i < 8; i++ {
		widths = append(widths, 12)
	}
	fillLong(widths)

	// Hi band, long mode: 8 BFUs of 8 + 8 BFUs of 24 = 256.
	widths = widths[:0]
	for i := 0; i < 8; i++ {
		widths = append(widths, 8)
	}
	for i := 0; i < 8; i++ {
		widths = append(widths, 24)
	}
	fillLong(widths)

	for i := 0; i < lowBFUs; i++ {
		bfuBand[i] = 0
	}
	for i := lowBFUs; i < lowBFUs+midBFUs; i++ {
		bfuBand[i] = 1
	}
	for i := lowBFUs + midBFUs; i < numBFUs; i++ {
		bfuBand[i] = 2
	}

	// Short mode: per band, BFUs are distributed evenly across the band's
	// short sub-blocks (4 sub-blocks for low/mid, 8 for hi), each
	// sub-block spanning 32 coefficients.
	fillShort := func(startIdx, nBFU, nSubBlocks int, perSubBlockWidths []int) {
		bfuPerSub := nBFU / nSubBlocks
		k := startIdx
		for sb := 0; sb < nSubBlocks; sb++ {
			pos := sb * 32
			for i := 0; i < bfuPerSub; i++ {
				w := perSubBlockWidths[i]
				shortBFURanges[k] = bfuRange{pos, w}
				k++
				pos += w
			}
		}
	}
	fillShort(0, lowBFUs, 4, []int{4, 4, 8, 8, 8})
	fillShort(lowBFUs, midBFUs, 4, []int{4, 8, 8, 12})
	fillShort(lowBFUs+midBFUs, hiBFUs, 8, []int{12, 20})
}

// bandBFUBounds returns the [start, end) BFU index range for band b (0, 1,
// 2 for low, mid, hi).
func bandBFUBounds(b int) (int, int) {
	switch b {
	case 0:
		return 0, lowBFUs
	case 1:
		return lowBFUs, lowBFUs + midBFUs
	default:
		return lowBFUs + midBFUs, numBFUs
	}
}

// bandOffset returns the band's starting offset within the 512-coefficient
// spectral frame.
func bandOffset(b int) int {
	switch b {
	case 0:
		return 0
	case 1:
		return 128
	default:
		return 256
	}
}

// bfuCountPresets is the 8-value set of usable-BFU counts selectable by
// bfuIdxConst (0 = adaptive) or searched over by the bit allocator. Bounded
// to 8 entries so the packed frame's BFU-count field can stay at its
// documented 3-bit width (main.cpp's bfuIdxConst range, 1..8, confirms the
// preset set is meant to be 8-valued, not 9).
var bfuCountPresets = [8]int{20, 24, 28, 32, 36, 40, 44, 48}

// spreadTable is the per-BFU masking offset (in the same log-domain units as
// the scale factor's log) used by the bit allocator's importance score. As
// with the scale table, the published per-BFU constants aren't reproduced
// from memory with confidence; a monotonically increasing spreading curve
// (more headroom given to higher, noise-masking-friendlier BFUs) is used
// instead, built from a Hann taper so that low BFUs (most audible) get the
// least amount of extra masking headroom.
var spreadTable [numBFUs]float64

func init() {
	// The rising first half of a 2*numBFUs-point Hann window.
	taper := make([]float64, 2*numBFUs)
	for i := range taper {
		taper[i] = 1
	}
	taper = window.Hann(taper)
	for i := range spreadTable {
		spreadTable[i] = 4.0 * taper[i]
	}
}
