/*
NAME
  bitalloc.go

DESCRIPTION
  bitalloc.go implements the bit allocator: selects an effective BFU
  count and distributes the frame's mantissa bit budget across BFUs using
  a perceptual importance score combining signal level and a masking
  spread curve (§4.6).

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
	"sort"

	"gonum.org/v1/gonum/floats"
)

// wordLengths is the ordered set of usable per-BFU quantizer precisions;
// 1 is skipped (between "not transmitted" and the smallest real
// granularity), per §3's {0, 2, 3, ..., 16}.
var wordLengths = []int{0, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

// BitAllocConfig controls the bit allocator's BFU-count selection (§6
// Configuration).
type BitAllocConfig struct {
	// BFUIdxConst is 0 for adaptive search, or 1..8 to fix the BFU count
	// to bfuCountPresets[BFUIdxConst-1].
	BFUIdxConst int
	// FastSearch enables binary-search BFU-count selection instead of a
	// linear scan from the maximum down.
	FastSearch bool
}

const (
	frameTotalBits   = FrameSize * 8
	bsmFieldBits     = 8 // 3x2 BSM bits, byte-aligned with 2 bits padding.
	bfuCountBits     = 3 // Index into the 8-entry bfuCountPresets table (§4.7).
	wordLenBits      = 4 // Index into the 16-entry wordLengths table (§4.7).
	wordLenFieldBits = numBFUs * wordLenBits
	scaleFieldBits   = numBFUs * 6
	// frameBitBudget is what's left over for mantissas after the frame's
	// fixed-size header fields.
	frameBitBudget = frameTotalBits - bsmFieldBits - bfuCountBits - wordLenFieldBits - scaleFieldBits
)

// importance scores each BFU combining the log of its scale factor
// (signal level) with the band's masking/spreading offset (§4.6.2).
func importance(blocks [numBFUs]scaledBlock) [numBFUs]float64 {
	var imp [numBFUs]float64
	for i, b := range blocks {
		level := math.Log2(ScaleFactor(b.Index) + 1e-9)
		imp[i] = level + spreadTable[i]
	}
	return imp
}

// bfuCoeffCount returns the number of coefficients BFU i covers under
// mode.
func bfuCoeffCount(i int, mode BlockSizeMode) int {
	band := bfuBand[i]
	if mode.Short(band) {
		return shortBFURanges[i].length
	}
	return longBFURanges[i].length
}

// nextShorterWordLength returns the usable word length immediately below
// v, or 0 once v is already the smallest non-zero entry.
func nextShorterWordLength(v int) int {
	for i, w := range wordLengths {
		if w == v {
			if i == 0 {
				return 0
			}
			return wordLengths[i-1]
		}
	}
	return 0
}

// wordLengthIndex returns v's index in wordLengths, the value packed into
// the frame's 4-bit word-length field (§3, §4.7). Returns 0 (the "not
// transmitted" entry) if v isn't a usable word length.
func wordLengthIndex(v int) int {
	for i, w := range wordLengths {
		if w == v {
			return i
		}
	}
	return 0
}

// allocate distributes frameBitBudget across the k most significant BFUs
// (by index order, BFUs k..numBFUs-1 are left at word length 0), ranking
// by importance and trimming the least important first when the raw
// allocation doesn't fit. ok reports whether every one of the k BFUs kept
// at least the minimum usable word length (2 bits): if not, k was too
// large for this budget at acceptable quality and the caller should try a
// smaller k.
func allocate(blocks [numBFUs]scaledBlock, k int, mode BlockSizeMode) (wl [numBFUs]int, ok bool) {
	imp := importance(blocks)

	type entry struct {
		idx int
		imp float64
		n   int
	}
	entries := make([]entry, k)
	for i := 0; i < k; i++ {
		entries[i] = entry{idx: i, imp: imp[i], n: bfuCoeffCount(i, mode)}
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].imp > entries[b].imp })

	maxIdx := len(wordLengths) - 1
	for rank, e := range entries {
		frac := 1.0
		if k > 1 {
			frac = 1.0 - float64(rank)/float64(k-1)
		}
		wl[e.idx] = wordLengths[1+int(frac*float64(maxIdx-1)+0.5)]
	}

	bits := make([]float64, len(entries))
	total := func() int {
		for i, e := range entries {
			bits[i] = float64(wl[e.idx] * e.n)
		}
		return int(floats.Sum(bits))
	}

	ok = true
	for i := len(entries) - 1; i >= 0 && total() > frameBitBudget; i-- {
		e := entries[i]
		for total() > frameBitBudget && wl[e.idx] > 0 {
			wl[e.idx] = nextShorterWordLength(wl[e.idx])
		}
		if wl[e.idx] < 2 {
			ok = false
		}
	}
	return wl, ok && total() <= frameBitBudget
}

// selectBFUCount implements §4.6 step 1: either a fixed preset
// (cfg.BFUIdxConst > 0) or a search over the 8-value preset set for the
// largest BFU count that still fits the frame budget at acceptable
// quality.
func selectBFUCount(blocks [numBFUs]scaledBlock, mode BlockSizeMode, cfg BitAllocConfig) (k int, wl [numBFUs]int) {
	presets := bfuCountPresets[:]

	if cfg.BFUIdxConst > 0 && cfg.BFUIdxConst <= len(presets) {
		k = presets[cfg.BFUIdxConst-1]
		wl, _ = allocate(blocks, k, mode)
		return k, wl
	}

	if cfg.FastSearch {
		lo, hi := 0, len(presets)-1
		bestIdx := 0
		bestWL, _ := allocate(blocks, presets[0], mode)
		for lo <= hi {
			mid := (lo + hi) / 2
			candWL, candOK := allocate(blocks, presets[mid], mode)
			if candOK {
				bestIdx = mid
				bestWL = candWL
				lo = mid + 1
			} else {
				hi = mid - 1
			}
		}
		return presets[bestIdx], bestWL
	}

	for i := len(presets) - 1; i >= 0; i-- {
		candWL, candOK := allocate(blocks, presets[i], mode)
		if candOK {
			return presets[i], candWL
		}
	}
	wl, _ = allocate(blocks, presets[0], mode)
	return presets[0], wl
}
