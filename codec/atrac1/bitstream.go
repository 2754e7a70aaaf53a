/*
NAME
  bitstream.go

DESCRIPTION
  bitstream.go packs and unpacks the 212-byte ATRAC1 compressed frame:
  BSM fields, BFU-count field, per-BFU word lengths and scale-factor
  indices, then mantissas packed at their declared word lengths (§3, §4.7).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package atrac1

import (
	"github.com/openatrac/atrac1av/codec/internal/bitio"
)

// packFrame writes one channel's frame: mode is the BSM descriptor,
// bfuCountIdx is the index into bfuCountPresets chosen by the bit
// allocator, wl holds the word length for every BFU (0 for unused ones),
// and blocks holds every BFU's scale-factor index and quantized
// mantissas.
func packFrame(mode BlockSizeMode, bfuCountIdx int, wl [numBFUs]int, blocks [numBFUs]scaledBlock) []byte {
	w := bitio.NewWriter(FrameSize)

	// A write error here means the allocator handed us a frame that
	// overflows FrameSize: a bit-budget overflow is an internal invariant
	// violation (§7), not a condition the encoder should handle gracefully.
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	for band := 0; band < NumQMF; band++ {
		must(w.WriteBits(uint64(mode.LogCount[band]), 2))
	}
	must(w.WriteBits(0, 2)) // Pad BSM field to a byte boundary.

	must(w.WriteBits(uint64(bfuCountIdx), bfuCountBits))

	for i := 0; i < numBFUs; i++ {
		must(w.WriteBits(uint64(wordLengthIndex(wl[i])), wordLenBits))
	}
	for i := 0; i < numBFUs; i++ {
		must(w.WriteBits(uint64(blocks[i].Index), 6))
	}

	for i := 0; i < numBFUs; i++ {
		n := wl[i]
		if n == 0 {
			continue
		}
		maxMag := uint64(1<<(uint(n)-1)) - 1
		for _, v := range blocks[i].Values {
			m := quantizeMantissa(v, n, maxMag)
			must(w.WriteBits(encodeSigned(m, n), n))
		}
	}

	out := make([]byte, FrameSize)
	copy(out, w.Bytes())
	return out
}

// unpackFrame inverts packFrame, validating that the declared word
// lengths fit within the frame's mantissa budget before reading any
// mantissa bits.
func unpackFrame(frame []byte, mode BlockSizeMode) (blocks [numBFUs]scaledBlock, err error) {
	if len(frame) != FrameSize {
		return blocks, &MalformedFrameError{Reason: "frame is not FrameSize bytes"}
	}
	r := bitio.NewReader(frame)

	for band := 0; band < NumQMF; band++ {
		if _, rerr := r.ReadBits(2); rerr != nil {
			return blocks, &MalformedFrameError{Reason: "truncated BSM field"}
		}
	}
	if _, rerr := r.ReadBits(2); rerr != nil {
		return blocks, &MalformedFrameError{Reason: "truncated BSM padding"}
	}

	if _, rerr := r.ReadBits(bfuCountBits); rerr != nil {
		return blocks, &MalformedFrameError{Reason: "truncated BFU count field"}
	}

	var wl [numBFUs]int
	for i := 0; i < numBFUs; i++ {
		v, rerr := r.ReadBits(wordLenBits)
		if rerr != nil {
			return blocks, &MalformedFrameError{Reason: "truncated word-length field"}
		}
		if int(v) >= len(wordLengths) {
			return blocks, &MalformedFrameError{Reason: "word-length index out of range"}
		}
		wl[i] = wordLengths[v]
	}

	var scaleIdx [numBFUs]int
	for i := 0; i < numBFUs; i++ {
		v, rerr := r.ReadBits(6)
		if rerr != nil {
			return blocks, &MalformedFrameError{Reason: "truncated scale-factor field"}
		}
		scaleIdx[i] = int(v)
	}

	needed := 0
	for i := 0; i < numBFUs; i++ {
		if wl[i] == 0 {
			continue
		}
		if wl[i] == 1 || wl[i] > 16 {
			return blocks, &MalformedFrameError{Reason: "word length out of range"}
		}
		needed += wl[i] * bfuCoeffCount(i, mode)
	}
	if needed > r.BitsLeft() {
		return blocks, &MalformedFrameError{Reason: "declared mantissa bits exceed frame capacity"}
	}

	for i := 0; i < numBFUs; i++ {
		n := bfuCoeffCount(i, mode)
		blocks[i] = scaledBlock{Index: scaleIdx[i], Values: make([]float64, n)}
		if wl[i] == 0 {
			continue
		}
		maxMag := uint64(1<<(uint(wl[i])-1)) - 1
		for j := 0; j < n; j++ {
			raw, rerr := r.ReadBits(wl[i])
			if rerr != nil {
				return blocks, &MalformedFrameError{Reason: "truncated mantissa data"}
			}
			m := decodeSigned(raw, wl[i])
			blocks[i].Values[j] = float64(m) / float64(maxMag)
		}
	}
	return blocks, nil
}

// quantizeMantissa rounds a normalized coefficient to the nearest integer
// representable at word length n, clamped to the documented
// [-(2^(n-1)-1), +(2^(n-1)-1)] range (§3).
func quantizeMantissa(v float64, n int, maxMag uint64) int64 {
	scaled := v * float64(maxMag)
	m := int64(scaled + 0.5)
	if scaled < 0 {
		m = int64(scaled - 0.5)
	}
	max := int64(maxMag)
	if m > max {
		m = max
	}
	if m < -max {
		m = -max
	}
	return m
}

// encodeSigned packs a signed value using n bits, two's complement.
func encodeSigned(v int64, n int) uint64 {
	mask := uint64(1)<<uint(n) - 1
	return uint64(v) & mask
}

// decodeSigned inverts encodeSigned.
func decodeSigned(raw uint64, n int) int64 {
	signBit := uint64(1) << uint(n-1)
	if raw&signBit != 0 {
		return int64(raw) - int64(1<<uint(n))
	}
	return int64(raw)
}

// ReadBlockSizeMode exposes readBSM for diagnostic callers that need a
// frame's block-size mode without decoding it fully.
func ReadBlockSizeMode(frame []byte) (BlockSizeMode, error) {
	return readBSM(frame)
}

// FrameWordLengths reads a packed frame's per-BFU word-length field,
// returning one entry per BFU (0 for BFUs the allocator left inactive).
// Intended for diagnostic tools; unpackFrame is the path production code
// should use to get an ATRAC1 frame's content.
func FrameWordLengths(frame []byte) ([numBFUs]int, error) {
	var wl [numBFUs]int
	if len(frame) != FrameSize {
		return wl, &MalformedFrameError{Reason: "frame is not FrameSize bytes"}
	}
	r := bitio.NewReader(frame)
	for band := 0; band < NumQMF; band++ {
		if _, err := r.ReadBits(2); err != nil {
			return wl, &MalformedFrameError{Reason: "truncated BSM field"}
		}
	}
	if _, err := r.ReadBits(2); err != nil {
		return wl, &MalformedFrameError{Reason: "truncated BSM padding"}
	}
	if _, err := r.ReadBits(bfuCountBits); err != nil {
		return wl, &MalformedFrameError{Reason: "truncated BFU count field"}
	}
	for i := 0; i < numBFUs; i++ {
		v, err := r.ReadBits(wordLenBits)
		if err != nil {
			return wl, &MalformedFrameError{Reason: "truncated word-length field"}
		}
		if int(v) >= len(wordLengths) {
			return wl, &MalformedFrameError{Reason: "word-length index out of range"}
		}
		wl[i] = wordLengths[v]
	}
	return wl, nil
}

// readBSM reads just the BlockSizeMode from a frame, used by the decoder
// before it knows which BFU range table (long/short) to apply when
// validating and unpacking the rest of the frame.
func readBSM(frame []byte) (BlockSizeMode, error) {
	if len(frame) != FrameSize {
		return BlockSizeMode{}, &MalformedFrameError{Reason: "frame is not FrameSize bytes"}
	}
	r := bitio.NewReader(frame)
	var mode BlockSizeMode
	for band := 0; band < NumQMF; band++ {
		v, err := r.ReadBits(2)
		if err != nil {
			return mode, &MalformedFrameError{Reason: "truncated BSM field"}
		}
		if v > 1 {
			return mode, &MalformedFrameError{Reason: "invalid BSM value"}
		}
		mode.LogCount[band] = uint8(v)
	}
	return mode, nil
}
