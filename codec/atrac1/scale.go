/*
NAME
  scale.go

DESCRIPTION
  scale.go implements the block-floating quantizer (Scaler): per-BFU,
  finds the smallest scale-factor-table entry at least as large as the
  block's peak magnitude and normalizes the block's coefficients by it
  (§4.5).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package atrac1

import "math"

// scaledBlock is one BFU's scale-factor index plus its normalized
// coefficients, each guaranteed in [-1, 1] (barring the diagnosed
// saturation case).
type scaledBlock struct {
	Index  int
	Values []float64
	// Saturated is set if a normalized value exceeded 1.0 and was
	// clamped; §7 treats this as a diagnostic, not a fatal error.
	Saturated bool
}

// scaleBlock normalizes in by the smallest scale-factor entry >= its peak
// magnitude.
func scaleBlock(in []float64) scaledBlock {
	var maxAbs float64
	for _, v := range in {
		a := math.Abs(v)
		if a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs > MaxScale {
		maxAbs = MaxScale
	}

	idx := scaleFactorIndex(maxAbs)
	factor := ScaleFactor(idx)

	out := scaledBlock{Index: idx, Values: make([]float64, len(in))}
	for i, v := range in {
		sv := v / factor
		if sv > 1.0 {
			sv = 1.0
			out.Saturated = true
		} else if sv < -1.0 {
			sv = -1.0
			out.Saturated = true
		}
		out.Values[i] = sv
	}
	return out
}

// scaleFrame scales every BFU of the 512-coefficient spectral frame,
// using the long or short BFU range table for each band depending on
// mode.
func scaleFrame(specs [NumSamples]float64, mode BlockSizeMode) [numBFUs]scaledBlock {
	var blocks [numBFUs]scaledBlock
	for i := 0; i < numBFUs; i++ {
		band := bfuBand[i]
		r := longBFURanges[i]
		if mode.Short(band) {
			r = shortBFURanges[i]
		}
		off := bandOffset(band) + r.start
		blocks[i] = scaleBlock(specs[off : off+r.length])
	}
	return blocks
}

// dequantBlock inverts scaleBlock: multiplies normalized coefficients
// back up by their scale factor.
func dequantBlock(b scaledBlock) []float64 {
	factor := ScaleFactor(b.Index)
	out := make([]float64, len(b.Values))
	for i, v := range b.Values {
		out[i] = v * factor
	}
	return out
}

// disassembleSpectrum inverts scaleFrame: dequantizes every BFU and
// writes its coefficients back into their band-relative position in the
// 512-coefficient spectral frame.
func disassembleSpectrum(blocks [numBFUs]scaledBlock, mode BlockSizeMode) [NumSamples]float64 {
	var specs [NumSamples]float64
	for i := 0; i < numBFUs; i++ {
		band := bfuBand[i]
		r := longBFURanges[i]
		if mode.Short(band) {
			r = shortBFURanges[i]
		}
		off := bandOffset(band) + r.start
		copy(specs[off:off+r.length], dequantBlock(blocks[i]))
	}
	return specs
}
