/*
NAME
  window.go

DESCRIPTION
  window.go implements the per-band windowed MDCT/IMDCT stages: the
  analysis side folds each band's new samples and carried-over overlap
  region into MDCT input blocks (one long block, or several short blocks),
  and the synthesis side inverts this with a sine-windowed overlap-add
  (vector_fmul_window).

  The block-building index arithmetic here is ported directly from
  atracdenc's TAtrac1MDCT::Mdct/IMdct (see original_source/src/atrac1denc.cpp)
  rather than re-derived, since the precise offsets are what makes the
  TDAC property hold.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package atrac1

import "github.com/openatrac/atrac1av/codec/internal/mdct"

var (
	mdctShort  *mdct.MDCT // 64-point, short blocks (32 coefficients).
	mdctLong1  *mdct.MDCT // 256-point, long low/mid blocks (128 coefficients).
	mdctLong2  *mdct.MDCT // 512-point, long hi blocks (256 coefficients).
)

func init() {
	var err error
	if mdctShort, err = mdct.New(64, false); err != nil {
		panic(err)
	}
	if mdctLong1, err = mdct.New(256, true); err != nil {
		panic(err)
	}
	if mdctLong2, err = mdct.New(512, true); err != nil {
		panic(err)
	}
}

// numBlocksForBand returns the number of MDCT blocks band splits into: 1
// for long mode, or bandSamples(band)/32 for short mode (4 for low/mid, 8
// for hi), each short block covering 32 coefficients (§3).
func numBlocksForBand(band int, short bool) int {
	if !short {
		return 1
	}
	return bandSamples(band) / 32
}

// swapArray reverses a coefficient block in place: the defined frequency
// reversal applied to mid/hi blocks at the MDCT/spectral-frame boundary
// (§9 "Coefficient ordering quirk").
func swapArray(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// vectorFmulWindow is a direct port of atracdenc's vector_fmul_window: it
// writes a 2*length-sample symmetric windowed overlap-add into dst starting
// at dstOff, combining the tail of the previous block (src0, the first
// `length` elements of the slice passed) with the head of the current
// block (src1, indexed from length-1 down to 0), windowed by win (which
// must have at least 2*length entries; win[length:2*length) pairs with
// win[length-1] downward as win[length+j]).
func vectorFmulWindow(dst []float64, dstOff int, src0, src1, win []float64, length int) {
	for i, j := -length, length-1; i < 0; i, j = i+1, j-1 {
		s0 := src0[length+i]
		s1 := src1[j]
		wi := win[length+i]
		wj := win[length+j]
		dst[dstOff+length+i] = s0*wj - s1*wi
		dst[dstOff+length+j] = s0*wi + s1*wj
	}
}

// mdctEncode performs the analysis-side windowed MDCT for one band,
// writing its contribution into specs (the 512-coefficient spectral
// frame, band-relative offset `pos`). buf is the band's persistent delay
// line (length bandBufSize(band)): buf[:bandSamples(band)] holds the
// frame's new samples (already populated by the QMF split), and
// buf[bandSamples(band):] holds the carried-over overlap tail, updated in
// place for next frame.
func mdctEncode(specs []float64, pos int, buf []float64, band int, short bool) {
	bufSz := bandSamples(band)
	numBlocks := numBlocksForBand(band, short)
	blockSz := bufSz
	winStart := 48
	if band == BandHi {
		winStart = 112
	}
	if short {
		blockSz = 32
		winStart = 0
	}
	multiple := 1.0
	if short && band == BandHi {
		multiple = 2.0
	}

	tmp := make([]float64, 512)
	blockPos := 0
	for k := 0; k < numBlocks; k++ {
		copy(tmp[winStart:winStart+32], buf[bufSz:bufSz+32])
		for i := 0; i < 32; i++ {
			buf[bufSz+i] = sineWindow[i] * buf[blockPos+blockSz-32+i]
			buf[blockPos+blockSz-32+i] = sineWindow[31-i] * buf[blockPos+blockSz-32+i]
		}
		copy(tmp[winStart+32:winStart+32+blockSz], buf[blockPos:blockPos+blockSz])

		var sp []float64
		if !short {
			if band == BandHi {
				sp = mdctLong2.Forward(tmp[:512])
			} else {
				sp = mdctLong1.Forward(tmp[:256])
			}
		} else {
			sp = mdctShort.Forward(tmp[:64])
		}

		for i, v := range sp {
			specs[blockPos+pos+i] = v * multiple
		}
		if band != BandLow {
			swapArray(specs[blockPos+pos : blockPos+pos+len(sp)])
		}
		blockPos += 32
	}
}

// mdctDecode performs the synthesis-side windowed IMDCT for one band,
// reading coefficients from specs (band-relative offset pos) and writing
// reconstructed samples into buf (the band's persistent delay line):
// buf[:bandSamples(band)] receives the newly reconstructed frame, and
// buf[bandSamples(band):] is left holding the overlap tail for next frame.
func mdctDecode(specs []float64, pos int, buf []float64, band int, short bool) {
	bufSz := bandSamples(band)
	numBlocks := numBlocksForBand(band, short)
	blockSz := bufSz
	if short {
		blockSz = 32
	}

	invBuf := make([]float64, 512)
	prevBuf := buf[bufSz*2-16 : bufSz*2]
	start := 0
	specPos := pos
	for block := 0; block < numBlocks; block++ {
		if band != BandLow {
			swapArray(specs[specPos : specPos+blockSz])
		}
		var inv []float64
		if short {
			inv = mdctShort.Inverse(specs[specPos : specPos+blockSz])
		} else if bufSz == 128 {
			inv = mdctLong1.Inverse(specs[specPos : specPos+blockSz])
		} else {
			inv = mdctLong2.Inverse(specs[specPos : specPos+blockSz])
		}

		// The unnormalized forward/inverse pair has a round-trip gain of
		// N/4 (and the encoder doubles short hi-band spectra): undo both.
		scale := 4 / float64(len(inv))
		if short && band == BandHi {
			scale /= 2
		}
		half := len(inv) / 2
		quarter := len(inv) / 4
		for i := 0; i < half; i++ {
			invBuf[start+i] = inv[i+quarter] * scale
		}

		vectorFmulWindow(buf, start, prevBuf, invBuf[start:], sineWindow[:], 16)

		prevBuf = invBuf[start+16:]
		start += blockSz
		specPos += blockSz
	}

	if !short {
		n := 112
		if band == BandHi {
			n = 240
		}
		copy(buf[32:32+n], invBuf[16:16+n])
	}

	for j := 0; j < 16; j++ {
		buf[bufSz*2-16+j] = invBuf[bufSz-16+j]
	}
}
