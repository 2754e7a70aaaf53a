/*
NAME
  qmf.go

DESCRIPTION
  qmf.go implements the two-stage, 48-tap half-band QMF analysis and
  synthesis banks that split a 512-sample PCM frame into low/mid/hi bands
  and invert that split.

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

	"github.com/mjibson/go-dsp/window"
)

// qmfTaps is the tap count of the QMF prototype filter (§4.2).
const qmfTaps = 48

// qmfLow is the 48-tap half-band lowpass prototype and qmfHigh its
// conjugate-mirror companion (qmfHigh[n] = qmfLow[n] * (-1)^n), the
// classic two-band QMF construction. As with the scale and BFU tables,
// the exact published ATRAC1 tap literals aren't reproduced here with
// confidence; a windowed-sinc half-band design (Hamming window, cutoff at
// one quarter of the sample rate) is used instead. This is not bit-exact
// with a reference decoder (out of scope per spec Non-goals) but gives a
// genuine half-band QMF pair suitable for the round-trip SNR targets in
// §8.
var qmfLow, qmfHigh [qmfTaps]float64

func init() {
	win := window.Hamming(qmfTaps)
	center := float64(qmfTaps-1) / 2
	const fc = 0.25 // Quarter of the sample rate: half-band cutoff.
	var sum float64
	for n := 0; n < qmfTaps; n++ {
		x := float64(n) - center
		var s float64
		if x == 0 {
			s = 2 * fc
		} else {
			s = math.Sin(2*math.Pi*fc*x) / (math.Pi * x)
		}
		qmfLow[n] = s * win[n]
		sum += qmfLow[n]
	}
	for n := range qmfLow {
		qmfLow[n] /= sum // Normalize to unity DC gain.
	}
	for n := range qmfLow {
		if n%2 == 0 {
			qmfHigh[n] = qmfLow[n]
		} else {
			qmfHigh[n] = -qmfLow[n]
		}
	}
}

// qmfAnalyzer splits a signal into a low-half and high-half band at half
// the input rate, maintaining persistent tap history across calls so that
// filtering is continuous across frame boundaries.
type qmfAnalyzer struct {
	hist [qmfTaps]float64 // Most recent qmfTaps input samples before this call's block.
}

// Analyze splits x (length L, L even) into lo and hi, each length L/2.
func (a *qmfAnalyzer) Analyze(x []float64) (lo, hi []float64) {
	l := len(x)
	ext := make([]float64, qmfTaps+l)
	copy(ext, a.hist[:])
	copy(ext[qmfTaps:], x)

	lo = make([]float64, l/2)
	hi = make([]float64, l/2)
	for m := 0; m < l/2; m++ {
		n := 2 * m
		var sLo, sHi float64
		for k := 0; k < qmfTaps; k++ {
			s := ext[n+qmfTaps-k]
			sLo += qmfLow[k] * s
			sHi += qmfHigh[k] * s
		}
		lo[m] = sLo
		hi[m] = sHi
	}

	if l >= qmfTaps {
		copy(a.hist[:], x[l-qmfTaps:])
	} else {
		copy(a.hist[:qmfTaps-l], a.hist[l:])
		copy(a.hist[qmfTaps-l:], x)
	}
	return lo, hi
}

// qmfSynthesizer inverts qmfAnalyzer's split, maintaining a persistent
// overlap carry so that the FIR synthesis convolution is continuous across
// frame boundaries.
type qmfSynthesizer struct {
	tail [qmfTaps - 1]float64
}

// Synthesize reconstructs a length-2*len(lo) signal from a low/high band
// pair produced by the matching qmfAnalyzer.
func (s *qmfSynthesizer) Synthesize(lo, hi []float64) []float64 {
	n := len(lo)
	outLen := 2 * n
	conv := make([]float64, outLen+qmfTaps-1)
	for m := 0; m < n; m++ {
		pos := 2 * m
		for k := 0; k < qmfTaps; k++ {
			conv[pos+k] += lo[m]*qmfLow[k] + hi[m]*qmfHigh[k]
		}
	}
	for i := 0; i < qmfTaps-1; i++ {
		conv[i] += s.tail[i]
	}
	out := make([]float64, outLen)
	copy(out, conv[:outLen])
	copy(s.tail[:], conv[outLen:outLen+qmfTaps-1])
	return out
}

// bandSplitter implements the two-stage analysis cascade of §4.2: the full
// 512-sample frame is first split into a 0-11kHz low-half and the 11-22kHz
// hi band (each 256 samples), then the low-half is split again into the
// 0-5.5kHz low and 5.5-11kHz mid bands (each 128 samples). This ordering
// matches the band sizes given in spec.md's Data Model (low=128, mid=128,
// hi=256): the band that does NOT get a second split is hi, not low.
type bandSplitter struct {
	stage1 qmfAnalyzer // Splits full-band into low-half / hi.
	stage2 qmfAnalyzer // Splits low-half into low / mid.
}

// Split writes 128 new low samples, 128 new mid samples, and 256 new hi
// samples into the first half of each destination band buffer (the
// second half of each buffer is the MDCT stage's persistent overlap
// region and is left untouched here).
func (b *bandSplitter) Split(src []float64, low, mid, hi []float64) {
	lowHalf, hiBand := b.stage1.Analyze(src)
	lowBand, midBand := b.stage2.Analyze(lowHalf)
	copy(low[:len(lowBand)], lowBand)
	copy(mid[:len(midBand)], midBand)
	copy(hi[:len(hiBand)], hiBand)
}

// bandJoiner inverts bandSplitter.
type bandJoiner struct {
	stage1 qmfSynthesizer // Joins low-half / hi into full-band.
	stage2 qmfSynthesizer // Joins low / mid into low-half.
}

// Synthesis reconstructs 512 full-band samples from the first half (the
// newly decoded portion) of each band buffer.
func (b *bandJoiner) Synthesis(low, mid, hi []float64) []float64 {
	lowHalf := b.stage2.Synthesize(low[:128], mid[:128])
	return b.stage1.Synthesize(lowHalf, hi[:256])
}
