/*
NAME
  transient.go

DESCRIPTION
  transient.go implements the per-band, per-channel transient detector: a
  time-domain energy-step detector whose verdict the processor applies to
  the block-size decision of the same frame whose samples were analyzed;
  it is not deferred to the next frame (§4.4).

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

	"gonum.org/v1/gonum/floats"
)

// transientThreshold is the ratio by which short-term energy must exceed
// the long-term reference envelope to declare a transient. The published
// ATRAC1 constant isn't reproduced here with confidence (§9 Open
// Questions); this value was chosen empirically to trip reliably on the
// impulse case in §8 while staying quiet on steady-state sine/noise input.
const transientThreshold = 4.0

// energyDecay controls how quickly the long-term reference envelope
// tracks rising energy (attack) versus falling energy (release); slower
// release avoids chattering between long/short on a single loud transient.
const (
	attackDecay  = 0.5
	releaseDecay = 0.95
)

// transientDetector is a stateful, single-band energy-step detector. The
// zero value is ready to use and defaults to long-window mode on the
// first frame it sees.
type transientDetector struct {
	shortEnergy float64 // Smoothed short-term energy.
	longEnergy  float64 // Smoothed long-term reference envelope.
	primed      bool
}

// Detect reports whether x (one band's time-domain samples for the
// current frame) looks transient enough to warrant short-window mode, and
// updates the detector's internal envelopes.
func (d *transientDetector) Detect(x []float64) bool {
	energy := floats.Dot(x, x) / float64(len(x))

	if !d.primed {
		d.shortEnergy = energy
		d.longEnergy = energy
		d.primed = true
		return false
	}

	transient := d.longEnergy > 0 && energy > transientThreshold*d.longEnergy

	d.shortEnergy = attackDecay*energy + (1-attackDecay)*d.shortEnergy
	if transient {
		d.longEnergy = attackDecay*energy + (1-attackDecay)*d.longEnergy
	} else {
		d.longEnergy = releaseDecay*d.longEnergy + (1-releaseDecay)*energy
	}

	return transient
}

// channelTransientState holds one channel's three per-band detectors.
type channelTransientState struct {
	detectors [NumQMF]transientDetector
}

// invertSpectr negates every odd-indexed sample, the baseband-folding
// trick used so the mid/hi detectors (whose bands are already
// frequency-reversed relative to low) see a signal with the same
// attack/energy shape as the low band (§4.4.3).
func invertSpectr(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if i%2 != 0 {
			out[i] = -v
		} else {
			out[i] = v
		}
	}
	return out
}

// Detect runs all three band detectors over the current frame's new
// band-buffer content (the first bandSamples(band) samples of each
// buffer) and returns the resulting windowMask (bit0=low, bit1=mid,
// bit2=hi). Processor.windowMask feeds it into the BlockSizeMode of the
// same frame whose band content was analyzed.
func (c *channelTransientState) Detect(low, mid, hi []float64) uint8 {
	var mask uint8
	if c.detectors[BandLow].Detect(low[:bandSamples(BandLow)]) {
		mask |= 1
	}
	if c.detectors[BandMid].Detect(invertSpectr(mid[:bandSamples(BandMid)])) {
		mask |= 2
	}
	if c.detectors[BandHi].Detect(invertSpectr(hi[:bandSamples(BandHi)])) {
		mask |= 4
	}
	return mask
}

// peakAmplitude is a small helper used by the tests to report the largest
// magnitude sample in a block.
func peakAmplitude(x []float64) float64 {
	var m float64
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}
