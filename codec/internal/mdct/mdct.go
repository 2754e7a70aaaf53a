/*
NAME
  mdct.go

DESCRIPTION
  mdct.go provides forward and inverse Modified Discrete Cosine Transforms
  used by the ATRAC1/ATRAC3 encoder and decoder pipelines.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mdct provides the Modified Discrete Cosine Transform (and its
// inverse) used to convert windowed QMF-band time samples into spectral
// coefficients, and back. Both a direct (double-sum) realization and an
// FFT-accelerated realization are provided (mdct_test.go tests both against
// independent direct-sum references); the direct form is used outright for the short (64-point) transform where the constant
// overhead of an FFT call isn't worth paying. The long transforms (256 and
// 512 point) use the FFT-accelerated form.
package mdct

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// MDCT computes the forward and inverse Modified Discrete Cosine Transform
// for a fixed block length N (samples). A forward transform maps N samples
// to N/2 coefficients; the inverse maps N/2 coefficients back to N samples.
//
// Both directions use the ATRAC kernel:
//
//	X[k] = sum_{n=0}^{N-1} x[n] * cos( (pi/M) * (n + 0.5 + M/2) * (k + 0.5) )
//
// where M = N/2. The inverse applies the identical kernel, summed over k
// instead of n (the kernel is symmetric in its two indices), which is the
// TDAC-preserving convention used throughout this package.
type MDCT struct {
	n    int // Block length in samples.
	m    int // N / 2, number of coefficients.
	cos  [][]float64
	fast bool
}

// New returns an MDCT for block length n, which must be a power of two and
// at least 4. When fast is true, the 2M-point FFT-accelerated realization is
// used for Forward/Inverse; otherwise the direct double-sum form is used.
// The direct form is always available via ForwardDirect/InverseDirect
// regardless of fast, so that callers (and tests) can cross-check.
func New(n int, fast bool) (*MDCT, error) {
	if n < 4 || n&(n-1) != 0 {
		return nil, fmt.Errorf("mdct: block length %d must be a power of two >= 4", n)
	}
	m := n / 2
	t := &MDCT{n: n, m: m, fast: fast}
	t.cos = make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, m)
		for k := 0; k < m; k++ {
			row[k] = math.Cos(theta(m, i, k))
		}
		t.cos[i] = row
	}
	return t, nil
}

// theta is the shared kernel angle, symmetric in its sample and coefficient
// index arguments.
func theta(m, n, k int) float64 {
	return (math.Pi / float64(m)) * (float64(n) + 0.5 + float64(m)/2) * (float64(k) + 0.5)
}

// N returns the block length in samples.
func (t *MDCT) N() int { return t.n }

// M returns the number of coefficients (N/2).
func (t *MDCT) M() int { return t.m }

// Forward computes the forward MDCT of x (length N), returning M
// coefficients. Uses the FFT-accelerated path when the transform was
// constructed with fast=true, else the direct form.
func (t *MDCT) Forward(x []float64) []float64 {
	if t.fast {
		return t.forwardFast(x)
	}
	return t.ForwardDirect(x)
}

// Inverse computes the inverse MDCT of X (length M), returning N samples.
func (t *MDCT) Inverse(x []float64) []float64 {
	if t.fast {
		return t.inverseFast(x)
	}
	return t.InverseDirect(x)
}

// ForwardDirect computes the forward MDCT via the O(N*M) double sum,
// using the precomputed cosine table built in New.
func (t *MDCT) ForwardDirect(x []float64) []float64 {
	out := make([]float64, t.m)
	for k := 0; k < t.m; k++ {
		var sum float64
		for n := 0; n < t.n; n++ {
			sum += x[n] * t.cos[n][k]
		}
		out[k] = sum
	}
	return out
}

// InverseDirect computes the inverse MDCT via the O(N*M) double sum.
func (t *MDCT) InverseDirect(x []float64) []float64 {
	out := make([]float64, t.n)
	for n := 0; n < t.n; n++ {
		var sum float64
		for k := 0; k < t.m; k++ {
			sum += x[k] * t.cos[n][k]
		}
		out[n] = sum
	}
	return out
}

// forwardFast computes the forward MDCT via an N-point complex FFT.
//
// Derivation: expanding the kernel's (n + 0.5 + M/2)(k + 0.5) product
// isolates a single cross term n*k with coefficient pi/M = 2*pi/N, matching
// exactly the kernel of a size-N complex DFT. The remaining terms are a
// phase that depends on n alone (pre-twiddle) or k alone (post-twiddle):
//
//	X[k] = Re{ e^(i*phi(k)) * DFT_pos(z)[k] }
//	z[n] = x[n] * e^(i*psi(n))
//
// where DFT_pos is the N-point transform with a *positive* exponent
// (Σ z[n] e^{+i 2π n k / N}), obtained here as N * IFFT(z) since go-dsp's
// IFFT already divides by N and uses the positive-exponent kernel.
func (t *MDCT) forwardFast(x []float64) []float64 {
	n := t.n
	m := t.m
	z := make([]complex128, n)
	for i := 0; i < n; i++ {
		psi := (math.Pi / (2 * float64(m))) * float64(i)
		s, c := math.Sincos(psi)
		z[i] = complex(x[i]*c, x[i]*s)
	}
	big := fft.IFFT(z)
	out := make([]float64, m)
	for k := 0; k < m; k++ {
		phi := (math.Pi/float64(m))*(0.5+float64(m)/2)*float64(k) + (math.Pi/float64(m))*(0.25+float64(m)/4)
		s, c := math.Sincos(phi)
		zk := big[k] * complex(float64(n), 0)
		out[k] = real(zk)*c - imag(zk)*s
	}
	return out
}

// inverseFast computes the inverse MDCT via the same N-point complex FFT,
// exploiting the kernel's symmetry between its two indices: zero-padding
// the (twiddled) coefficient vector to length N and running the identical
// transform recovers all N output samples directly.
func (t *MDCT) inverseFast(x []float64) []float64 {
	n := t.n
	m := t.m
	w := make([]complex128, n)
	for k := 0; k < m; k++ {
		phi := (math.Pi/float64(m))*(0.5+float64(m)/2)*float64(k) + (math.Pi/float64(m))*(0.25+float64(m)/4)
		s, c := math.Sincos(phi)
		w[k] = complex(x[k]*c, x[k]*s)
	}
	big := fft.IFFT(w)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		psi := (math.Pi / (2 * float64(m))) * float64(i)
		s, c := math.Sincos(psi)
		wi := big[i] * complex(float64(n), 0)
		out[i] = real(wi)*c - imag(wi)*s
	}
	return out
}
