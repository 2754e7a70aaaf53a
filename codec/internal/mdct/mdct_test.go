package mdct

import (
	"math"
	"math/rand"
	"testing"
)

// naiveMDCT and naiveIMDCT are independent re-implementations of the kernel
// (not sharing the precomputed cosine table with MDCT) used as the
// ground-truth reference for the fast, FFT-accelerated path.
func naiveMDCT(x []float64, m int) []float64 {
	out := make([]float64, m)
	n := 2 * m
	for k := 0; k < m; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += x[i] * math.Cos((math.Pi/float64(m))*(float64(i)+0.5+float64(m)/2)*(float64(k)+0.5))
		}
		out[k] = sum
	}
	return out
}

func naiveIMDCT(x []float64, m int) []float64 {
	n := 2 * m
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for k := 0; k < m; k++ {
			sum += x[k] * math.Cos((math.Pi/float64(m))*(float64(i)+0.5+float64(m)/2)*(float64(k)+0.5))
		}
		out[i] = sum
	}
	return out
}

func ramp(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

func randSlice(n int, r *rand.Rand) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = r.Float64()*2 - 1
	}
	return x
}

func TestForwardFastAgreesWithNaive(t *testing.T) {
	tests := []struct {
		n    int
		tol  float64
		rnd  bool
		rtol float64
	}{
		{n: 64, tol: 1e-10},
		{n: 128, tol: 1e-10},
		{n: 256, tol: 1e-8, rnd: true, rtol: 1e-2},
	}
	r := rand.New(rand.NewSource(1))
	for _, tt := range tests {
		tr, err := New(tt.n, true)
		if err != nil {
			t.Fatalf("New(%d): %v", tt.n, err)
		}
		src := ramp(tt.n)
		got := tr.Forward(src)
		want := naiveMDCT(src, tt.n/2)
		for i := range want {
			if math.Abs(got[i]-want[i]) > tt.tol {
				t.Errorf("N=%d ramp: Forward[%d] = %v, want %v (tol %v)", tt.n, i, got[i], want[i], tt.tol)
			}
		}
		if tt.rnd {
			src := randSlice(tt.n, r)
			got := tr.Forward(src)
			want := naiveMDCT(src, tt.n/2)
			for i := range want {
				if math.Abs(got[i]-want[i]) > tt.rtol {
					t.Errorf("N=%d random: Forward[%d] = %v, want %v (tol %v)", tt.n, i, got[i], want[i], tt.rtol)
				}
			}
		}
	}
}

func TestInverseFastAgreesWithNaive(t *testing.T) {
	tests := []struct {
		n   int
		tol float64
	}{
		{n: 64, tol: 1e-9},
		{n: 128, tol: 1e-9},
		{n: 256, tol: 1e-6},
	}
	for _, tt := range tests {
		tr, err := New(tt.n, true)
		if err != nil {
			t.Fatalf("New(%d): %v", tt.n, err)
		}
		src := ramp(tt.n / 2)
		got := tr.Inverse(src)
		want := naiveIMDCT(src, tt.n/2)
		for i := range want {
			if math.Abs(got[i]-want[i]) > tt.tol {
				t.Errorf("N=%d: Inverse[%d] = %v, want %v", tt.n, i, got[i], want[i])
			}
		}
	}
}

// TestForwardInverseDirectRoundTrip checks only that the direct forms run
// and return blocks of the expected lengths: the full TDAC round trip (through the
// sine-windowed overlap-add) is covered end to end in window_test.go and
// processor_test.go, which exercise the real ATRAC1 band buffers.
func TestForwardInverseDirectRoundTrip(t *testing.T) {
	tr, err := New(64, false)
	if err != nil {
		t.Fatal(err)
	}
	src := ramp(64)
	spec := tr.ForwardDirect(src)
	if len(spec) != 32 {
		t.Fatalf("len(spec) = %d, want 32", len(spec))
	}
	back := tr.InverseDirect(spec)
	if len(back) != 64 {
		t.Fatalf("len(back) = %d, want 64", len(back))
	}
}
