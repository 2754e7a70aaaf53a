package bitio

import "testing"

func TestWriteReadRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		fields []struct {
			v uint64
			n int
		}
	}{
		{
			name: "byte aligned",
			fields: []struct {
				v uint64
				n int
			}{{0xAB, 8}, {0xCD, 8}},
		},
		{
			name: "unaligned mix",
			fields: []struct {
				v uint64
				n int
			}{{1, 1}, {5, 3}, {0x3F, 6}, {12345, 16}, {0, 2}},
		},
		{
			name: "wide field",
			fields: []struct {
				v uint64
				n int
			}{{0xDEADBEEF, 32}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := 0
			for _, f := range tt.fields {
				total += f.n
			}
			w := NewWriter((total + 7) / 8)
			for _, f := range tt.fields {
				if err := w.WriteBits(f.v, f.n); err != nil {
					t.Fatalf("WriteBits(%d, %d): %v", f.v, f.n, err)
				}
			}

			r := NewReader(w.Bytes())
			for i, f := range tt.fields {
				got, err := r.ReadBits(f.n)
				if err != nil {
					t.Fatalf("ReadBits(%d) field %d: %v", f.n, i, err)
				}
				want := f.v & (uint64(1)<<uint(f.n) - 1)
				if f.n == 64 {
					want = f.v
				}
				if got != want {
					t.Errorf("field %d: got %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestReadPastEndErrors(t *testing.T) {
	w := NewWriter(1)
	w.WriteBits(0xFF, 8)
	r := NewReader(w.Bytes())
	if _, err := r.ReadBits(9); err == nil {
		t.Fatal("expected error reading past end of 1-byte source")
	}
}

func TestWriteOverflowErrors(t *testing.T) {
	w := NewWriter(1)
	if err := w.WriteBits(1, 8); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := w.WriteBits(1, 1); err == nil {
		t.Fatal("expected overflow error writing a 9th bit into a 1-byte buffer")
	}
}

func TestBitsLeft(t *testing.T) {
	r := NewReader(make([]byte, 4))
	if got := r.BitsLeft(); got != 32 {
		t.Fatalf("BitsLeft() = %d, want 32", got)
	}
	if _, err := r.ReadBits(10); err != nil {
		t.Fatal(err)
	}
	if got := r.BitsLeft(); got != 22 {
		t.Fatalf("BitsLeft() after reading 10 = %d, want 22", got)
	}
}
