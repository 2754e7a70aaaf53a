/*
NAME
  pcm_test.go

DESCRIPTION
  pcm_test.go contains functions for testing the pcm package.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pcm

import (
	"encoding/binary"
	"testing"
)

// TestResample downsamples a synthetic 48kHz 16-bit sweep 6:1 to 8kHz and
// checks the result against manually averaging the same samples.
func TestResample(t *testing.T) {
	const (
		inRate  = 48000
		outRate = 8000
		n       = 600 // Divisible by the 6:1 decimation ratio.
	)
	in := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(in[i*2:], uint16(int16(i*37-3000)))
	}

	buf := Buffer{Format: BufferFormat{Channels: 1, Rate: inRate, SFormat: S16_LE}, Data: in}
	out, err := Resample(buf, outRate)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if out.Format.Rate != outRate {
		t.Errorf("Format.Rate = %d, want %d", out.Format.Rate, outRate)
	}

	ratio := inRate / outRate
	wantLen := len(in) / ratio
	if len(out.Data) != wantLen {
		t.Fatalf("len(Data) = %d, want %d", len(out.Data), wantLen)
	}
	for i := 0; i < len(out.Data)/2; i++ {
		var sum int
		for j := 0; j < ratio; j++ {
			sum += int(int16(binary.LittleEndian.Uint16(in[(i*ratio+j)*2:])))
		}
		want := int16(sum / ratio)
		got := int16(binary.LittleEndian.Uint16(out.Data[i*2:]))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}

// TestStereoToMono keeps only the left channel of a synthetic stereo
// recording where left and right samples are distinguishable.
func TestStereoToMono(t *testing.T) {
	const n = 10
	in := make([]byte, n*4) // n frames, 2 channels, 2 bytes/sample.
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(in[i*4:], uint16(int16(1000+i)))     // Left.
		binary.LittleEndian.PutUint16(in[i*4+2:], uint16(int16(-1000-i))) // Right.
	}

	buf := Buffer{Format: BufferFormat{Channels: 2, Rate: 44100, SFormat: S16_LE}, Data: in}
	mono, err := StereoToMono(buf)
	if err != nil {
		t.Fatalf("StereoToMono: %v", err)
	}
	if mono.Format.Channels != 1 {
		t.Errorf("Format.Channels = %d, want 1", mono.Format.Channels)
	}
	if len(mono.Data) != n*2 {
		t.Fatalf("len(Data) = %d, want %d", len(mono.Data), n*2)
	}
	for i := 0; i < n; i++ {
		want := int16(1000 + i)
		got := int16(binary.LittleEndian.Uint16(mono.Data[i*2:]))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}

// TestDataSize checks the byte-count formula against a known S16_LE case.
func TestDataSize(t *testing.T) {
	got := DataSize(44100, 2, 16, 1.0)
	want := 44100 * 2 * 2
	if got != want {
		t.Errorf("DataSize() = %d, want %d", got, want)
	}
}
