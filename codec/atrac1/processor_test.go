package atrac1

import (
	"math"
	"testing"
)

func silencePCM() []float64 {
	return make([]float64, NumSamples)
}

func sinePCM(freq float64, startSample int) []float64 {
	pcm := make([]float64, NumSamples)
	for i := range pcm {
		n := startSample + i
		pcm[i] = 8000 * math.Sin(2*math.Pi*freq*float64(n)/44100)
	}
	return pcm
}

func TestProcessorEncodeFrameSizes(t *testing.T) {
	p, err := NewProcessor(DefaultConfig())
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	frames, err := p.EncodeFrame([][]float64{silencePCM()})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("len(frames) = %d, want 1", len(frames))
	}
	if len(frames[0]) != FrameSize {
		t.Fatalf("len(frames[0]) = %d, want %d", len(frames[0]), FrameSize)
	}
}

func TestProcessorSilenceRoundTrip(t *testing.T) {
	p, err := NewProcessor(DefaultConfig())
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	for f := 0; f < 4; f++ {
		frames, err := p.EncodeFrame([][]float64{silencePCM()})
		if err != nil {
			t.Fatalf("frame %d: EncodeFrame: %v", f, err)
		}
		pcm, err := p.DecodeFrame(frames)
		if err != nil {
			t.Fatalf("frame %d: DecodeFrame: %v", f, err)
		}
		if len(pcm) != 1 || len(pcm[0]) != NumSamples {
			t.Fatalf("frame %d: unexpected decoded shape", f)
		}
		if f < 2 {
			continue // QMF/MDCT history still settling.
		}
		for i, v := range pcm[0] {
			if math.Abs(v) > 500 {
				t.Errorf("frame %d sample %d: decoded silence = %v, want near 0", f, i, v)
			}
		}
	}
}

func TestProcessorSineRoundTripIsFiniteAndBounded(t *testing.T) {
	// The default pipeline runs the long-window MDCT path (no transient is
	// ever detected for a steady sine), which uses the FFT-derived long
	// kernel.
	p, err := NewProcessor(DefaultConfig())
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	for f := 0; f < 6; f++ {
		in := sinePCM(440, f*NumSamples)
		frames, err := p.EncodeFrame([][]float64{in})
		if err != nil {
			t.Fatalf("frame %d: EncodeFrame: %v", f, err)
		}
		pcm, err := p.DecodeFrame(frames)
		if err != nil {
			t.Fatalf("frame %d: DecodeFrame: %v", f, err)
		}
		for i, v := range pcm[0] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("frame %d sample %d: non-finite decoded sample %v", f, i, v)
			}
			if v > PCMValueMax || v < PCMValueMin {
				t.Errorf("frame %d sample %d: decoded sample %v outside PCM range", f, i, v)
			}
		}
	}
}

// TestProcessorSineRoundTripMeetsSNRFloor implements §8 scenario 2: a 1 kHz
// sine at amplitude 10000, encoded and decoded for 1 second, must
// reconstruct at SNR >= 30 dB over the steady-state region (the first two
// frames are skipped as QMF/MDCT history warmup).
func TestProcessorSineRoundTripMeetsSNRFloor(t *testing.T) {
	p, err := NewProcessor(DefaultConfig())
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}

	const (
		sampleRate = 44100
		freq       = 1000.0
		amplitude  = 10000.0
	)
	numFrames := (sampleRate + NumSamples - 1) / NumSamples

	var signalEnergy, noiseEnergy float64
	for f := 0; f < numFrames; f++ {
		in := make([]float64, NumSamples)
		for i := range in {
			n := f*NumSamples + i
			in[i] = amplitude * math.Sin(2*math.Pi*freq*float64(n)/sampleRate)
		}
		frames, err := p.EncodeFrame([][]float64{in})
		if err != nil {
			t.Fatalf("frame %d: EncodeFrame: %v", f, err)
		}
		pcm, err := p.DecodeFrame(frames)
		if err != nil {
			t.Fatalf("frame %d: DecodeFrame: %v", f, err)
		}
		if f < 2 {
			continue
		}
		for i, v := range pcm[0] {
			want := in[i]
			signalEnergy += want * want
			diff := v - want
			noiseEnergy += diff * diff
		}
	}

	if noiseEnergy == 0 {
		t.Fatalf("noise energy is exactly zero, can't compute SNR")
	}
	snrDB := 10 * math.Log10(signalEnergy/noiseEnergy)
	if snrDB < 30 {
		t.Errorf("SNR = %.2f dB, want >= 30 dB", snrDB)
	}
}

func TestProcessorTwoChannelIndependence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = 2
	p, err := NewProcessor(cfg)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	frames, err := p.EncodeFrame([][]float64{silencePCM(), sinePCM(1000, 0)})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("len(frames) = %d, want 2", len(frames))
	}
	pcm, err := p.DecodeFrame(frames)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(pcm) != 2 {
		t.Fatalf("len(pcm) = %d, want 2", len(pcm))
	}
}

func TestProcessorChannelCountMismatch(t *testing.T) {
	p, err := NewProcessor(DefaultConfig())
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	if _, err := p.EncodeFrame([][]float64{silencePCM(), silencePCM()}); err == nil {
		t.Fatal("expected an error encoding 2 channels through a 1-channel Processor")
	}
	if _, err := p.DecodeFrame([][]byte{make([]byte, FrameSize), make([]byte, FrameSize)}); err == nil {
		t.Fatal("expected an error decoding 2 frames through a 1-channel Processor")
	}
}

func TestProcessorForcedWindowMaskRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowMode = WindowForced
	cfg.WindowMask = 0x7 // short on all three bands
	p, err := NewProcessor(cfg)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	frames, err := p.EncodeFrame([][]float64{sinePCM(2000, 0)})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	mode, err := readBSM(frames[0])
	if err != nil {
		t.Fatalf("readBSM: %v", err)
	}
	if mode.Mask() != 0x7 {
		t.Fatalf("mode.Mask() = %#x, want 0x7", mode.Mask())
	}
}

func TestProcessorFixedBFUCountLeavesBFUsBeyondPresetInactive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BFUIdxConst = 3 // preset index 2 -> bfuCountPresets[2] active BFUs
	p, err := NewProcessor(cfg)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	frames, err := p.EncodeFrame([][]float64{sinePCM(880, 0)})
	if err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	wantActive := bfuCountPresets[2]
	wl, err := FrameWordLengths(frames[0])
	if err != nil {
		t.Fatalf("FrameWordLengths: %v", err)
	}
	active := 0
	for i, n := range wl {
		if n != 0 {
			active++
		}
		if i >= wantActive && n != 0 {
			t.Errorf("bfu %d beyond preset count has nonzero word length %d", i, n)
		}
	}
	if active > wantActive {
		t.Fatalf("active BFU count = %d, want <= %d", active, wantActive)
	}
}

func TestProcessorMalformedFrameRejected(t *testing.T) {
	p, err := NewProcessor(DefaultConfig())
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	if _, err := p.DecodeFrame([][]byte{make([]byte, FrameSize-1)}); err == nil {
		t.Fatal("expected an error decoding a short frame")
	}
}
