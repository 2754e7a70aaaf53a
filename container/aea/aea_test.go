package aea

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteReadRoundTrip(t *testing.T) {
	h := Header{Title: "test clip", Channels: 2}
	var buf bytes.Buffer
	w := NewWriter(&buf, h)

	frameA := [][]byte{bytes.Repeat([]byte{0xAA}, FrameSize), bytes.Repeat([]byte{0xBB}, FrameSize)}
	frameB := [][]byte{bytes.Repeat([]byte{0xCC}, FrameSize), bytes.Repeat([]byte{0xDD}, FrameSize)}
	if err := w.WriteFrame(frameA); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := w.WriteFrame(frameB); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if w.FrameCount() != 2 {
		t.Fatalf("FrameCount() = %d, want 2", w.FrameCount())
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if diff := cmp.Diff(h, r.Header); diff != "" {
		t.Fatalf("Header mismatch (-want +got):\n%s", diff)
	}

	got, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame (1): %v", err)
	}
	for ch := range frameA {
		if !bytes.Equal(got[ch], frameA[ch]) {
			t.Errorf("frame 1 channel %d mismatch", ch)
		}
	}

	got, err = r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame (2): %v", err)
	}
	for ch := range frameB {
		if !bytes.Equal(got[ch], frameB[ch]) {
			t.Errorf("frame 2 channel %d mismatch", ch)
		}
	}

	if _, err := r.ReadFrame(); err != io.EOF {
		t.Fatalf("ReadFrame (3) error = %v, want io.EOF", err)
	}
}

func TestNewReaderRejectsBadMagic(t *testing.T) {
	buf := make([]byte, HeaderSize)
	buf[channelsOff] = 1
	if _, err := NewReader(bytes.NewReader(buf)); err == nil {
		t.Fatal("expected an error for a header with bad magic")
	}
}

func TestNewReaderRejectsShortHeader(t *testing.T) {
	if _, err := NewReader(bytes.NewReader(make([]byte, HeaderSize-1))); err == nil {
		t.Fatal("expected an error for a truncated header")
	}
}

func TestWriteFrameRejectsWrongChannelCount(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Header{Channels: 2})
	if err := w.WriteFrame([][]byte{make([]byte, FrameSize)}); err == nil {
		t.Fatal("expected an error writing a 1-channel frame set to a 2-channel writer")
	}
}

func TestWriteFrameRejectsWrongFrameSize(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Header{Channels: 1})
	if err := w.WriteFrame([][]byte{make([]byte, FrameSize-1)}); err == nil {
		t.Fatal("expected an error writing an undersized frame")
	}
}

func TestReadFrameRejectsTruncatedStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Header{Channels: 1})
	if err := w.WriteFrame([][]byte{make([]byte, FrameSize)}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	truncated := buf.Bytes()[:buf.Len()-1]

	r, err := NewReader(bytes.NewReader(truncated))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.ReadFrame(); err == nil {
		t.Fatal("expected an error reading a truncated frame")
	}
}
