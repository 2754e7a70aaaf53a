/*
NAME
  decode_test.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flac

import (
	"io"
	"testing"
)

func TestWriteSeekerWrite(t *testing.T) {
	ws := &writeSeeker{}

	const tstStr1 = "hello"
	ws.Write([]byte(tstStr1))
	got := string(ws.buf)
	if got != tstStr1 {
		t.Errorf("Write failed, got: %v, want: %v", got, tstStr1)
	}

	const tstStr2 = " world"
	const want = "hello world"
	ws.Write([]byte(tstStr2))
	got = string(ws.buf)
	if got != want {
		t.Errorf("Second write failed, got: %v, want: %v", got, want)
	}
}

func TestWriteSeekerSeek(t *testing.T) {
	ws := &writeSeeker{}

	const tstStr1 = "hello"
	ws.Write([]byte(tstStr1))
	got := string(ws.buf)
	if got != tstStr1 {
		t.Errorf("Unexpected output, got: %v, want: %v", got, tstStr1)
	}

	const tstStr2 = " world"
	const want2 = tstStr1 + tstStr2
	ws.Write([]byte(tstStr2))
	got = string(ws.buf)
	if got != want2 {
		t.Errorf("Unexpected output, got: %v, want: %v", got, want2)
	}

	const tstStr3 = "k!"
	const want3 = "hello work!"
	ws.Seek(-2, io.SeekEnd)
	ws.Write([]byte(tstStr3))
	got = string(ws.buf)
	if got != want3 {
		t.Errorf("Unexpected output, got: %v, want: %v", got, want3)
	}

	const tstStr4 = "gopher"
	const want4 = "hello gopher"
	ws.Seek(6, io.SeekStart)
	ws.Write([]byte(tstStr4))
	got = string(ws.buf)
	if got != want4 {
		t.Errorf("Unexpected output, got: %v, want: %v", got, want4)
	}
}

func TestDecodeRejectsNonFLAC(t *testing.T) {
	if _, err := Decode([]byte("not flac data")); err == nil {
		t.Fatal("expected an error decoding non-FLAC input")
	}
}
