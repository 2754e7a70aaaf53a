/*
NAME
  aea.go

DESCRIPTION
  aea.go implements the AEA container: a fixed 2048-byte header followed
  by a sequence of 212-byte ATRAC1 frames, one per channel interleaved.
  Reader and Writer give codec/atrac1 a frame-at-a-time collaborator
  independent of the underlying io.Reader/io.Writer.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package aea reads and writes the AEA container format used to store
// ATRAC1 compressed audio on disk: a 2048-byte header followed by a
// sequence of fixed-size compressed frames.
package aea

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// HeaderSize is the fixed size in bytes of an AEA file header.
const HeaderSize = 2048

// FrameSize is the size in bytes of one ATRAC1 compressed frame, matching
// codec/atrac1.FrameSize.
const FrameSize = 212

// magic is the 32-bit little-endian value AEA files begin with.
const magic = 0x00000100

const (
	titleOffset   = 4
	titleSize     = 256
	frameCntOff   = 260
	channelsOff   = 264
	headerUsedLen = channelsOff + 1
)

// Header describes an AEA file's fixed header fields (§6).
type Header struct {
	Title      string
	FrameCount uint32
	Channels   uint8
}

// encode serializes h into a HeaderSize-byte block.
func (h Header) encode() []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], magic)
	copy(b[titleOffset:titleOffset+titleSize], h.Title)
	binary.LittleEndian.PutUint32(b[frameCntOff:frameCntOff+4], h.FrameCount)
	b[channelsOff] = h.Channels
	return b
}

// decodeHeader parses a HeaderSize-byte block into a Header.
func decodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, errors.Errorf("aea: header is %d bytes, want %d", len(b), HeaderSize)
	}
	if got := binary.LittleEndian.Uint32(b[0:4]); got != magic {
		return Header{}, errors.Errorf("aea: bad magic %#x", got)
	}
	title := b[titleOffset : titleOffset+titleSize]
	if n := indexNul(title); n >= 0 {
		title = title[:n]
	}
	h := Header{
		Title:      string(title),
		FrameCount: binary.LittleEndian.Uint32(b[frameCntOff : frameCntOff+4]),
		Channels:   b[channelsOff],
	}
	return h, nil
}

func indexNul(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

// Reader reads an AEA stream's header and frame sequence.
type Reader struct {
	r      io.Reader
	Header Header
}

// NewReader reads and validates r's header, returning a Reader
// positioned at the start of the frame sequence.
func NewReader(r io.Reader) (*Reader, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "aea: reading header")
	}
	h, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}
	if h.Channels == 0 {
		return nil, errors.New("aea: header declares zero channels")
	}
	return &Reader{r: r, Header: h}, nil
}

// ReadFrame reads one interleaved frame set: FrameSize bytes per channel,
// in channel order. It returns io.EOF once the stream is exhausted.
func (rd *Reader) ReadFrame() ([][]byte, error) {
	frames := make([][]byte, rd.Header.Channels)
	for ch := range frames {
		buf := make([]byte, FrameSize)
		n, err := io.ReadFull(rd.r, buf)
		if err == io.ErrUnexpectedEOF || (err == nil && n != FrameSize) {
			return nil, errors.New("aea: truncated frame")
		}
		if err != nil {
			if ch == 0 && err == io.EOF {
				return nil, io.EOF
			}
			return nil, err
		}
		frames[ch] = buf
	}
	return frames, nil
}

// Writer writes an AEA header followed by a sequence of frame sets.
type Writer struct {
	w          io.Writer
	header     Header
	wroteHead  bool
	frameCount uint32
}

// NewWriter returns a Writer that will write h as the file header before
// the first frame. h.FrameCount is written as given; callers writing to
// a seekable destination may want to patch it in afterwards with
// PatchFrameCount(dst, w.FrameCount()), since the true count isn't known
// until writing finishes.
func NewWriter(w io.Writer, h Header) *Writer {
	return &Writer{w: w, header: h}
}

// WriteFrame writes one interleaved frame set: one FrameSize-byte frame
// per channel, in channel order. The header is written lazily before the
// first frame.
func (wr *Writer) WriteFrame(frames [][]byte) error {
	if !wr.wroteHead {
		if _, err := wr.w.Write(wr.header.encode()); err != nil {
			return errors.Wrap(err, "aea: writing header")
		}
		wr.wroteHead = true
	}
	if len(frames) != int(wr.header.Channels) {
		return errors.Errorf("aea: frame set has %d channels, want %d", len(frames), wr.header.Channels)
	}
	for _, f := range frames {
		if len(f) != FrameSize {
			return errors.Errorf("aea: frame is %d bytes, want %d", len(f), FrameSize)
		}
		if _, err := wr.w.Write(f); err != nil {
			return errors.Wrap(err, "aea: writing frame")
		}
	}
	wr.frameCount++
	return nil
}

// FrameCount returns the number of frame sets written so far.
func (wr *Writer) FrameCount() uint32 { return wr.frameCount }

// PatchFrameCount rewrites just the frame-count field of an already
// written AEA header through wa, for callers writing to a seekable
// destination that want the header's declared count to match what was
// actually written once the stream is complete.
func PatchFrameCount(wa io.WriterAt, count uint32) error {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, count)
	_, err := wa.WriteAt(b, frameCntOff)
	return err
}
