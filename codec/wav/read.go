/*
NAME
  read.go

DESCRIPTION
  read.go adds a decode path to the wav package: parsing a RIFF/WAVE
  byte stream back into a Metadata and raw PCM payload, the inverse of
  WAV.Write.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package wav

import (
	"encoding/binary"
	"fmt"
)

var (
	errNotRIFF    = fmt.Errorf("not a RIFF file")
	errNotWAVE    = fmt.Errorf("not a WAVE file")
	errNoFmt      = fmt.Errorf("missing fmt chunk")
	errNoData     = fmt.Errorf("missing data chunk")
	errTruncated  = fmt.Errorf("truncated wav data")
	errFmtTooSmol = fmt.Errorf("fmt chunk too small")
)

// Read parses a RIFF/WAVE byte stream written by WAV.Write (or any
// canonical 44-byte-header PCM WAV file) into a Metadata and the raw PCM
// payload from its data chunk.
func Read(b []byte) (Metadata, []byte, error) {
	var m Metadata
	if len(b) < 12 {
		return m, nil, errTruncated
	}
	if string(b[0:4]) != "RIFF" {
		return m, nil, errNotRIFF
	}
	if string(b[8:12]) != "WAVE" {
		return m, nil, errNotWAVE
	}

	pos := 12
	var gotFmt, gotData bool
	var data []byte
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		pos += 8
		if pos+size > len(b) {
			return m, nil, errTruncated
		}
		chunk := b[pos : pos+size]

		switch id {
		case "fmt ":
			if size < 16 {
				return m, nil, errFmtTooSmol
			}
			m.AudioFormat = int(binary.LittleEndian.Uint16(chunk[0:2]))
			m.Channels = int(binary.LittleEndian.Uint16(chunk[2:4]))
			m.SampleRate = int(binary.LittleEndian.Uint32(chunk[4:8]))
			m.BitDepth = int(binary.LittleEndian.Uint16(chunk[14:16]))
			gotFmt = true
		case "data":
			data = chunk
			gotData = true
		}

		pos += size
		if size%2 == 1 {
			pos++ // Chunks are word-aligned; skip the pad byte.
		}
	}

	if !gotFmt {
		return m, nil, errNoFmt
	}
	if !gotData {
		return m, nil, errNoData
	}
	return m, data, nil
}
