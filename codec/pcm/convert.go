/*
NAME
  convert.go

DESCRIPTION
  convert.go converts between raw S16_LE/S32_LE byte buffers and the
  float64 sample slices consumed by codec/atrac1's Processor.

AUTHOR
  Trek Hopton <trek@ausocean.org>

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

	"github.com/pkg/errors"
)

// ToFloat64 de-interleaves c's raw samples into one float64 slice per
// channel, each sample scaled to the signed 16-bit range regardless of
// the buffer's source bit depth (the range codec/atrac1 expects at its
// PCM boundary).
func ToFloat64(c Buffer) ([][]float64, error) {
	ch := int(c.Format.Channels)
	if ch == 0 {
		return nil, errors.New("buffer has zero channels")
	}

	var sampleLen int
	switch c.Format.SFormat {
	case S16_LE:
		sampleLen = 2
	case S32_LE:
		sampleLen = 4
	default:
		return nil, errors.Errorf("unhandled sample format %v", c.Format.SFormat)
	}

	frameLen := sampleLen * ch
	if len(c.Data)%frameLen != 0 {
		return nil, errors.Errorf("buffer length %d is not a multiple of frame length %d", len(c.Data), frameLen)
	}
	nFrames := len(c.Data) / frameLen

	out := make([][]float64, ch)
	for i := range out {
		out[i] = make([]float64, nFrames)
	}

	for f := 0; f < nFrames; f++ {
		for i := 0; i < ch; i++ {
			off := f*frameLen + i*sampleLen
			switch c.Format.SFormat {
			case S16_LE:
				out[i][f] = float64(int16(binary.LittleEndian.Uint16(c.Data[off : off+2])))
			case S32_LE:
				// Scale down to the 16-bit range atrac1 operates in.
				out[i][f] = float64(int32(binary.LittleEndian.Uint32(c.Data[off:off+4]))) / 65536.0
			}
		}
	}
	return out, nil
}

// FromFloat64 interleaves one float64 slice per channel (each in the
// signed 16-bit range) into a raw S16_LE Buffer at the given sample rate.
// Values outside [-32768, 32767] are clamped.
func FromFloat64(chans [][]float64, rate uint) (Buffer, error) {
	if len(chans) == 0 {
		return Buffer{}, errors.New("no channels given")
	}
	nFrames := len(chans[0])
	for i, c := range chans {
		if len(c) != nFrames {
			return Buffer{}, errors.Errorf("channel %d has %d samples, want %d", i, len(c), nFrames)
		}
	}

	data := make([]byte, nFrames*len(chans)*2)
	for f := 0; f < nFrames; f++ {
		for i, c := range chans {
			v := c[f]
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			off := (f*len(chans) + i) * 2
			binary.LittleEndian.PutUint16(data[off:off+2], uint16(int16(v)))
		}
	}

	return Buffer{
		Format: BufferFormat{
			SFormat:  S16_LE,
			Rate:     rate,
			Channels: uint(len(chans)),
		},
		Data: data,
	}, nil
}
