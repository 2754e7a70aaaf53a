/*
NAME
  alsa.go

DESCRIPTION
  alsa.go provides a live ALSA PCM source and sink (the atrac1 CLI does
  not open ALSA devices; it reads and writes files only). Unlike the original
  ring-buffer/record-period device model, this package pulls and pushes
  fixed-size blocks of atrac1.NumSamples directly, matching the
  processor's per-frame PCM boundary.

AUTHOR
  Alan Noble <alan@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

//go:build linux

// Package alsa provides a live ALSA PCM source and sink sized to the
// atrac1 processor's per-frame block, rather than a general streaming
// ring buffer.
package alsa

import (
	"fmt"

	yalsa "github.com/yobert/alsa"

	"github.com/ausocean/utils/logging"

	"github.com/openatrac/atrac1av/codec/atrac1"
	"github.com/openatrac/atrac1av/codec/pcm"
)

// Config configures one ALSA capture or playback device. Title selects
// a specific card/device by name; an empty Title uses the first device
// that supports the requested direction.
type Config struct {
	Title      string
	SampleRate uint
	Channels   uint
	BitDepth   uint
}

// DefaultConfig returns a default configuration: 44.1 kHz, mono, 16-bit,
// on the first device that supports the requested direction.
func DefaultConfig() Config {
	return Config{SampleRate: 44100, Channels: 1, BitDepth: 16}
}

// Source is a live ALSA capture device that yields one atrac1.NumSamples
// block of float64 PCM per channel per call to ReadBlock.
type Source struct {
	l   logging.Logger
	dev *yalsa.Device
	cfg Config
	raw []byte // Scratch buffer sized for one period at the negotiated rate.
	fmt pcm.BufferFormat
}

// NewSource opens an ALSA device for capture with cfg and prepares it to
// deliver NumSamples-sized blocks at cfg.SampleRate.
//
// Many capture interfaces only support rates that are integer multiples of
// 44100 (88200, 176400, ...), not 44100 itself; when the device negotiates
// one of those, NewSource requests oversized periods and ReadBlock
// downsamples them back to cfg.SampleRate with pcm.Resample. A negotiated
// rate that isn't a multiple of cfg.SampleRate is rejected, since
// pcm.Resample only handles integer decimation.
func NewSource(l logging.Logger, cfg Config) (*Source, error) {
	dev, negotiated, err := openAndNegotiate(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("alsa: opening capture device: %w", err)
	}
	if negotiated.Rate != cfg.SampleRate && negotiated.Rate%cfg.SampleRate != 0 {
		dev.Close()
		return nil, fmt.Errorf("alsa: negotiated rate %d Hz is not a multiple of requested %d Hz", negotiated.Rate, cfg.SampleRate)
	}
	ratio := int(negotiated.Rate / cfg.SampleRate)
	if ratio == 0 {
		ratio = 1
	}
	s := &Source{l: l, dev: dev, cfg: cfg, fmt: negotiated}
	s.raw = make([]byte, atrac1.NumSamples*ratio*int(negotiated.Channels)*bytesPerSample(negotiated))
	return s, nil
}

// ReadBlock reads the next atrac1.NumSamples-sample block, one slice per
// channel, blocking until the device has delivered a full block, and
// downsamples it to cfg.SampleRate if the device runs at a higher multiple.
func (s *Source) ReadBlock() ([][]float64, error) {
	if err := s.dev.Read(s.raw); err != nil {
		return nil, fmt.Errorf("alsa: reading capture block: %w", err)
	}
	buf := pcm.Buffer{Format: s.fmt, Data: s.raw}
	if s.fmt.Rate != s.cfg.SampleRate {
		var err error
		buf, err = pcm.Resample(buf, s.cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("alsa: downsampling capture block: %w", err)
		}
	}
	chans, err := pcm.ToFloat64(buf)
	if err != nil {
		return nil, fmt.Errorf("alsa: converting capture block: %w", err)
	}
	return chans, nil
}

// Close releases the underlying ALSA capture device.
func (s *Source) Close() error {
	s.dev.Close()
	return nil
}

// Sink is a live ALSA playback device that accepts one atrac1.NumSamples
// block of float64 PCM per channel per call to WriteBlock.
type Sink struct {
	l   logging.Logger
	dev *yalsa.Device
	cfg Config
}

// NewSink opens an ALSA device for playback with cfg.
func NewSink(l logging.Logger, cfg Config) (*Sink, error) {
	dev, _, err := openAndNegotiate(cfg, false)
	if err != nil {
		return nil, fmt.Errorf("alsa: opening playback device: %w", err)
	}
	return &Sink{l: l, dev: dev, cfg: cfg}, nil
}

// WriteBlock plays one decoded frame's worth of PCM.
func (s *Sink) WriteBlock(chans [][]float64) error {
	buf, err := pcm.FromFloat64(chans, s.cfg.SampleRate)
	if err != nil {
		return fmt.Errorf("alsa: converting playback block: %w", err)
	}
	if err := s.dev.Write(buf.Data); err != nil {
		return fmt.Errorf("alsa: writing playback block: %w", err)
	}
	return nil
}

// Close releases the underlying ALSA playback device.
func (s *Sink) Close() error {
	s.dev.Close()
	return nil
}

// openAndNegotiate finds the first matching ALSA device for the
// requested direction (record=true for capture, false for playback),
// negotiates channel count, sample rate, and format against cfg, and
// returns the prepared device along with what was actually negotiated.
func openAndNegotiate(cfg Config, record bool) (*yalsa.Device, pcm.BufferFormat, error) {
	var zero pcm.BufferFormat

	cards, err := yalsa.OpenCards()
	if err != nil {
		return nil, zero, err
	}
	defer yalsa.CloseCards(cards)

	var found *yalsa.Device
	for _, card := range cards {
		devices, err := card.Devices()
		if err != nil {
			continue
		}
		for _, d := range devices {
			if d.Type != yalsa.PCM {
				continue
			}
			if record && !d.Record {
				continue
			}
			if d.Title == cfg.Title || cfg.Title == "" {
				found = d
				break
			}
		}
		if found != nil {
			break
		}
	}
	if found == nil {
		return nil, zero, fmt.Errorf("no matching ALSA device found (title=%q record=%v)", cfg.Title, record)
	}

	if err := found.Open(); err != nil {
		return nil, zero, err
	}

	channels, err := found.NegotiateChannels(int(cfg.Channels))
	if err != nil {
		return nil, zero, fmt.Errorf("negotiating channels: %w", err)
	}

	rate, err := found.NegotiateRate(int(cfg.SampleRate))
	if err != nil {
		return nil, zero, fmt.Errorf("negotiating rate: %w", err)
	}

	var want yalsa.FormatType
	switch cfg.BitDepth {
	case 16:
		want = yalsa.S16_LE
	case 32:
		want = yalsa.S32_LE
	default:
		return nil, zero, fmt.Errorf("unsupported bit depth %d", cfg.BitDepth)
	}
	negotiatedFmt, err := found.NegotiateFormat(want)
	if err != nil {
		return nil, zero, fmt.Errorf("negotiating format: %w", err)
	}

	ratio := 1
	if uint(rate) != cfg.SampleRate && cfg.SampleRate != 0 && uint(rate)%cfg.SampleRate == 0 {
		ratio = int(uint(rate) / cfg.SampleRate)
	}
	periodSize := atrac1.NumSamples * ratio
	if _, err := found.NegotiatePeriodSize(periodSize); err != nil {
		return nil, zero, fmt.Errorf("negotiating period size: %w", err)
	}
	if _, err := found.NegotiateBufferSize(periodSize * 4); err != nil {
		return nil, zero, fmt.Errorf("negotiating buffer size: %w", err)
	}
	if err := found.Prepare(); err != nil {
		return nil, zero, fmt.Errorf("preparing device: %w", err)
	}

	sf, err := pcm.SFFromString(negotiatedFmt.String())
	if err != nil {
		return nil, zero, fmt.Errorf("unrecognised negotiated format %v: %w", negotiatedFmt, err)
	}
	bufFmt := pcm.BufferFormat{SFormat: sf, Rate: uint(rate), Channels: uint(channels)}
	return found, bufFmt, nil
}

// bytesPerSample returns how many bytes one sample occupies under bf's
// negotiated sample format.
func bytesPerSample(bf pcm.BufferFormat) int {
	switch bf.SFormat {
	case pcm.S32_LE:
		return 4
	default:
		return 2
	}
}
