/*
NAME
  main.go

DESCRIPTION
  atrac1 is a command-line ATRAC1 encoder/decoder: WAV PCM in, AEA
  compressed frames out, and vice versa (§6).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// atrac1 is a command-line ATRAC1 encoder/decoder.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ausocean/utils/logging"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/openatrac/atrac1av/codec/atrac1"
	"github.com/openatrac/atrac1av/codec/flac"
	"github.com/openatrac/atrac1av/codec/pcm"
	"github.com/openatrac/atrac1av/codec/wav"
	"github.com/openatrac/atrac1av/container/aea"
)

const (
	logPath      = "atrac1.log"
	logMaxSize   = 10 // MB
	logMaxBackup = 3
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "atrac1:", err)
		os.Exit(1)
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	log.Info("starting run", "args", f.String())

	cfg := atrac1.DefaultConfig()
	cfg.BFUIdxConst = f.bfuIdxConst
	cfg.FastBFUNumSearch = f.bfuIdxFast
	if f.noTransient {
		cfg.WindowMode = atrac1.WindowForced
		cfg.WindowMask = f.transientMask
	}
	cfg.Log = func(lvl int8, msg string, args ...interface{}) {
		switch lvl {
		case atrac1.LogDebug:
			log.Debug(msg, args...)
		case atrac1.LogWarn:
			log.Warning(msg, args...)
		case atrac1.LogError:
			log.Error(msg, args...)
		default:
			log.Info(msg, args...)
		}
	}

	var runErr error
	if f.encode {
		runErr = runEncode(f, cfg, log)
	} else {
		runErr = runDecode(f, cfg, log)
	}
	if runErr != nil {
		log.Error("run failed", "error", runErr)
		fmt.Fprintln(os.Stderr, "atrac1:", runErr)
		os.Exit(1)
	}
	log.Info("run complete")
}

// runEncode reads a WAV or FLAC file at f.in and writes an AEA file to
// f.out. FLAC input is transcoded to WAV in memory before the usual WAV
// parsing path runs.
func runEncode(f flags, cfg atrac1.Config, log logging.Logger) error {
	raw, err := os.ReadFile(f.in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", f.in, err)
	}
	if strings.HasSuffix(strings.ToLower(f.in), ".flac") {
		log.Info("transcoding FLAC input to WAV", "path", f.in)
		raw, err = flac.Decode(raw)
		if err != nil {
			return fmt.Errorf("decoding flac: %w", err)
		}
	}
	md, data, err := wav.Read(raw)
	if err != nil {
		return fmt.Errorf("parsing wav: %w", err)
	}
	if md.SampleRate != 44100 {
		log.Warning("input sample rate is not 44100 Hz", "rate", md.SampleRate)
	}

	cfg.Channels = md.Channels
	chans, err := pcm.ToFloat64(pcm.Buffer{
		Format: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: uint(md.SampleRate), Channels: uint(md.Channels)},
		Data:   data,
	})
	if err != nil {
		return fmt.Errorf("converting pcm: %w", err)
	}

	p, err := atrac1.NewProcessor(cfg)
	if err != nil {
		return fmt.Errorf("configuring processor: %w", err)
	}

	out, err := os.Create(f.out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", f.out, err)
	}
	defer out.Close()

	w := aea.NewWriter(out, aea.Header{Title: f.in, Channels: uint8(md.Channels)})

	total := len(chans[0])
	nFrames := (total + atrac1.NumSamples - 1) / atrac1.NumSamples
	for i := 0; i < nFrames; i++ {
		block := make([][]float64, md.Channels)
		for ch := range block {
			block[ch] = make([]float64, atrac1.NumSamples)
			start := i * atrac1.NumSamples
			end := start + atrac1.NumSamples
			if end > total {
				end = total
			}
			copy(block[ch], chans[ch][start:end])
		}
		frames, err := p.EncodeFrame(block)
		if err != nil {
			return fmt.Errorf("encoding frame %d: %w", i, err)
		}
		if err := w.WriteFrame(frames); err != nil {
			return fmt.Errorf("writing frame %d: %w", i, err)
		}
	}

	if err := aea.PatchFrameCount(out, w.FrameCount()); err != nil {
		log.Warning("could not patch frame count", "error", err)
	}
	return nil
}

// runDecode reads an AEA file at f.in and writes a WAV file to f.out.
func runDecode(f flags, cfg atrac1.Config, log logging.Logger) error {
	in, err := os.Open(f.in)
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.in, err)
	}
	defer in.Close()

	r, err := aea.NewReader(in)
	if err != nil {
		return fmt.Errorf("parsing aea header: %w", err)
	}
	cfg.Channels = int(r.Header.Channels)

	p, err := atrac1.NewProcessor(cfg)
	if err != nil {
		return fmt.Errorf("configuring processor: %w", err)
	}

	chans := make([][]float64, r.Header.Channels)
	for {
		frames, err := r.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}
		pcmBlocks, err := p.DecodeFrame(frames)
		if err != nil {
			return fmt.Errorf("decoding frame: %w", err)
		}
		for ch := range chans {
			chans[ch] = append(chans[ch], pcmBlocks[ch]...)
		}
	}

	buf, err := pcm.FromFloat64(chans, 44100)
	if err != nil {
		return fmt.Errorf("converting pcm: %w", err)
	}

	w := &wav.WAV{Metadata: wav.Metadata{
		AudioFormat: wav.PCMFormat,
		Channels:    int(r.Header.Channels),
		SampleRate:  44100,
		BitDepth:    16,
	}}
	if _, err := w.Write(buf.Data); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	return os.WriteFile(f.out, w.Audio, 0644)
}
