/*
NAME
  main.go

DESCRIPTION
  atrac1viz is a diagnostic tool: it reads the word-length field of one
  ATRAC1 frame from an AEA file (without decoding the frame) and renders
  its per-BFU bit allocation as a bar chart, to help
  spot-check the bit allocator's importance-based distribution.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// atrac1viz renders one ATRAC1 frame's bit allocation as a PNG bar chart.
package main

import (
	"flag"
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/openatrac/atrac1av/codec/atrac1"
	"github.com/openatrac/atrac1av/container/aea"
)

func main() {
	in := flag.String("i", "", "input AEA file")
	out := flag.String("o", "bitalloc.png", "output PNG path")
	frameIdx := flag.Int("frame", 0, "frame index to visualize")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "atrac1viz: -i is required")
		os.Exit(1)
	}

	if err := run(*in, *out, *frameIdx); err != nil {
		fmt.Fprintln(os.Stderr, "atrac1viz:", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string, frameIdx int) error {
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inPath, err)
	}
	defer f.Close()

	r, err := aea.NewReader(f)
	if err != nil {
		return fmt.Errorf("parsing aea header: %w", err)
	}

	var frames [][]byte
	for i := 0; i <= frameIdx; i++ {
		frames, err = r.ReadFrame()
		if err != nil {
			return fmt.Errorf("reading frame %d: %w", i, err)
		}
	}

	wl, err := atrac1.FrameWordLengths(frames[0])
	if err != nil {
		return fmt.Errorf("parsing frame: %w", err)
	}

	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("creating plot: %w", err)
	}
	p.Title.Text = fmt.Sprintf("ATRAC1 bit allocation, frame %d", frameIdx)
	p.X.Label.Text = "BFU index"
	p.Y.Label.Text = "word length (bits)"

	bars, err := plotter.NewBarChart(wordLengthValues(wl[:]), vg.Points(3))
	if err != nil {
		return fmt.Errorf("building chart: %w", err)
	}
	p.Add(bars)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return fmt.Errorf("saving %s: %w", outPath, err)
	}
	return nil
}

func wordLengthValues(wl []int) plotter.Values {
	v := make(plotter.Values, len(wl))
	for i, n := range wl {
		v[i] = float64(n)
	}
	return v
}
