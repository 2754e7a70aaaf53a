/*
NAME
  processor.go

DESCRIPTION
  processor.go implements the frame processor: per-channel persistent
  state (band delay lines, QMF history, transient detectors) and the
  encode/decode orchestration described in §4.7.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package atrac1

// channelState holds one channel's persistent pipeline state: band delay
// lines, QMF analysis/synthesis history, and transient detector state.
// Owned exclusively by its Processor for the processor's lifetime (§5
// "Resource ownership", §9 "Persistent per-channel state").
type channelState struct {
	band      [NumQMF][]float64
	splitter  bandSplitter
	joiner    bandJoiner
	transient channelTransientState
}

func newChannelState() *channelState {
	c := &channelState{}
	for b := 0; b < NumQMF; b++ {
		c.band[b] = make([]float64, bandBufSize(b))
	}
	return c
}

// Processor encodes or decodes ATRAC1 frames for a fixed number of
// channels, holding each channel's persistent delay lines (§3 "Band
// buffers", §9 "Dynamic dispatch for encoder vs decoder": this module
// expresses encode/decode as two operations on one type rather than a
// tagged variant, since they share all persistent state and tables).
type Processor struct {
	cfg      Config
	channels []*channelState
}

// NewProcessor validates cfg and returns a Processor ready to encode or
// decode cfg.Channels interleaved channels.
func NewProcessor(cfg Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Processor{cfg: cfg, channels: make([]*channelState, cfg.Channels)}
	for i := range p.channels {
		p.channels[i] = newChannelState()
	}
	return p, nil
}

// EncodeFrame consumes one 512-sample PCM block per channel (pcm[ch] has
// length NumSamples, in the PCMValueMin..PCMValueMax range) and returns
// one packed FrameSize-byte frame per channel.
func (p *Processor) EncodeFrame(pcm [][]float64) ([][]byte, error) {
	if len(pcm) != len(p.channels) {
		return nil, &ConfigError{Field: "pcm", Reason: "channel count mismatch"}
	}
	log := p.cfg.logger()
	out := make([][]byte, len(p.channels))
	for ch, cs := range p.channels {
		if len(pcm[ch]) != NumSamples {
			return nil, &ConfigError{Field: "pcm", Reason: "block must be NumSamples long"}
		}
		out[ch] = p.encodeChannel(cs, pcm[ch], log)
	}
	return out, nil
}

func (p *Processor) encodeChannel(cs *channelState, pcm []float64, log Log) []byte {
	cs.splitter.Split(pcm, cs.band[BandLow], cs.band[BandMid], cs.band[BandHi])

	mask := p.windowMask(cs)
	mode := FromMask(mask)

	var specs [NumSamples]float64
	for band := 0; band < NumQMF; band++ {
		mdctEncode(specs[:], bandOffset(band), cs.band[band], band, mode.Short(band))
	}

	blocks := scaleFrame(specs, mode)
	k, wl := selectBFUCount(blocks, mode, p.cfg.bitAllocConfig())
	idx := presetIndex(k)

	for i, b := range blocks {
		if b.Saturated {
			log(LogWarn, "atrac1: BFU coefficient saturated", "bfu", i)
		}
	}

	return packFrame(mode, idx, wl, blocks)
}

// windowMask decides the block-size mask for the frame about to be
// encoded: either the transient detector's verdict over the band content
// just split out of this frame's PCM, or the configured override (§4.7,
// §6 windowMode).
func (p *Processor) windowMask(cs *channelState) uint8 {
	if p.cfg.WindowMode == WindowForced {
		return p.cfg.WindowMask
	}
	return cs.transient.Detect(cs.band[BandLow], cs.band[BandMid], cs.band[BandHi])
}

// DecodeFrame unpacks one FrameSize-byte frame per channel and returns
// one reconstructed NumSamples-sample PCM block per channel, clipped to
// the PCM value range.
func (p *Processor) DecodeFrame(frames [][]byte) ([][]float64, error) {
	if len(frames) != len(p.channels) {
		return nil, &ConfigError{Field: "frames", Reason: "channel count mismatch"}
	}
	out := make([][]float64, len(p.channels))
	for ch, cs := range p.channels {
		pcm, err := p.decodeChannel(cs, frames[ch])
		if err != nil {
			return nil, err
		}
		out[ch] = pcm
	}
	return out, nil
}

func (p *Processor) decodeChannel(cs *channelState, frame []byte) ([]float64, error) {
	mode, err := readBSM(frame)
	if err != nil {
		return nil, err
	}
	blocks, err := unpackFrame(frame, mode)
	if err != nil {
		return nil, err
	}

	specs := disassembleSpectrum(blocks, mode)
	for band := 0; band < NumQMF; band++ {
		mdctDecode(specs[:], bandOffset(band), cs.band[band], band, mode.Short(band))
	}

	pcm := cs.joiner.Synthesis(cs.band[BandLow], cs.band[BandMid], cs.band[BandHi])
	for i, v := range pcm {
		if v > PCMValueMax {
			v = PCMValueMax
		} else if v < PCMValueMin {
			v = PCMValueMin
		}
		pcm[i] = v
	}
	return pcm, nil
}

// presetIndex returns the index into bfuCountPresets for k, or the last
// index if k isn't one of the eight preset values (defensive; callers
// always pass a value selectBFUCount returned).
func presetIndex(k int) int {
	for i, v := range bfuCountPresets {
		if v == k {
			return i
		}
	}
	return len(bfuCountPresets) - 1
}
