// Command dynproc applies dynamics processing to a WAV file.
//
// Usage:
//
//	dynproc -in input.wav -out output.wav [flags]
//
// Examples:
//
//	dynproc -in voice.wav -out voice-c.wav -effect compressor -threshold -18 -ratio 4
//	dynproc -in mix.wav -out mix-l.wav -effect limiter -threshold -1
//	dynproc -in mix.wav -out master.wav -effect master -threshold -14 -makeup 3
//
// The master effect chains a compressor into a safety limiter; the
// parameter flags configure the compressor and the limiter keeps its
// defaults. The file is streamed in fixed-size chunks through a single
// processor instance, so the result is identical to processing the whole
// file at once.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-dynamics/dsp/buffer"
	"github.com/cwbudde/algo-dynamics/dsp/chain"
	"github.com/cwbudde/algo-dynamics/dsp/core"
	"github.com/cwbudde/algo-dynamics/dsp/dynamics"
	"github.com/cwbudde/algo-dynamics/measure/reduction"
)

// reductionSource is the metering surface shared by both processor types.
type reductionSource interface {
	GainReductionDB(dst []float64) ([]float64, error)
}

func main() {
	inPath := flag.String("in", "", "input WAV file (PCM)")
	outPath := flag.String("out", "", "output WAV file")
	effect := flag.String("effect", "compressor", "effect to apply: compressor, limiter or master")
	threshold := flag.Float64("threshold", math.NaN(), "threshold in dB (default per effect)")
	ratio := flag.Float64("ratio", math.NaN(), "compression ratio, n in n:1")
	knee := flag.Float64("knee", math.NaN(), "knee width in dB")
	attack := flag.Float64("attack", math.NaN(), "attack time in ms")
	release := flag.Float64("release", math.NaN(), "release time in ms")
	makeup := flag.Float64("makeup", math.NaN(), "makeup gain in dB")
	block := flag.Int("block", 512, "processing chunk size in samples")
	quiet := flag.Bool("quiet", false, "suppress the metering summary")
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		fmt.Fprintf(os.Stderr, "error: -in and -out are required\n")
		flag.Usage()
		os.Exit(1)
	}

	if *block < 1 {
		fail(fmt.Errorf("block size must be at least 1, got %d", *block))
	}

	if err := run(*inPath, *outPath, *effect, *block, *quiet, chain.Params{
		"threshold": *threshold,
		"ratio":     *ratio,
		"knee":      *knee,
		"attack":    *attack,
		"release":   *release,
		"makeup":    *makeup,
	}); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func run(inPath, outPath, effect string, blockSize int, quiet bool, params chain.Params) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	dec := wav.NewDecoder(in)
	if !dec.IsValidFile() {
		return fmt.Errorf("%s: not a valid WAV file", inPath)
	}

	format := dec.Format()
	sampleRate := float64(dec.SampleRate)
	numChans := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)

	c, src, err := buildChain(effect, sampleRate, params)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := wav.NewEncoder(out, int(dec.SampleRate), bitDepth, numChans, 1)

	meter := reduction.NewMeter(
		reduction.WithSampleRate(sampleRate),
		reduction.WithChannels(numChans),
	)

	if err := process(dec, enc, c, src, meter, format, numChans, bitDepth, blockSize); err != nil {
		enc.Close()

		return err
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", outPath, err)
	}

	if !quiet {
		printSummary(os.Stdout, meter.Metrics())
	}

	return nil
}

// buildChain assembles the requested effect chain and returns the stage
// whose gain-reduction track feeds the meter.
func buildChain(effect string, sampleRate float64, params chain.Params) (*chain.Chain, reductionSource, error) {
	c := chain.NewChain()

	var (
		src        reductionSource
		configured chain.Stage
	)

	switch effect {
	case "compressor":
		comp, err := dynamics.NewCompressor(sampleRate)
		if err != nil {
			return nil, nil, err
		}

		c.Append("compressor", comp)
		src = comp
		configured = chain.Stage{Name: "compressor", Proc: comp}
	case "limiter":
		lim, err := dynamics.NewLimiter(sampleRate)
		if err != nil {
			return nil, nil, err
		}

		c.Append("limiter", lim)
		src = lim
		configured = chain.Stage{Name: "limiter", Proc: lim}
	case "master":
		comp, err := dynamics.NewCompressor(sampleRate)
		if err != nil {
			return nil, nil, err
		}

		lim, err := dynamics.NewLimiter(sampleRate)
		if err != nil {
			return nil, nil, err
		}

		c.Append("compressor", comp)
		c.Append("limiter", lim)
		src = lim
		configured = chain.Stage{Name: "compressor", Proc: comp}
	default:
		return nil, nil, fmt.Errorf("unknown effect %q (want compressor, limiter or master)", effect)
	}

	// NaN-valued params fall back to the stage's current setting, so only
	// flags the user actually set take effect. The master chain's limiter
	// stays at its defaults.
	if err := chain.Configure(configured, params); err != nil {
		return nil, nil, err
	}

	return c, src, nil
}

func process(dec *wav.Decoder, enc *wav.Encoder, c *chain.Chain, src reductionSource,
	meter *reduction.Meter, format *audio.Format, numChans, bitDepth, blockSize int,
) error {
	pool := buffer.NewPool()

	inPlanes := make([]*buffer.Buffer, numChans)
	outPlanes := make([]*buffer.Buffer, numChans)

	for ch := range inPlanes {
		inPlanes[ch] = pool.Get(blockSize)
		outPlanes[ch] = pool.Get(blockSize)
	}

	defer func() {
		for ch := range inPlanes {
			pool.Put(inPlanes[ch])
			pool.Put(outPlanes[ch])
		}
	}()

	pcm := &audio.IntBuffer{Format: format, Data: make([]int, blockSize*numChans), SourceBitDepth: bitDepth}
	scale := float64(int(1) << (bitDepth - 1))

	var reductionDB []float64

	for {
		n, err := dec.PCMBuffer(pcm)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}

		if n == 0 {
			return nil
		}

		frames, err := splitFrames(n, numChans)
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}

		input := deinterleave(inPlanes, pcm.Data[:frames*numChans], numChans, scale)

		output := make([][]float64, numChans)
		for ch := range output {
			outPlanes[ch].Resize(frames)
			output[ch] = outPlanes[ch].Samples()
			copy(output[ch], input[ch])
		}

		if err := c.Process(output); err != nil {
			return err
		}

		reductionDB, err = src.GainReductionDB(reductionDB)
		if err != nil {
			return err
		}

		if err := meter.Process(input, output, reductionDB); err != nil {
			return err
		}

		interleave(pcm.Data[:frames*numChans], output, scale)

		chunk := &audio.IntBuffer{Format: format, Data: pcm.Data[:frames*numChans], SourceBitDepth: bitDepth}
		if err := enc.Write(chunk); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}
}

// splitFrames converts an interleaved sample count into whole frames.
// A count that is not a multiple of the channel count means the stream
// ends mid-frame, which is reported instead of silently truncated.
func splitFrames(n, numChans int) (int, error) {
	if n%numChans != 0 {
		return 0, fmt.Errorf("%d samples do not divide into %d-channel frames", n, numChans)
	}

	return n / numChans, nil
}

// deinterleave splits interleaved integer PCM into per-channel float64
// planes scaled to [-1, 1).
func deinterleave(planes []*buffer.Buffer, data []int, numChans int, scale float64) [][]float64 {
	frames := len(data) / numChans

	block := make([][]float64, numChans)
	for ch := range planes {
		planes[ch].Resize(frames)
		block[ch] = planes[ch].Samples()
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChans; ch++ {
			block[ch][i] = float64(data[i*numChans+ch]) / scale
		}
	}

	return block
}

// interleave converts per-channel float64 planes back to interleaved
// integer PCM, clamping to the legal sample range.
func interleave(data []int, block [][]float64, scale float64) {
	numChans := len(block)

	for ch := range block {
		for i, v := range block[ch] {
			s := math.Round(core.Clamp(v, -1.0, 1.0) * scale)
			data[i*numChans+ch] = int(core.Clamp(s, -scale, scale-1))
		}
	}
}

func printSummary(w *os.File, m reduction.Metrics) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "input peak\t%.2f dB\n", m.InputPeakDB)
	fmt.Fprintf(tw, "output peak\t%.2f dB\n", m.OutputPeakDB)
	fmt.Fprintf(tw, "max reduction\t%.2f dB at %.3f s\n", m.MaxReductionDB, m.MaxReductionAt)
	fmt.Fprintf(tw, "duration\t%.3f s\n", m.Duration)
	fmt.Fprintf(tw, "blocks\t%d\n", m.Blocks)
	tw.Flush()
}
