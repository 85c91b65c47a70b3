package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"github.com/soundsep/repet-go/internal/telemetry"
	"github.com/soundsep/repet-go/pkg/repet"
	"github.com/soundsep/repet-go/pkg/repet/repeterr"
)

var algorithm string
var backgroundPath string
var foregroundPath string

var separateCmd = &cobra.Command{
	Use:   "separate <input.wav>",
	Short: "Separate a repeating background from a mixture WAV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeparate,
}

func init() {
	separateCmd.Flags().StringVarP(&algorithm, "algorithm", "a", "original",
		"original|extended|adaptive|sim|simonline")
	separateCmd.Flags().StringVar(&backgroundPath, "background", "background.wav",
		"output path for the estimated background")
	separateCmd.Flags().StringVar(&foregroundPath, "foreground", "",
		"optional output path for the estimated foreground (mixture minus background)")
	rootCmd.AddCommand(separateCmd)
}

func runSeparate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	signal, fs, bitDepth, err := readWav(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}

	opts := []repet.Option{repet.FromConfig(cfg.Pipeline.ToOptions())}

	metrics, err := telemetry.NewMetrics(cfg.App.StatsdAddr)
	if err != nil {
		log.Warnf("metrics disabled: %v", err)
		metrics = nil
	}
	defer func() { _ = metrics.Close() }()

	entryLog := log.WithFields(telemetry.Fields{
		"algorithm": algorithm,
		"channels":  signal.Channels(),
		"frames":    signal.Frames(),
	})
	entryLog.Infof("starting separation")

	start := time.Now()
	result, err := runPipeline(algorithm, signal, fs, opts...)
	if err != nil {
		if repeterr.IsCode(err, repeterr.CodeDegenerateStructure) {
			// spec §4.10: no candidate period/index was found within the
			// configured search range. Fall back to the mixture unchanged
			// as the background rather than failing the whole run.
			entryLog.Warnf("no repeating structure found, returning mixture as background: %v", err)
			result = repet.Result{Background: signal}
		} else {
			metrics.PipelineError(algorithm)
			return fmt.Errorf("separate: %w", err)
		}
	}
	metrics.PipelineDuration(algorithm, time.Since(start))
	entryLog.Infof("separation finished in %s", time.Since(start))

	if err := writeWav(backgroundPath, result.Background, fs, bitDepth); err != nil {
		return fmt.Errorf("write %s: %w", backgroundPath, err)
	}

	if foregroundPath != "" {
		foreground := make(repet.Signal, len(signal))
		for ch := range signal {
			foreground[ch] = make(repet.Channel, len(signal[ch]))
			for i := range signal[ch] {
				foreground[ch][i] = signal[ch][i] - result.Background[ch][i]
			}
		}
		if err := writeWav(foregroundPath, foreground, fs, bitDepth); err != nil {
			return fmt.Errorf("write %s: %w", foregroundPath, err)
		}
	}

	return nil
}

func runPipeline(name string, signal repet.Signal, fs float64, opts ...repet.Option) (repet.Result, error) {
	switch name {
	case "original":
		return repet.Original(signal, fs, opts...)
	case "extended":
		return repet.Extended(signal, fs, opts...)
	case "adaptive":
		return repet.Adaptive(signal, fs, opts...)
	case "sim":
		return repet.Sim(signal, fs, opts...)
	case "simonline":
		return repet.SimOnline(signal, fs, opts...)
	default:
		return repet.Result{}, fmt.Errorf("unknown algorithm %q", name)
	}
}

// readWav decodes a PCM WAV file into a repet.Signal normalized to
// [-1, 1], returning the sample rate and the source bit depth (so
// writeWav can round-trip at the same precision).
func readWav(path string) (repet.Signal, float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, err
	}

	numChans := buf.Format.NumChannels
	fs := float64(buf.Format.SampleRate)
	scale := float64(int(1) << (uint(buf.SourceBitDepth) - 1))

	n := len(buf.Data) / numChans
	signal := make(repet.Signal, numChans)
	for ch := range signal {
		signal[ch] = make(repet.Channel, n)
	}
	for i := 0; i < n; i++ {
		for ch := 0; ch < numChans; ch++ {
			signal[ch][i] = float64(buf.Data[i*numChans+ch]) / scale
		}
	}
	return signal, fs, buf.SourceBitDepth, nil
}

// writeWav encodes a repet.Signal back to PCM WAV at bitDepth,
// clamping to the representable range rather than wrapping on overflow.
func writeWav(path string, signal repet.Signal, fs float64, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	numChans := signal.Channels()
	n := signal.Frames()
	enc := wav.NewEncoder(f, int(fs), bitDepth, numChans, 1)
	defer enc.Close()

	scale := float64(int(1)<<(uint(bitDepth)-1)) - 1
	data := make([]int, n*numChans)
	for i := 0; i < n; i++ {
		for ch := 0; ch < numChans; ch++ {
			v := signal[ch][i] * scale
			v = math.Max(-scale-1, math.Min(scale, v))
			data[i*numChans+ch] = int(math.Round(v))
		}
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChans, SampleRate: int(fs)},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	return enc.Write(buf)
}
