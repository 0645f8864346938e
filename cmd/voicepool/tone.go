package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lundis/go-voicepool/audio"
	"github.com/Lundis/go-voicepool/loaders/raw"
)

func toneCommand(flags *globalFlags) *cobra.Command {
	var (
		freqs    []float64
		duration time.Duration
		delay    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "tone",
		Short: "Play overlapping sine tones",
		Long:  "Generate sine tones as raw PCM and start them one after another so they overlap.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.MkdirTemp("", "voicepool-tone")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)

			names := make([]string, len(freqs))
			for i, freq := range freqs {
				names[i] = fmt.Sprintf("tone-%d.raw", i)
				data := sineWave(freq, duration, raw.DefaultSampleRate, raw.DefaultChannels)
				if err := os.WriteFile(filepath.Join(dir, names[i]), data, 0o644); err != nil {
					return err
				}
			}

			s, err := flags.start(dir)
			if err != nil {
				return err
			}
			defer s.close()

			var ids []audio.PlaybackID
			for i, name := range names {
				if i > 0 && delay > 0 {
					holdFor(cmd.Context(), delay)
					if cmd.Context().Err() != nil {
						return nil
					}
				}
				id, err := s.engine.PlaySound(name, 1, false, i)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "playing %s (%.2f Hz)\n", describe(id, name), freqs[i])
				ids = append(ids, id)
			}
			s.debug()
			return s.wait(cmd.Context(), ids)
		},
	}
	cmd.Flags().Float64SliceVarP(&freqs, "freq", "f", []float64{523.3, 659.3, 784.0}, "Tone frequencies in Hz")
	cmd.Flags().DurationVar(&duration, "duration", 3*time.Second, "Length of each tone")
	cmd.Flags().DurationVar(&delay, "delay", time.Second, "Delay between tone starts")
	return cmd
}

// sineWave returns interleaved signed 16-bit little endian PCM.
func sineWave(freq float64, duration time.Duration, sampleRate, channels int) []byte {
	frames := int(float64(sampleRate) * duration.Seconds())
	data := make([]byte, frames*channels*2)
	for i := 0; i < frames; i++ {
		angle := 2 * math.Pi * float64(i) * freq / float64(sampleRate)
		value := int16(math.Sin(angle) * 0.3 * math.MaxInt16)
		for ch := 0; ch < channels; ch++ {
			binary.LittleEndian.PutUint16(data[(i*channels+ch)*2:], uint16(value))
		}
	}
	return data
}
