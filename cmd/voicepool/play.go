package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Lundis/go-voicepool/audio"
)

func playCommand(flags *globalFlags) *cobra.Command {
	var (
		priority int
		volume   float32
		pitch    float32
		loop     bool
		music    bool
	)
	cmd := &cobra.Command{
		Use:   "play FILE...",
		Short: "Play audio files at the same time",
		Long:  "Play WAV, OGG, MP3 or raw PCM files together and wait until all of them have finished.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.start(string(filepath.Separator))
			if err != nil {
				return err
			}
			defer s.close()

			var ids []audio.PlaybackID
			for _, file := range args {
				path, err := filepath.Abs(file)
				if err != nil {
					return err
				}
				id, err := s.engine.Play(audio.Request{
					Name:     filepath.ToSlash(path),
					Volume:   volume,
					Looping:  loop,
					Priority: priority,
					Category: category(music),
					Pitch:    pitch,
				})
				if err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "playing", describe(id, file))
				ids = append(ids, id)
			}
			s.debug()
			return s.wait(cmd.Context(), ids)
		},
	}
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "Voice priority")
	cmd.Flags().Float32VarP(&volume, "volume", "v", 1, "Volume between 0 and 1")
	cmd.Flags().Float32Var(&pitch, "pitch", 1, "Playback rate multiplier")
	cmd.Flags().BoolVarP(&loop, "loop", "l", false, "Loop until interrupted")
	cmd.Flags().BoolVarP(&music, "music", "m", false, "Play in the music category")
	return cmd
}
