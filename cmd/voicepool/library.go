package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lundis/go-voicepool/playlist"
	"github.com/Lundis/go-voicepool/sfx"
)

func sfxCommand(flags *globalFlags) *cobra.Command {
	var (
		repeat   int
		interval time.Duration
		export   bool
	)
	cmd := &cobra.Command{
		Use:   "sfx DIR ID",
		Short: "Play a sound effect from an effect library",
		Long:  "Load sfx.json or sfx.yaml from DIR and play effect ID, optionally repeated on a schedule.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.start(args[0])
			if err != nil {
				return err
			}
			defer s.close()

			library := sfx.NewLibrary(s.engine, s.logger)
			if err := library.LoadFolder(args[0]); err != nil {
				return err
			}
			if export {
				for name, value := range library.ExportConstants() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s = %q\n", name, value)
				}
			}

			scheduler := sfx.NewScheduler(library)
			for i := 0; i < repeat; i++ {
				scheduler.PlaySoundEffectAt(sfx.Id(args[1]), (time.Duration(i) * interval).Seconds())
			}

			start := time.Now()
			ticker := time.NewTicker(10 * time.Millisecond)
			defer ticker.Stop()
			for scheduler.Len() > 0 {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
					scheduler.Process(time.Since(start).Seconds())
				}
			}
			s.debug()
			// let the last variation ring out
			holdFor(cmd.Context(), time.Second)
			return nil
		},
	}
	cmd.Flags().IntVarP(&repeat, "repeat", "r", 1, "Number of plays")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 250*time.Millisecond, "Time between repeated plays")
	cmd.Flags().BoolVar(&export, "export", false, "Print the effect id constants")
	return cmd
}

func playlistCommand(flags *globalFlags) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "playlist DIR ID",
		Short: "Play a playlist",
		Long:  "Load playlist.json or playlist.yaml from DIR and play playlist ID until interrupted.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.start(args[0])
			if err != nil {
				return err
			}
			defer s.close()

			library := playlist.NewLibrary(s.engine, s.logger)
			defer library.Close()
			if err := library.LoadFolder(args[0]); err != nil {
				return err
			}
			if err := library.Play(playlist.Id(args[1])); err != nil {
				return err
			}
			if id, track, ok := library.Current(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "playing %s: %s %s\n", id, track.Name, track.Author)
			}
			s.debug()
			holdFor(cmd.Context(), duration)
			return nil
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long; zero plays until interrupted")
	return cmd
}
