package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func infoCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the engine settings and voice table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.start(".")
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()
			st := s.engine.Settings()
			fmt.Fprintf(out, "backend:  %s\n", s.cfg.Backend.Name)
			fmt.Fprintf(out, "policy:   %s\n", s.cfg.Policy)
			fmt.Fprintf(out, "voices:   %d active of %d\n", s.engine.ActiveVoiceCount(), s.cfg.Voices)
			fmt.Fprintf(out, "volume:   master %.2f, music %.2f, sfx %.2f\n", st.Master, st.Music, st.Sfx)
			fmt.Fprintf(out, "enabled:  all %t, music %t, sfx %t\n\n", st.Enabled, st.MusicEnabled, st.SfxEnabled)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLOT\tID\tSTATE\tCATEGORY\tPRIORITY\tVOLUME\tSTARTED\tNAME")
			for _, v := range s.engine.Voices() {
				started := ""
				if !v.StartedAt.IsZero() {
					started = v.StartedAt.Format(time.TimeOnly)
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\t%.2f\t%s\t%s\n",
					v.Slot, v.ID, v.State, v.Category, v.Priority, v.Volume, started, v.Name)
			}
			s.debug()
			return w.Flush()
		},
	}
}
