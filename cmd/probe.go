package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/Youngzheimer/subtrans/internal/config"
	"github.com/Youngzheimer/subtrans/internal/media"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newProbeCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <video>",
		Short: "List the subtitle streams of a video and the one that would be translated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(config.WithoutAPIKey())
			if err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			streams, err := newProber(cfg).Probe(cmd.Context(), path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(streams) == 0 {
				fmt.Fprintf(out, "%s has no subtitle streams\n", filepath.Base(path))
				return nil
			}
			fmt.Fprintln(out, renderStreams(streams))

			target := cfg.Translate.TargetLanguage
			if media.HasLanguage(streams, target) {
				fmt.Fprintf(out, "Already has a %s stream; nothing to translate\n", target)
			}
			return nil
		},
	}
}

// renderStreams tabulates streams, marking the one SelectBest picks.
func renderStreams(streams []media.Stream) string {
	best, ok := media.SelectBest(media.TextStreams(streams))

	rows := make([][]string, 0, len(streams))
	for _, s := range streams {
		mark := ""
		if ok && s.Index == best.Index {
			mark = "*"
		}
		size := ""
		if s.Size > 0 {
			size = humanize.IBytes(uint64(s.Size))
		}
		rows = append(rows, []string{
			mark,
			strconv.Itoa(s.Index),
			s.Codec,
			s.Language,
			s.Title,
			size,
			yesNo(s.IsTextBased()),
			yesNo(s.Default),
			yesNo(s.Forced),
		})
	}
	return renderTable(
		[]string{"", "Index", "Codec", "Language", "Title", "Size", "Text", "Default", "Forced"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	)
}
