package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/Youngzheimer/subtrans/internal/config"
	"github.com/Youngzheimer/subtrans/internal/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

func newProcessCmd(g *globalOptions) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "process <video>...",
		Short: "Translate the subtitles of the given videos once",
		Long: `Run the translation pipeline on each video and exit. Output is written
next to each video as <video>.<lang>.srt.

Example:
  subtrans process --lang de "/videos/Show S01E01.mkv"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []config.Option
			if lang != "" {
				tag, err := language.Parse(lang)
				if err != nil {
					return apperr.Wrapf(apperr.KindConfig, err, "invalid --lang %q", lang)
				}
				opts = append(opts, config.WithTargetLanguage(tag))
			}
			cfg, err := g.loadConfig(opts...)
			if err != nil {
				return err
			}

			videos := make([]string, 0, len(args))
			for _, arg := range args {
				path, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolve %s: %w", arg, err)
				}
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("video %s: %w", arg, err)
				}
				videos = append(videos, path)
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			results := a.orchestrator.ProcessBatch(cmd.Context(), videos)
			out := cmd.OutOrStdout()
			for _, r := range results {
				switch r.Status {
				case pipeline.StatusTranslated:
					fmt.Fprintf(out, "%s: translated %d cues -> %s\n", r.Video, r.Cues, r.Output)
				default:
					fmt.Fprintf(out, "%s: %s at %s: %s\n", r.Video, r.Status, r.Stage, r.Reason)
				}
			}

			if s := pipeline.Summarize(results); s.Failed > 0 {
				return fmt.Errorf("%d of %d videos failed", s.Failed, len(videos))
			}
			if len(results) < len(videos) {
				return cmd.Context().Err()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "target language, overriding TARGET_LANGUAGE")
	return cmd
}
