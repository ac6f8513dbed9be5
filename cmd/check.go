package main

import (
	"fmt"

	"github.com/Youngzheimer/subtrans/internal/config"
	"github.com/Youngzheimer/subtrans/internal/translator"
	"github.com/spf13/cobra"
)

func newCheckCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that ffprobe and ffmpeg are installed and show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(config.WithoutAPIKey())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var failed error
			report := func(name string, err error) {
				if err != nil {
					fmt.Fprintf(out, "%-8s FAIL  %v\n", name, err)
					if failed == nil {
						failed = err
					}
					return
				}
				fmt.Fprintf(out, "%-8s ok\n", name)
			}
			report("ffprobe", newProber(cfg).VerifyInstalled(cmd.Context()))
			report("ffmpeg", newExtractor(cfg).VerifyInstalled(cmd.Context()))

			key := "set"
			if cfg.Translate.APIKey == "" {
				key = "missing"
			}
			fmt.Fprintf(out, "api key  %s\n", key)
			fmt.Fprintf(out, "target   %s (%s)\n", cfg.Translate.TargetLanguage, translator.LanguageName(cfg.Translate.TargetLanguage))
			fmt.Fprintf(out, "settings %s\n", cfg)
			return failed
		},
	}
}
