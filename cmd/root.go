package main

import (
	"github.com/Youngzheimer/subtrans/internal/config"
	"github.com/Youngzheimer/subtrans/pkg/log"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	envFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "subtrans",
		Short: "Translate the embedded subtitles of videos in a directory",
		Long: `subtrans watches a directory for video files, extracts the richest
embedded text subtitle with ffprobe/ffmpeg, translates it with Gemini (or an
OpenAI compatible API) and writes <video>.<lang>.srt next to the video.

Configuration comes from the environment, an optional .env file and an
optional SETTINGS_FILE (TOML, YAML or JSON).

Example:
  API_KEY=... TARGET_LANGUAGE=fr WATCH_DIRECTORY=/videos subtrans run`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	runCmd := newRunCmd(g)
	root.RunE = runCmd.RunE
	root.AddCommand(
		runCmd,
		newProcessCmd(g),
		newProbeCmd(g),
		newCheckCmd(g),
		newHistoryCmd(g),
	)
	return root
}

// loadConfig reads the configuration and sets up the global logger.
func (g *globalOptions) loadConfig(opts ...config.Option) (*config.Config, error) {
	if g.envFile != "" {
		if err := config.LoadDotEnv(g.envFile); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, err
	}

	level := cfg.Runtime.LogLevel
	if g.logLevel != "" {
		level = g.logLevel
	}
	log.InitLogger(log.ParseLevel(level))
	return cfg, nil
}
