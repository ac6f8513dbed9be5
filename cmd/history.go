package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Youngzheimer/subtrans/internal/apperr"
	"github.com/Youngzheimer/subtrans/internal/config"
	"github.com/Youngzheimer/subtrans/internal/persistence"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCmd(g *globalOptions) *cobra.Command {
	var (
		limit int
		video string
		prune time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent processing attempts recorded in HISTORY_DB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(config.WithoutAPIKey())
			if err != nil {
				return err
			}
			if cfg.Runtime.HistoryDB == "" {
				return apperr.New(apperr.KindConfig, "HISTORY_DB is not set")
			}

			journal, err := persistence.OpenJournal(cfg.Runtime.HistoryDB)
			if err != nil {
				return err
			}
			defer journal.Close()

			out := cmd.OutOrStdout()
			if prune > 0 {
				n, err := journal.Prune(cmd.Context(), time.Now().Add(-prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d entries\n", n)
			}

			var entries []persistence.Entry
			if video != "" {
				entries, err = journal.ForVideo(cmd.Context(), video)
			} else {
				entries, err = journal.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No entries")
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	cmd.Flags().StringVar(&video, "video", "", "show every attempt for one video path")
	cmd.Flags().DurationVar(&prune, "prune", 0, "delete entries older than this before listing (e.g. 720h)")
	return cmd
}

func renderHistory(entries []persistence.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.Output
		if e.Error != "" {
			detail = e.Error
		}
		rows = append(rows, []string{
			humanize.Time(e.FinishedAt),
			e.Status,
			e.Stage,
			e.Video,
			strconv.Itoa(e.Cues),
			e.SourceLanguage,
			e.Duration().Round(time.Millisecond).String(),
			detail,
		})
	}
	return renderTable(
		[]string{"When", "Status", "Stage", "Video", "Cues", "From", "Took", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
	)
}
