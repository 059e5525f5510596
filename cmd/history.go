package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/plexlint/internal/config"
	"github.com/jfmyers9/plexlint/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previous lint runs",
	Long: `Show the lint runs recorded in the history database, newest first.

Use --run to list the findings recorded for one run.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().String("section", "", "Only show runs for this library")
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to show (0=all)")
	historyCmd.Flags().String("run", "", "Show the findings of this run ID")
	historyCmd.Flags().Duration("prune", 0, "Delete runs older than this age before listing (e.g. 720h)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := cfg.HistoryPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
		return nil
	}

	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()

	if prune, _ := cmd.Flags().GetDuration("prune"); prune > 0 {
		deleted, err := store.Cleanup(ctx, prune)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d old runs\n", deleted)
	}

	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		findings, err := store.Findings(ctx, runID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderFindings(findings))
		return nil
	}

	section, _ := cmd.Flags().GetString("section")
	limit, _ := cmd.Flags().GetInt("limit")

	runs, err := store.List(ctx, section, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs))
	return nil
}

func renderRuns(runs []history.Run) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run", "Library", "Started", "Took", "Albums", "Artists", "Untitled", "Mismatch", "VA", "Sort", "Errors"})

	for _, r := range runs {
		mismatch, va, sort, errs := "-", "-", "-", "-"
		if r.Local {
			mismatch = strconv.Itoa(r.ArtistMismatch)
			va = strconv.Itoa(r.VariousArtistsMismatch)
			sort = strconv.Itoa(r.AlbumArtistSortSet)
			errs = strconv.Itoa(r.TagErrors)
			if r.TerminatedEarly {
				errs += " (stopped)"
			}
		}
		tw.AppendRow(table.Row{
			r.ID,
			r.Section,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
			r.AlbumDuplicates,
			r.ArtistDuplicates,
			r.UntitledTracks,
			mismatch,
			va,
			sort,
			errs,
		})
	}

	return tw.Render()
}

func renderFindings(findings []history.Finding) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Kind", "Title", "Album", "Artist", "Detail"})

	for _, f := range findings {
		tw.AppendRow(table.Row{
			f.Kind,
			f.Title,
			f.Album,
			f.Artist,
			f.Detail,
		})
	}

	return tw.Render()
}
