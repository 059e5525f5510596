// Package linter runs the library checks across configured sections.
package linter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/plexlint/internal/audit"
	"github.com/jfmyers9/plexlint/internal/catalog"
	"github.com/jfmyers9/plexlint/internal/history"
	"github.com/jfmyers9/plexlint/internal/report"
	"github.com/jfmyers9/plexlint/internal/tags"
)

// Config holds linter configuration
type Config struct {
	// Local enables the tag mismatch checks, which read media files.
	Local bool
	// MaxErrors overrides audit.MaxUnreadableFiles when positive.
	MaxErrors int
	// NewProgress builds the progress display for one section's tag scan.
	// Nil disables progress output.
	NewProgress func(section string) audit.Progress
}

// Linter coordinates the catalog, checks, renderer and history store
type Linter struct {
	config   Config
	catalog  catalog.Catalog
	reader   tags.Reader
	renderer *report.Renderer
	history  *history.Store
	logger   zerolog.Logger
}

// New creates a Linter. reader may be nil when cfg.Local is false and store
// may be nil to skip recording history.
func New(cfg Config, cat catalog.Catalog, reader tags.Reader, renderer *report.Renderer, store *history.Store, logger zerolog.Logger) (*Linter, error) {
	if cfg.Local && reader == nil {
		return nil, errors.New("local checks need a tag reader")
	}
	return &Linter{
		config:   cfg,
		catalog:  cat,
		reader:   reader,
		renderer: renderer,
		history:  store,
		logger:   logger.With().Str("component", "linter").Logger(),
	}, nil
}

// Run lints each named section in order. Sections missing from the server are
// reported and skipped; any other failure stops the run.
func (l *Linter) Run(ctx context.Context, sections []string) error {
	for _, name := range sections {
		l.logger.Debug().Str("section", name).Msg("Starting to lint")

		res, run, err := l.lintSection(ctx, name)
		if errors.Is(err, catalog.ErrSectionNotFound) {
			l.logger.Warn().Str("section", name).Msg("Library not found")
			if err := l.renderer.NotFound(name); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to lint %s: %w", name, err)
		}

		if err := l.renderer.Render(res); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		if l.history != nil {
			id, err := l.history.Record(ctx, run)
			if err != nil {
				// History is best effort.
				l.logger.Error().Err(err).Str("section", name).Msg("Failed to record run")
			} else {
				l.logger.Debug().Str("run_id", id).Str("section", name).Msg("Recorded run")
			}
		}
	}
	return nil
}

// LintSection runs every check against one section and returns the results.
func (l *Linter) LintSection(ctx context.Context, name string) (report.Result, error) {
	res, _, err := l.lintSection(ctx, name)
	return res, err
}

func (l *Linter) lintSection(ctx context.Context, name string) (report.Result, history.Run, error) {
	run := history.Run{Section: name, StartedAt: time.Now(), Local: l.config.Local}

	section, err := l.catalog.Section(ctx, name)
	if err != nil {
		return report.Result{}, run, err
	}

	albums, err := section.Albums(ctx)
	if err != nil {
		return report.Result{}, run, fmt.Errorf("failed to fetch albums: %w", err)
	}
	artists, err := section.SearchArtists(ctx)
	if err != nil {
		return report.Result{}, run, fmt.Errorf("failed to fetch artists: %w", err)
	}

	l.logger.Debug().
		Str("section", name).
		Int("albums", len(albums)).
		Int("artists", len(artists)).
		Msg("Fetched section")

	res := report.Result{
		Section:          name,
		AlbumDuplicates:  audit.AlbumDuplicates(albums),
		ArtistDuplicates: audit.ArtistDuplicates(audit.ArtistTitles(artists)),
		UntitledTracks:   audit.TracksWithoutTitle(albums),
	}

	if l.config.Local {
		classifier := &audit.Classifier{
			Reader:    l.reader,
			Logger:    l.logger.With().Str("section", name).Logger(),
			MaxErrors: l.config.MaxErrors,
		}
		if l.config.NewProgress != nil {
			classifier.Progress = l.config.NewProgress(name)
		}

		mismatches, err := classifier.Classify(ctx, albums)
		if err != nil {
			return report.Result{}, run, err
		}
		res.Mismatches = mismatches

		if mismatches.TerminatedEarly {
			l.logger.Warn().
				Str("section", name).
				Int("errors", mismatches.ErrorCount).
				Int("albums_processed", mismatches.AlbumsProcessed).
				Msg("Tag scan stopped early")
		}
	}

	run.FinishedAt = time.Now()
	fillRun(&run, res)
	return res, run, nil
}

// fillRun copies counts and findings from res into run.
func fillRun(run *history.Run, res report.Result) {
	res.AlbumDuplicates.Each(func(title string, albums []catalog.Album) bool {
		run.AlbumDuplicates++
		for _, a := range albums {
			run.Findings = append(run.Findings, history.Finding{
				Kind:   history.KindAlbumDuplicate,
				Title:  title,
				Album:  a.Title(),
				Artist: a.Artist().Title(),
			})
		}
		return true
	})

	run.ArtistDuplicates = len(res.ArtistDuplicates)
	for _, name := range res.ArtistDuplicates {
		run.Findings = append(run.Findings, history.Finding{Kind: history.KindArtistDuplicate, Artist: name})
	}

	run.UntitledTracks = len(res.UntitledTracks)
	for _, t := range res.UntitledTracks {
		run.Findings = append(run.Findings, history.Finding{
			Kind:   history.KindUntitledTrack,
			Album:  t.AlbumTitle,
			Artist: t.ArtistTitle,
			Detail: fmt.Sprintf("track %d", t.Index),
		})
	}

	m := res.Mismatches
	if m == nil {
		return
	}
	run.ArtistMismatch = len(m.ArtistMismatch)
	run.VariousArtistsMismatch = len(m.VariousArtistsMismatch)
	run.AlbumArtistSortSet = len(m.AlbumArtistSortSet)
	run.TagErrors = m.ErrorCount
	run.TerminatedEarly = m.TerminatedEarly

	for _, label := range audit.Labels {
		for _, rec := range m.Bucket(label) {
			run.Findings = append(run.Findings, history.Finding{
				Kind:   label,
				Title:  rec.TrackTitle,
				Album:  rec.AlbumTitle,
				Artist: rec.CatalogAlbumArtist,
				Path:   rec.Path,
				Detail: fmt.Sprintf("tag album artist %q, tag artist %q, sort %q",
					rec.TagAlbumArtist, rec.TagArtist, rec.TagAlbumArtistSort),
			})
		}
	}
}
