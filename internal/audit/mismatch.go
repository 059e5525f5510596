package audit

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/plexlint/internal/catalog"
	"github.com/jfmyers9/plexlint/internal/tags"
)

// Classification labels.
const (
	LabelArtistMismatch         = "artist-mismatch"
	LabelVariousArtistsMismatch = "various-artists-mismatch"
	LabelAlbumArtistSortSet     = "albumartistsort-set"
)

// Labels lists the classification labels in report order.
var Labels = []string{
	LabelArtistMismatch,
	LabelVariousArtistsMismatch,
	LabelAlbumArtistSortSet,
}

const (
	variousArtists = "Various Artists"
	compilations   = "Compilations"
)

// MismatchRecord is one track placed in a classification bucket.
type MismatchRecord struct {
	TrackTitle         string `json:"track"`
	AlbumTitle         string `json:"album"`
	CatalogAlbumArtist string `json:"catalog_album_artist"`
	TagAlbumArtist     string `json:"tag_album_artist"`
	TagAlbumArtistSort string `json:"tag_album_artist_sort,omitempty"`
	TagArtist          string `json:"tag_artist"`
	Path               string `json:"path"`
	Label              string `json:"label"`
}

// MismatchReport holds the outcome of one classifier run.
type MismatchReport struct {
	ArtistMismatch         []MismatchRecord `json:"artist_mismatch"`
	VariousArtistsMismatch []MismatchRecord `json:"various_artists_mismatch"`
	AlbumArtistSortSet     []MismatchRecord `json:"albumartistsort_set"`

	// ErrorCount is the number of files whose tags could not be read.
	ErrorCount int `json:"error_count"`
	// TerminatedEarly is set when ErrorCount went past MaxUnreadableFiles
	// and the remaining albums were skipped.
	TerminatedEarly bool `json:"terminated_early"`
	// AlbumsProcessed counts albums whose tracks were visited, including
	// the one that exhausted the error budget.
	AlbumsProcessed int `json:"albums_processed"`
}

// Bucket returns the records for label, or nil for an unknown label.
func (r *MismatchReport) Bucket(label string) []MismatchRecord {
	switch label {
	case LabelArtistMismatch:
		return r.ArtistMismatch
	case LabelVariousArtistsMismatch:
		return r.VariousArtistsMismatch
	case LabelAlbumArtistSortSet:
		return r.AlbumArtistSortSet
	}
	return nil
}

// Total returns the number of records across all buckets.
func (r *MismatchReport) Total() int {
	return len(r.ArtistMismatch) + len(r.VariousArtistsMismatch) + len(r.AlbumArtistSortSet)
}

func (r *MismatchReport) add(label string, rec MismatchRecord) {
	rec.Label = label
	switch label {
	case LabelArtistMismatch:
		r.ArtistMismatch = append(r.ArtistMismatch, rec)
	case LabelVariousArtistsMismatch:
		r.VariousArtistsMismatch = append(r.VariousArtistsMismatch, rec)
	case LabelAlbumArtistSortSet:
		r.AlbumArtistSortSet = append(r.AlbumArtistSortSet, rec)
	}
}

// Progress receives album-level progress from a classifier run.
type Progress interface {
	Start(total int)
	Advance()
	Finish()
}

type noProgress struct{}

func (noProgress) Start(int) {}
func (noProgress) Advance()  {}
func (noProgress) Finish()   {}

// Classifier compares each track's embedded tags with the album artist
// recorded in the catalog.
type Classifier struct {
	Reader   tags.Reader
	Logger   zerolog.Logger
	Progress Progress
	// MaxErrors overrides MaxUnreadableFiles when positive.
	MaxErrors int
}

// Classify visits albums and their tracks in order and sorts each track into
// zero or more buckets. Unreadable files are logged and counted; once the
// count exceeds the budget the partial report is returned with
// TerminatedEarly set and a nil error. A non-nil error is returned only when
// ctx is done.
func (c *Classifier) Classify(ctx context.Context, albums []catalog.Album) (*MismatchReport, error) {
	progress := c.Progress
	if progress == nil {
		progress = noProgress{}
	}
	limit := c.MaxErrors
	if limit <= 0 {
		limit = MaxUnreadableFiles
	}

	report := &MismatchReport{}
	budget := NewErrorBudget(limit)

	progress.Start(len(albums))
	defer progress.Finish()

	for _, album := range albums {
		if err := ctx.Err(); err != nil {
			report.ErrorCount = budget.Count()
			return report, err
		}

		report.AlbumsProcessed++
		if !c.classifyAlbum(album, budget, report) {
			report.ErrorCount = budget.Count()
			report.TerminatedEarly = true
			c.Logger.Error().
				Int("errors", budget.Count()).
				Str("album", album.Title()).
				Msg("Too many unreadable files, giving up")
			return report, nil
		}
		progress.Advance()
	}

	report.ErrorCount = budget.Count()
	return report, nil
}

// classifyAlbum returns false when the error budget ran out.
func (c *Classifier) classifyAlbum(album catalog.Album, budget *ErrorBudget, report *MismatchReport) bool {
	catalogArtist := album.Artist().Title()

	for _, track := range album.Tracks() {
		path, err := catalog.PrimaryFile(track)
		if err != nil {
			c.Logger.Debug().
				Str("album", album.Title()).
				Str("track", track.Title()).
				Msg("Track has no file, skipping")
			continue
		}

		md, err := c.Reader.ReadTags(path)
		if err != nil {
			c.Logger.Error().Err(err).Str("path", path).Msg("Failed to read tags")
			if budget.Record() {
				return false
			}
			continue
		}

		rec := MismatchRecord{
			TrackTitle:         track.Title(),
			AlbumTitle:         album.Title(),
			CatalogAlbumArtist: catalogArtist,
			TagAlbumArtist:     md.AlbumArtist,
			TagAlbumArtistSort: md.AlbumArtistSort,
			TagArtist:          md.Artist,
			Path:               path,
		}
		for _, label := range Classify(catalogArtist, path, md) {
			report.add(label, rec)
		}
	}
	return true
}

// Classify returns the labels for one track given the catalog album artist,
// the track's file path and its tags. A track can carry several labels.
//
// The various-artists rule also fires when only the artist folder is named
// "Various Artists" or "Compilations", even if catalog and tags agree on a
// named artist.
func Classify(catalogArtist, path string, md tags.Metadata) []string {
	var labels []string

	if md.AlbumArtistSort != "" {
		labels = append(labels, LabelAlbumArtistSortSet)
	}

	folder := ArtistFolder(path)
	if catalogArtist == variousArtists || folder == variousArtists || folder == compilations {
		if !(catalogArtist == variousArtists && md.AlbumArtist == variousArtists) {
			labels = append(labels, LabelVariousArtistsMismatch)
		}
	} else if md.AlbumArtist != catalogArtist && md.Artist != catalogArtist {
		labels = append(labels, LabelArtistMismatch)
	}

	return labels
}

// ArtistFolder returns the name of the directory two levels above path,
// which is the artist folder in an <artist>/<album>/<track> layout.
func ArtistFolder(path string) string {
	return filepath.Base(filepath.Dir(filepath.Dir(path)))
}
