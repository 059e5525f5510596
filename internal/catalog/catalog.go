// Package catalog defines the read-only view of a media library that the
// audit engine works against, and a Plex-backed implementation of it.
package catalog

import (
	"context"
	"errors"
)

// Artist is a library artist. Only the title is used.
type Artist interface {
	Title() string
}

// Album is an immutable album snapshot: title, album artist and ordered tracks.
type Album interface {
	Title() string
	Artist() Artist
	Tracks() []Track
}

// Track is a single library track.
type Track interface {
	// Index is the position within the album (0 when unknown).
	Index() int
	Title() string
	// Parts lists the file paths backing the track, primary file first.
	Parts() []string
	Album() Album
	Artist() Artist
}

// Section is one named library within the catalog.
type Section interface {
	Title() string
	// Albums returns every album in catalog order with tracks populated.
	Albums(ctx context.Context) ([]Album, error)
	SearchArtists(ctx context.Context) ([]Artist, error)
	SearchTracks(ctx context.Context, filter TrackFilter) ([]Track, error)
}

// Catalog is the queryable view of a media server.
type Catalog interface {
	Section(ctx context.Context, name string) (Section, error)
	Sections(ctx context.Context) ([]SectionInfo, error)
}

// SectionInfo describes a section without loading it.
type SectionInfo struct {
	Key   string
	Title string
	Type  string
}

// TrackFilter restricts SearchTracks. A nil field matches everything.
type TrackFilter struct {
	Title *string
}

// EmptyTitle matches tracks whose title is the empty string.
func EmptyTitle() TrackFilter {
	empty := ""
	return TrackFilter{Title: &empty}
}

var (
	// ErrSectionNotFound is returned when no section has the requested name.
	ErrSectionNotFound = errors.New("catalog: section not found")

	// ErrNoFileParts is returned for tracks that have no file on disk.
	ErrNoFileParts = errors.New("catalog: track has no file parts")
)

// PrimaryFile returns the first file part of a track.
func PrimaryFile(t Track) (string, error) {
	parts := t.Parts()
	if len(parts) == 0 {
		return "", ErrNoFileParts
	}
	return parts[0], nil
}
