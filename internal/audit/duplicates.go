// Package audit finds cataloging defects in a music library: duplicate
// albums and artists, tracks without titles, and tracks whose embedded tags
// disagree with the album artist recorded in the catalog.
package audit

import (
	"strings"

	"github.com/jfmyers9/plexlint/internal/catalog"
)

// UntitledTrack identifies a track whose title is empty or whitespace.
type UntitledTrack struct {
	Index       int    `json:"index"`
	AlbumTitle  string `json:"album"`
	ArtistTitle string `json:"artist"`
}

// AlbumDuplicates groups albums by exact title and returns the groups with
// more than one member. Groups and their members keep first-seen order.
func AlbumDuplicates(albums []catalog.Album) *OrderedMap[string, []catalog.Album] {
	byTitle := NewOrderedMap[string, []catalog.Album]()
	for _, a := range albums {
		group, _ := byTitle.Get(a.Title())
		byTitle.Set(a.Title(), append(group, a))
	}

	dupes := NewOrderedMap[string, []catalog.Album]()
	byTitle.Each(func(title string, group []catalog.Album) bool {
		if len(group) > 1 {
			dupes.Set(title, group)
		}
		return true
	})
	return dupes
}

// ArtistDuplicates returns the titles that occur more than once, in the
// order each was first seen.
func ArtistDuplicates(titles []string) []string {
	counts := NewOrderedMap[string, int]()
	for _, title := range titles {
		n, _ := counts.Get(title)
		counts.Set(title, n+1)
	}

	var dupes []string
	counts.Each(func(title string, n int) bool {
		if n > 1 {
			dupes = append(dupes, title)
		}
		return true
	})
	return dupes
}

// ArtistTitles returns the title of each artist.
func ArtistTitles(artists []catalog.Artist) []string {
	titles := make([]string, len(artists))
	for i, a := range artists {
		titles[i] = a.Title()
	}
	return titles
}

// TracksWithoutTitle returns every track whose title is empty or only
// whitespace, in album order then track order.
func TracksWithoutTitle(albums []catalog.Album) []UntitledTrack {
	var untitled []UntitledTrack
	for _, a := range albums {
		for _, t := range a.Tracks() {
			if strings.TrimSpace(t.Title()) != "" {
				continue
			}
			untitled = append(untitled, UntitledTrack{
				Index:       t.Index(),
				AlbumTitle:  a.Title(),
				ArtistTitle: a.Artist().Title(),
			})
		}
	}
	return untitled
}
