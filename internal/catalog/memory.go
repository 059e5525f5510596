package catalog

import (
	"context"
	"fmt"
)

// MemorySection is a Section over fixed snapshots.
type MemorySection struct {
	title   string
	albums  []Album
	artists []Artist
}

// NewMemorySection returns a section holding albums. When artists is nil the
// distinct album artists are used, in album order.
func NewMemorySection(title string, albums []Album, artists []Artist) *MemorySection {
	if artists == nil {
		seen := make(map[string]bool)
		for _, a := range albums {
			name := a.Artist().Title()
			if !seen[name] {
				seen[name] = true
				artists = append(artists, a.Artist())
			}
		}
	}
	return &MemorySection{
		title:   title,
		albums:  append([]Album(nil), albums...),
		artists: append([]Artist(nil), artists...),
	}
}

func (s *MemorySection) Title() string { return s.title }

func (s *MemorySection) Albums(ctx context.Context) ([]Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Album(nil), s.albums...), nil
}

func (s *MemorySection) SearchArtists(ctx context.Context) ([]Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Artist(nil), s.artists...), nil
}

func (s *MemorySection) SearchTracks(ctx context.Context, filter TrackFilter) ([]Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var tracks []Track
	for _, a := range s.albums {
		for _, t := range a.Tracks() {
			if filter.Title != nil && t.Title() != *filter.Title {
				continue
			}
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

// MemoryCatalog is a Catalog over MemorySections, keyed by exact title.
type MemoryCatalog struct {
	sections []*MemorySection
}

// NewMemoryCatalog returns a catalog holding sections in the given order.
func NewMemoryCatalog(sections ...*MemorySection) *MemoryCatalog {
	return &MemoryCatalog{sections: sections}
}

func (c *MemoryCatalog) Section(ctx context.Context, name string) (Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, s := range c.sections {
		if s.title == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, name)
}

func (c *MemoryCatalog) Sections(ctx context.Context) ([]SectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos := make([]SectionInfo, 0, len(c.sections))
	for i, s := range c.sections {
		infos = append(infos, SectionInfo{
			Key:   fmt.Sprint(i + 1),
			Title: s.title,
			Type:  "artist",
		})
	}
	return infos, nil
}

