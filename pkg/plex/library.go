package plex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// LibraryService provides read-only library browsing.
type LibraryService struct {
	client   *Client
	pageSize int
}

const defaultPageSize = 1000

// Filter holds additional query filters for section searches, e.g.
// Filter{"title": ""} to match tracks with an empty title.
type Filter map[string]string

// Sections lists every library section on the server.
func (l *LibraryService) Sections(ctx context.Context) ([]Section, error) {
	var resp sectionContainer
	if err := l.client.getXML(ctx, "/library/sections", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("plex: list sections: %w", err)
	}
	return resp.Sections, nil
}

// Artists lists every artist in a section.
func (l *LibraryService) Artists(ctx context.Context, sectionKey string) ([]Artist, error) {
	var artists []Artist
	err := l.paginate(ctx, sectionPath(sectionKey), func(start int) (int, int, error) {
		var page artistContainer
		if err := l.page(ctx, sectionPath(sectionKey), typedQuery(TypeArtist, nil), start, &page); err != nil {
			return 0, 0, err
		}
		artists = append(artists, page.Artists...)
		return len(page.Artists), page.TotalSize, nil
	})
	if err != nil {
		return nil, fmt.Errorf("plex: list artists: %w", err)
	}
	return artists, nil
}

// Albums lists every album in a section, in server order.
func (l *LibraryService) Albums(ctx context.Context, sectionKey string) ([]Album, error) {
	var albums []Album
	err := l.paginate(ctx, sectionPath(sectionKey), func(start int) (int, int, error) {
		var page albumContainer
		if err := l.page(ctx, sectionPath(sectionKey), typedQuery(TypeAlbum, nil), start, &page); err != nil {
			return 0, 0, err
		}
		albums = append(albums, page.Albums...)
		return len(page.Albums), page.TotalSize, nil
	})
	if err != nil {
		return nil, fmt.Errorf("plex: list albums: %w", err)
	}
	return albums, nil
}

// Tracks lists the tracks in a section matching filter (nil for all tracks).
func (l *LibraryService) Tracks(ctx context.Context, sectionKey string, filter Filter) ([]Track, error) {
	query := typedQuery(TypeTrack, filter)
	var tracks []Track
	err := l.paginate(ctx, sectionPath(sectionKey), func(start int) (int, int, error) {
		var page trackContainer
		if err := l.page(ctx, sectionPath(sectionKey), query, start, &page); err != nil {
			return 0, 0, err
		}
		tracks = append(tracks, page.Tracks...)
		return len(page.Tracks), page.TotalSize, nil
	})
	if err != nil {
		return nil, fmt.Errorf("plex: list tracks: %w", err)
	}
	return tracks, nil
}

// AlbumTracks lists the tracks of a single album.
func (l *LibraryService) AlbumTracks(ctx context.Context, albumRatingKey string) ([]Track, error) {
	var resp trackContainer
	path := "/library/metadata/" + url.PathEscape(albumRatingKey) + "/children"
	if err := l.client.getXML(ctx, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("plex: list album tracks: %w", err)
	}
	return resp.Tracks, nil
}

// paginate calls fetch with increasing offsets until the server reports no
// more items. fetch returns the number of items in the page and the total.
func (l *LibraryService) paginate(ctx context.Context, path string, fetch func(start int) (int, int, error)) error {
	start := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, total, err := fetch(start)
		if err != nil {
			return err
		}
		start += n
		if n == 0 || (total > 0 && start >= total) {
			return nil
		}
		// Without a totalSize only a short page marks the end. Servers may
		// cap the page below pageSize, so a reported total wins.
		if total == 0 && n < l.pageSize {
			return nil
		}
		l.client.logDebugf("plex: fetched %d/%d items from %s", start, total, path)
	}
}

func (l *LibraryService) page(ctx context.Context, path string, query url.Values, start int, out interface{}) error {
	headers := map[string]string{
		"X-Plex-Container-Start": strconv.Itoa(start),
		"X-Plex-Container-Size":  strconv.Itoa(l.pageSize),
	}
	return l.client.getXML(ctx, path, query, headers, out)
}

func sectionPath(sectionKey string) string {
	return "/library/sections/" + url.PathEscape(sectionKey) + "/all"
}

func typedQuery(itemType int, filter Filter) url.Values {
	q := url.Values{}
	q.Set("type", strconv.Itoa(itemType))
	for k, v := range filter {
		q.Set(k, v)
	}
	return q
}
