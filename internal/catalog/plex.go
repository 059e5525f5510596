package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/jfmyers9/plexlint/pkg/plex"
	"github.com/rs/zerolog"
)

// PlexCatalog is a Catalog backed by a Plex Media Server.
type PlexCatalog struct {
	client *plex.Client
	info   *plex.ServerInfo
	logger zerolog.Logger
}

// Connect creates a Plex client and verifies the URL/token pair.
//
// A rejected token returns an error matching plex.ErrUnauthorized; an
// unreachable server returns the underlying transport error.
func Connect(ctx context.Context, cfg plex.Config, logger zerolog.Logger) (*PlexCatalog, error) {
	logger = logger.With().Str("component", "catalog").Logger()
	if cfg.Logger == nil {
		cfg.Logger = NewPlexLogger(logger)
	}

	client, err := plex.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	info, err := client.ServerInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", client.BaseURL(), err)
	}

	logger.Info().
		Str("server", info.FriendlyName).
		Str("version", info.Version).
		Msg("Connected to Plex server")

	return &PlexCatalog{client: client, info: info, logger: logger}, nil
}

// ServerName returns the friendly name of the connected server.
func (c *PlexCatalog) ServerName() string {
	return c.info.FriendlyName
}

// Sections lists the server's library sections.
func (c *PlexCatalog) Sections(ctx context.Context) ([]SectionInfo, error) {
	sections, err := c.client.Library().Sections(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]SectionInfo, len(sections))
	for i, s := range sections {
		infos[i] = SectionInfo{Key: s.Key, Title: s.Title, Type: s.Type}
	}
	return infos, nil
}

// Section resolves a section by exact title.
func (c *PlexCatalog) Section(ctx context.Context, name string) (Section, error) {
	sections, err := c.client.Library().Sections(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		if s.Title == name {
			return &plexSection{client: c.client, section: s, logger: c.logger}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, name)
}

type plexSection struct {
	client  *plex.Client
	section plex.Section
	logger  zerolog.Logger
}

func (s *plexSection) Title() string {
	return s.section.Title
}

// Albums fetches the section's albums and all of its tracks in two listings
// and assembles album snapshots, tracks ordered by disc then index.
func (s *plexSection) Albums(ctx context.Context) ([]Album, error) {
	albums, err := s.client.Library().Albums(ctx, s.section.Key)
	if err != nil {
		return nil, err
	}
	tracks, err := s.client.Library().Tracks(ctx, s.section.Key, nil)
	if err != nil {
		return nil, err
	}

	byAlbum := make(map[string][]plex.Track, len(albums))
	for _, t := range tracks {
		byAlbum[t.ParentRatingKey] = append(byAlbum[t.ParentRatingKey], t)
	}

	result := make([]Album, 0, len(albums))
	for _, a := range albums {
		albumTracks := byAlbum[a.RatingKey]
		sort.SliceStable(albumTracks, func(i, j int) bool {
			if albumTracks[i].ParentIndex != albumTracks[j].ParentIndex {
				return albumTracks[i].ParentIndex < albumTracks[j].ParentIndex
			}
			return albumTracks[i].Index < albumTracks[j].Index
		})
		result = append(result, NewAlbum(a.Title, NewArtist(a.ParentTitle), trackSpecs(albumTracks)...))
	}

	s.logger.Debug().
		Str("section", s.section.Title).
		Int("albums", len(result)).
		Int("tracks", len(tracks)).
		Msg("Loaded section albums")

	return result, nil
}

func (s *plexSection) SearchArtists(ctx context.Context) ([]Artist, error) {
	artists, err := s.client.Library().Artists(ctx, s.section.Key)
	if err != nil {
		return nil, err
	}
	result := make([]Artist, len(artists))
	for i, a := range artists {
		result[i] = NewArtist(a.Title)
	}
	return result, nil
}

// SearchTracks returns matching tracks. Each track's Album is a lightweight
// snapshot carrying only the album title and artist.
func (s *plexSection) SearchTracks(ctx context.Context, filter TrackFilter) ([]Track, error) {
	var query plex.Filter
	if filter.Title != nil {
		query = plex.Filter{"title": *filter.Title}
	}
	tracks, err := s.client.Library().Tracks(ctx, s.section.Key, query)
	if err != nil {
		return nil, err
	}

	result := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		parent := NewAlbum(t.ParentTitle, NewArtist(t.GrandparentTitle), trackSpecs([]plex.Track{t})...)
		result = append(result, parent.Tracks()[0])
	}
	return result, nil
}

func trackSpecs(tracks []plex.Track) []TrackSpec {
	specs := make([]TrackSpec, len(tracks))
	for i, t := range tracks {
		specs[i] = TrackSpec{Index: t.Index, Title: t.Title, Parts: t.Files()}
	}
	return specs
}

// plexLogger adapts zerolog to plex.Logger.
type plexLogger struct {
	logger zerolog.Logger
}

// NewPlexLogger returns a plex.Logger writing debug messages to logger.
func NewPlexLogger(logger zerolog.Logger) plex.Logger {
	return plexLogger{logger: logger}
}

func (l plexLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}
