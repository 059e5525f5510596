package catalog

// TrackSpec describes a track when building an album snapshot.
type TrackSpec struct {
	Index int
	Title string
	Parts []string
}

type artist struct {
	title string
}

func (a *artist) Title() string { return a.title }

type album struct {
	title  string
	artist Artist
	tracks []Track
}

func (a *album) Title() string   { return a.title }
func (a *album) Artist() Artist  { return a.artist }
func (a *album) Tracks() []Track { return append([]Track(nil), a.tracks...) }

type track struct {
	index int
	title string
	parts []string
	album Album
}

func (t *track) Index() int      { return t.index }
func (t *track) Title() string   { return t.title }
func (t *track) Parts() []string { return append([]string(nil), t.parts...) }
func (t *track) Album() Album    { return t.album }
func (t *track) Artist() Artist  { return t.album.Artist() }

// NewArtist returns an artist snapshot.
func NewArtist(title string) Artist {
	return &artist{title: title}
}

// NewAlbum returns an album snapshot whose tracks point back at it.
// Tracks keep the order given.
func NewAlbum(title string, albumArtist Artist, tracks ...TrackSpec) Album {
	if albumArtist == nil {
		albumArtist = NewArtist("")
	}
	a := &album{title: title, artist: albumArtist}
	a.tracks = make([]Track, 0, len(tracks))
	for _, spec := range tracks {
		a.tracks = append(a.tracks, &track{
			index: spec.Index,
			title: spec.Title,
			parts: append([]string(nil), spec.Parts...),
			album: a,
		})
	}
	return a
}
