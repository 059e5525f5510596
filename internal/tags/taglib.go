package tags

import (
	"errors"

	"go.senan.xyz/taglib"
)

// TagLibReader reads tags with TagLib (go.senan.xyz/taglib), which exposes
// the normalised property map for every container TagLib supports.
type TagLibReader struct{}

var errNoAudio = errors.New("no audio stream")

// NewTagLibReader creates a TagLibReader.
func NewTagLibReader() *TagLibReader {
	return &TagLibReader{}
}

// ReadTags implements Reader.
//
// TagLib opens some files it cannot decode and hands back an empty tag map,
// so a file without any audio stream is reported as unreadable as well.
func (r *TagLibReader) ReadTags(path string) (Metadata, error) {
	props, err := taglib.ReadTags(path)
	if err != nil {
		return Metadata{}, unreadable(path, err)
	}

	audio, err := taglib.ReadProperties(path)
	if err != nil {
		return Metadata{}, unreadable(path, err)
	}
	if !hasAudio(audio) {
		return Metadata{}, unreadable(path, errNoAudio)
	}

	return Metadata{
		Artist:          first(props, taglib.Artist),
		AlbumArtist:     first(props, taglib.AlbumArtist),
		AlbumArtistSort: first(props, taglib.AlbumArtistSort),
	}, nil
}

func hasAudio(p taglib.Properties) bool {
	return p.Length > 0 || p.SampleRate > 0 || p.Channels > 0
}

// first returns the first value for key, or "" when absent.
func first(props map[string][]string, key string) string {
	if values, ok := props[key]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}
