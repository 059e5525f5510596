package tags

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// NativeReader reads tags with github.com/dhowden/tag.
//
// Supports ID3v1/v2 (MP3), MP4/M4A, FLAC and OGG. Sort fields are not
// exposed by the library's Metadata interface and are looked up in the raw
// frame map instead.
type NativeReader struct{}

// NewNativeReader creates a NativeReader.
func NewNativeReader() *NativeReader {
	return &NativeReader{}
}

// Raw keys carrying the album artist sort name, by container.
var albumArtistSortKeys = []string{
	"TSO2",            // ID3v2.3/2.4 (iTunes)
	"TS2",             // ID3v2.2
	"albumartistsort", // Vorbis comments (FLAC, OGG)
	"soaa",            // MP4
}

// ReadTags implements Reader.
//
// A file dhowden/tag does not recognise, or one carrying no tags at all, is
// reported as unreadable.
func (r *NativeReader) ReadTags(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, unreadable(path, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Metadata{}, unreadable(path, err)
	}

	return Metadata{
		Artist:          m.Artist(),
		AlbumArtist:     m.AlbumArtist(),
		AlbumArtistSort: albumArtistSort(m.Raw()),
	}, nil
}

func albumArtistSort(raw map[string]interface{}) string {
	for _, key := range albumArtistSortKeys {
		if s := rawString(raw[key]); s != "" {
			return s
		}
	}
	// ID3 user-defined text frames (TXXX, TXXX_0, ...) with a description.
	for key, value := range raw {
		if !strings.HasPrefix(key, "TXX") {
			continue
		}
		if comm, ok := value.(*tag.Comm); ok && strings.EqualFold(comm.Description, "ALBUMARTISTSORT") {
			return comm.Text
		}
	}
	return ""
}

func rawString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []string:
		if len(s) > 0 {
			return s[0]
		}
	}
	return ""
}
