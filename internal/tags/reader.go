// Package tags reads the artist-related fields embedded in audio files.
package tags

import (
	"errors"
	"fmt"
)

// Metadata holds the embedded tag fields the audit cares about.
// Absent fields are empty strings.
type Metadata struct {
	Artist          string
	AlbumArtist     string
	AlbumArtistSort string
}

// Reader reads embedded metadata from an audio file.
type Reader interface {
	// ReadTags returns the file's tags. Failures wrap ErrUnreadableFile.
	ReadTags(path string) (Metadata, error)
}

// ErrUnreadableFile is returned when a file cannot be opened or its tags
// cannot be parsed.
var ErrUnreadableFile = errors.New("tags: unreadable file")

// Backend names accepted by NewReader.
const (
	BackendTag    = "tag"
	BackendTagLib = "taglib"
)

// NewReader returns the reader for the named backend. An empty name selects
// BackendTag.
func NewReader(backend string) (Reader, error) {
	switch backend {
	case "", BackendTag:
		return NewNativeReader(), nil
	case BackendTagLib:
		return NewTagLibReader(), nil
	default:
		return nil, fmt.Errorf("tags: unknown backend %q (want %q or %q)", backend, BackendTag, BackendTagLib)
	}
}

// unreadable wraps err so that errors.Is(err, ErrUnreadableFile) holds while
// keeping the original cause and path in the message.
func unreadable(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
}
