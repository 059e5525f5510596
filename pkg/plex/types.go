package plex

import "encoding/xml"

// Library item types accepted by the section "all" endpoint.
const (
	TypeArtist = 8
	TypeAlbum  = 9
	TypeTrack  = 10
)

// ServerInfo describes the server answering at the configured URL.
type ServerInfo struct {
	XMLName           xml.Name `xml:"MediaContainer"`
	FriendlyName      string   `xml:"friendlyName,attr"`
	MachineIdentifier string   `xml:"machineIdentifier,attr"`
	Version           string   `xml:"version,attr"`
	Platform          string   `xml:"platform,attr"`
}

// Section is a library section such as "Music".
type Section struct {
	Key   string `xml:"key,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"` // "artist" for music libraries
	Agent string `xml:"agent,attr"`
}

// Artist is a library artist.
type Artist struct {
	RatingKey string `xml:"ratingKey,attr"`
	Title     string `xml:"title,attr"`
}

// Album is a library album. ParentTitle is the album artist.
type Album struct {
	RatingKey       string `xml:"ratingKey,attr"`
	Title           string `xml:"title,attr"`
	ParentRatingKey string `xml:"parentRatingKey,attr"`
	ParentTitle     string `xml:"parentTitle,attr"`
	Year            int    `xml:"year,attr"`
}

// Track is a library track.
//
// ParentTitle is the album title and GrandparentTitle the album artist.
// ParentIndex is the disc number.
type Track struct {
	RatingKey            string  `xml:"ratingKey,attr"`
	Title                string  `xml:"title,attr"`
	Index                int     `xml:"index,attr"`
	ParentIndex          int     `xml:"parentIndex,attr"`
	ParentRatingKey      string  `xml:"parentRatingKey,attr"`
	ParentTitle          string  `xml:"parentTitle,attr"`
	GrandparentRatingKey string  `xml:"grandparentRatingKey,attr"`
	GrandparentTitle     string  `xml:"grandparentTitle,attr"`
	OriginalTitle        string  `xml:"originalTitle,attr"`
	Media                []Media `xml:"Media"`
}

// Media is one encoding of a track.
type Media struct {
	ID        string `xml:"id,attr"`
	Container string `xml:"container,attr"`
	Parts     []Part `xml:"Part"`
}

// Part is one file backing a Media item.
type Part struct {
	ID   string `xml:"id,attr"`
	File string `xml:"file,attr"`
	Size int64  `xml:"size,attr"`
}

// Files returns the file paths of every part of every media item, in order.
func (t Track) Files() []string {
	var files []string
	for _, m := range t.Media {
		for _, p := range m.Parts {
			if p.File != "" {
				files = append(files, p.File)
			}
		}
	}
	return files
}

// Account is the plex.tv user returned by sign-in.
type Account struct {
	ID        int64  `json:"id"`
	UUID      string `json:"uuid"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AuthToken string `json:"authToken"`
}

type container struct {
	Size      int `xml:"size,attr"`
	TotalSize int `xml:"totalSize,attr"`
	Offset    int `xml:"offset,attr"`
}

type sectionContainer struct {
	container
	Sections []Section `xml:"Directory"`
}

type artistContainer struct {
	container
	Artists []Artist `xml:"Directory"`
}

type albumContainer struct {
	container
	Albums []Album `xml:"Directory"`
}

type trackContainer struct {
	container
	Tracks []Track `xml:"Track"`
}
