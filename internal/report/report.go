// Package report renders lint results for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"

	"github.com/jfmyers9/plexlint/internal/audit"
	"github.com/jfmyers9/plexlint/internal/catalog"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultCellWidth is the display width long table cells are cut to.
const DefaultCellWidth = 48

// Result holds everything found in one library section.
type Result struct {
	Section          string
	AlbumDuplicates  *audit.OrderedMap[string, []catalog.Album]
	ArtistDuplicates []string
	UntitledTracks   []audit.UntitledTrack
	// Mismatches is nil when the classifier was not run.
	Mismatches *audit.MismatchReport
}

// Renderer writes results to Out.
type Renderer struct {
	Out    io.Writer
	Format string
	// CellWidth bounds the display width of table cells; 0 means
	// DefaultCellWidth and a negative value disables truncation.
	CellWidth int
	// LogPath is named in the unreadable-files warning.
	LogPath string
}

// NewRenderer validates format and returns a Renderer.
func NewRenderer(out io.Writer, format, logPath string) (*Renderer, error) {
	switch format {
	case "", FormatText:
		format = FormatText
	case FormatJSON:
	default:
		return nil, fmt.Errorf("unknown format %q (want %q or %q)", format, FormatText, FormatJSON)
	}
	return &Renderer{Out: out, Format: format, LogPath: logPath}, nil
}

// Render writes one section's results.
func (r *Renderer) Render(res Result) error {
	if r.Format == FormatJSON {
		return r.renderJSON(res)
	}
	return r.renderText(res)
}

// NotFound reports a library that does not exist on the server.
func (r *Renderer) NotFound(section string) error {
	if r.Format == FormatJSON {
		return json.NewEncoder(r.Out).Encode(map[string]string{
			"section": section,
			"error":   "library not found",
		})
	}
	_, err := fmt.Fprintf(r.Out, "Library %s not found, skipping\n", section)
	return err
}

func (r *Renderer) renderText(res Result) error {
	var b strings.Builder

	dupes := res.AlbumDuplicates
	if dupes == nil {
		dupes = audit.NewOrderedMap[string, []catalog.Album]()
	}
	fmt.Fprintf(&b, "Found %d album name dupes in library %s\n", dupes.Len(), res.Section)
	if dupes.Len() > 0 {
		var rows [][]string
		dupes.Each(func(title string, albums []catalog.Album) bool {
			for _, a := range albums {
				rows = append(rows, []string{title, a.Artist().Title()})
			}
			return true
		})
		b.WriteString(r.table([]string{"Title", "Artist"}, rows, nil))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Found %d artist name dupes in library %s\n", len(res.ArtistDuplicates), res.Section)
	if len(res.ArtistDuplicates) > 0 {
		rows := make([][]string, len(res.ArtistDuplicates))
		for i, name := range res.ArtistDuplicates {
			rows[i] = []string{name}
		}
		b.WriteString(r.table([]string{"Artist"}, rows, nil))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Found %d tracks without titles in library %s\n", len(res.UntitledTracks), res.Section)
	if len(res.UntitledTracks) > 0 {
		rows := make([][]string, len(res.UntitledTracks))
		for i, t := range res.UntitledTracks {
			rows[i] = []string{strconv.Itoa(t.Index), t.AlbumTitle, t.ArtistTitle}
		}
		b.WriteString(r.table([]string{"#", "Album", "Artist"}, rows, []text.Align{text.AlignRight}))
		b.WriteString("\n")
	}

	if m := res.Mismatches; m != nil {
		for _, label := range audit.Labels {
			records := m.Bucket(label)
			fmt.Fprintf(&b, "Found %d tracks %s in library %s\n", len(records), headline(label), res.Section)
			if len(records) > 0 {
				b.WriteString(r.table(
					[]string{"Track", "Album", "Album Artist", "Tag Album Artist", "Tag Artist", "Tag Sort"},
					mismatchRows(records), nil))
				b.WriteString("\n")
			}
		}
		if m.TerminatedEarly {
			fmt.Fprintf(&b, "Error: %d errors caught trying to access files so we are giving up. Check %s for more details.\n",
				m.ErrorCount, r.LogPath)
		} else if m.ErrorCount > 0 {
			fmt.Fprintf(&b, "Warning: %d errors detected when trying to read files from disk. See %s for more details.\n",
				m.ErrorCount, r.LogPath)
		}
	}

	_, err := io.WriteString(r.Out, b.String())
	return err
}

func headline(label string) string {
	switch label {
	case audit.LabelArtistMismatch:
		return "with potentially mismatched artists"
	case audit.LabelVariousArtistsMismatch:
		return "with potentially bad various artists tags"
	case audit.LabelAlbumArtistSortSet:
		return "with albumartistsort tag set"
	}
	return label
}

func mismatchRows(records []audit.MismatchRecord) [][]string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = []string{
			rec.TrackTitle,
			rec.AlbumTitle,
			rec.CatalogAlbumArtist,
			rec.TagAlbumArtist,
			rec.TagArtist,
			rec.TagAlbumArtistSort,
		}
	}
	return rows
}

func (r *Renderer) table(headers []string, rows [][]string, aligns []text.Align) string {
	width := r.CellWidth
	if width == 0 {
		width = DefaultCellWidth
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		tr := make(table.Row, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			tr[i] = truncate(cell, width)
		}
		tw.AppendRow(tr)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		align := text.AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// truncate cuts text to width display columns, ending in "..." when cut.
// Text that fits is returned unchanged.
func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}

	ellipsis := "..."
	ellipsisWidth := runewidth.StringWidth(ellipsis)
	if width <= ellipsisWidth {
		return runewidth.Truncate(ellipsis, width, "")
	}
	return runewidth.Truncate(s, width-ellipsisWidth, "") + ellipsis
}

type jsonAlbum struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

type jsonAlbumGroup struct {
	Title  string      `json:"title"`
	Albums []jsonAlbum `json:"albums"`
}

type jsonResult struct {
	Section          string                `json:"section"`
	AlbumDuplicates  []jsonAlbumGroup      `json:"album_duplicates"`
	ArtistDuplicates []string              `json:"artist_duplicates"`
	UntitledTracks   []audit.UntitledTrack `json:"untitled_tracks"`
	Mismatches       *audit.MismatchReport `json:"mismatches,omitempty"`
}

func (r *Renderer) renderJSON(res Result) error {
	out := jsonResult{
		Section:          res.Section,
		AlbumDuplicates:  []jsonAlbumGroup{},
		ArtistDuplicates: res.ArtistDuplicates,
		UntitledTracks:   res.UntitledTracks,
		Mismatches:       res.Mismatches,
	}
	if out.ArtistDuplicates == nil {
		out.ArtistDuplicates = []string{}
	}
	if out.UntitledTracks == nil {
		out.UntitledTracks = []audit.UntitledTrack{}
	}
	if res.AlbumDuplicates != nil {
		res.AlbumDuplicates.Each(func(title string, albums []catalog.Album) bool {
			group := jsonAlbumGroup{Title: title}
			for _, a := range albums {
				group.Albums = append(group.Albums, jsonAlbum{Title: a.Title(), Artist: a.Artist().Title()})
			}
			out.AlbumDuplicates = append(out.AlbumDuplicates, group)
			return true
		})
	}

	enc := json.NewEncoder(r.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
