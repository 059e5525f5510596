//go:build integration
// +build integration

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2"
)

// buildBinary builds plexlint into a temp dir
func buildBinary(t *testing.T) string {
	t.Helper()

	bin := filepath.Join(t.TempDir(), "plexlint_test")
	buildCmd := exec.Command("go", "build", "-o", bin, ".")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build binary: %v\n%s", err, out)
	}
	return bin
}

// writeTrack writes an MP3 holding only an ID3v2 tag
func writeTrack(t *testing.T, path string, frames map[string]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	tag := id3v2.NewEmptyTag()
	for id, text := range frames {
		tag.AddTextFrame(id, id3v2.EncodingUTF8, text)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	defer f.Close()
	if _, err := tag.WriteTo(f); err != nil {
		t.Fatalf("Failed to write tag: %v", err)
	}
}

// newFakePlex serves one music library whose tracks point at files under root
func newFakePlex(t *testing.T, root string) *httptest.Server {
	t.Helper()

	vaPath := filepath.Join(root, "Various Artists", "Now", "01.mp3")
	bobPath := filepath.Join(root, "Bob Jones", "Greatest Hits", "01.mp3")
	brokenPath := filepath.Join(root, "Ann Smith", "Greatest Hits", "01.mp3")

	writeTrack(t, vaPath, map[string]string{"TPE1": "Bob Jones", "TPE2": "Bob Jones"})
	writeTrack(t, bobPath, map[string]string{"TPE1": "Robert Jones", "TPE2": "Robert Jones", "TSO2": "Jones, Robert"})
	if err := os.MkdirAll(filepath.Dir(brokenPath), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(brokenPath, []byte("ID3"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	albums := `<MediaContainer size="3" totalSize="3">
  <Directory ratingKey="10" title="Now" parentTitle="Various Artists"/>
  <Directory ratingKey="20" title="Greatest Hits" parentTitle="Bob Jones"/>
  <Directory ratingKey="30" title="Greatest Hits" parentTitle="Ann Smith"/>
</MediaContainer>`
	artists := `<MediaContainer size="3" totalSize="3">
  <Directory title="Various Artists"/><Directory title="Bob Jones"/><Directory title="Ann Smith"/>
</MediaContainer>`
	tracks := fmt.Sprintf(`<MediaContainer size="3" totalSize="3">
  <Track title="One" index="1" parentIndex="1" parentRatingKey="10"><Media><Part file=%q/></Media></Track>
  <Track title="Two" index="1" parentIndex="1" parentRatingKey="20"><Media><Part file=%q/></Media></Track>
  <Track title="" index="1" parentIndex="1" parentRatingKey="30"><Media><Part file=%q/></Media></Track>
</MediaContainer>`, vaPath, bobPath, brokenPath)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Plex-Token") != "test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, `<MediaContainer friendlyName="test" version="1.40"/>`)
		case "/library/sections":
			fmt.Fprint(w, `<MediaContainer size="1"><Directory key="1" title="Music" type="artist"/></MediaContainer>`)
		case "/library/sections/1/all":
			switch r.URL.Query().Get("type") {
			case "8":
				fmt.Fprint(w, artists)
			case "9":
				fmt.Fprint(w, albums)
			case "10":
				fmt.Fprint(w, tracks)
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// TestLintLocalJSON runs a full local lint against a fake server
func TestLintLocalJSON(t *testing.T) {
	bin := buildBinary(t)
	root := t.TempDir()
	server := newFakePlex(t, root)

	cmd := exec.Command(bin, "--yes", "--local", "--format", "json", "--no-history",
		"--config", filepath.Join(root, "config.toml"),
		"--log-file", filepath.Join(root, "plexlint.log"))
	cmd.Env = append(os.Environ(),
		"PLEXLINT_SERVER_SERVER_URL="+server.URL,
		"PLEXLINT_SERVER_SERVER_TOKEN=test-token",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("plexlint failed: %v\nstderr: %s", err, stderr.String())
	}

	var result struct {
		Section         string `json:"section"`
		AlbumDuplicates []struct {
			Title string `json:"title"`
		} `json:"album_duplicates"`
		UntitledTracks []struct {
			Album string `json:"album"`
		} `json:"untitled_tracks"`
		Mismatches struct {
			ArtistMismatch         []struct{ Track string } `json:"artist_mismatch"`
			VariousArtistsMismatch []struct{ Track string } `json:"various_artists_mismatch"`
			AlbumArtistSortSet     []struct{ Track string } `json:"albumartistsort_set"`
			ErrorCount             int                      `json:"error_count"`
			TerminatedEarly        bool                     `json:"terminated_early"`
		} `json:"mismatches"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, stdout.String())
	}

	if result.Section != "Music" {
		t.Errorf("Expected section Music, got %q", result.Section)
	}
	if len(result.AlbumDuplicates) != 1 || result.AlbumDuplicates[0].Title != "Greatest Hits" {
		t.Errorf("Expected Greatest Hits duplicate, got %+v", result.AlbumDuplicates)
	}
	if len(result.UntitledTracks) != 1 {
		t.Errorf("Expected 1 untitled track, got %+v", result.UntitledTracks)
	}
	m := result.Mismatches
	if len(m.VariousArtistsMismatch) != 1 || m.VariousArtistsMismatch[0].Track != "One" {
		t.Errorf("Expected track One in various artists bucket, got %+v", m.VariousArtistsMismatch)
	}
	if len(m.ArtistMismatch) != 1 || m.ArtistMismatch[0].Track != "Two" {
		t.Errorf("Expected track Two in artist bucket, got %+v", m.ArtistMismatch)
	}
	if len(m.AlbumArtistSortSet) != 1 {
		t.Errorf("Expected one sort tag finding, got %+v", m.AlbumArtistSortSet)
	}
	if m.ErrorCount != 1 || m.TerminatedEarly {
		t.Errorf("Expected 1 unreadable file, got %d (terminated=%v)", m.ErrorCount, m.TerminatedEarly)
	}

	if !strings.Contains(stderr.String(), "Done!") {
		t.Errorf("Expected Done! on stderr, got %q", stderr.String())
	}
}

// TestDeclinedConfirmation exits 1 when the library list is not confirmed
func TestDeclinedConfirmation(t *testing.T) {
	bin := buildBinary(t)
	root := t.TempDir()
	server := newFakePlex(t, root)

	cmd := exec.Command(bin, "--config", filepath.Join(root, "config.toml"), "--log-file", "-")
	cmd.Env = append(os.Environ(),
		"PLEXLINT_SERVER_SERVER_URL="+server.URL,
		"PLEXLINT_SERVER_SERVER_TOKEN=test-token",
	)
	cmd.Stdin = strings.NewReader("n\n")

	err := cmd.Run()
	exitErr, ok := err.(*exec.ExitError)
	if !ok || exitErr.ExitCode() != 1 {
		t.Errorf("Expected exit code 1, got %v", err)
	}
}

// TestRejectedToken exits 1 when the stored token is refused
func TestRejectedToken(t *testing.T) {
	bin := buildBinary(t)
	root := t.TempDir()
	server := newFakePlex(t, root)

	cmd := exec.Command(bin, "--yes", "--config", filepath.Join(root, "config.toml"), "--log-file", "-")
	cmd.Env = append(os.Environ(),
		"PLEXLINT_SERVER_SERVER_URL="+server.URL,
		"PLEXLINT_SERVER_SERVER_TOKEN=wrong",
	)

	err := cmd.Run()
	exitErr, ok := err.(*exec.ExitError)
	if !ok || exitErr.ExitCode() != 1 {
		t.Errorf("Expected exit code 1, got %v", err)
	}
}

// TestVersionFlag prints the version
func TestVersionFlag(t *testing.T) {
	bin := buildBinary(t)

	out, err := exec.Command(bin, "-v").Output()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if !strings.HasPrefix(string(out), "plexlint (version ") {
		t.Errorf("Unexpected version output %q", out)
	}
}
