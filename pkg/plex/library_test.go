package plex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:          server.URL,
		Token:            "test-token",
		ClientIdentifier: "test-client",
		HTTPClient:       server.Client(),
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestServerInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Plex-Token"); got != "test-token" {
			t.Errorf("expected token header test-token, got %q", got)
		}
		if got := r.Header.Get("X-Plex-Client-Identifier"); got != "test-client" {
			t.Errorf("expected client identifier test-client, got %q", got)
		}
		if got := r.Header.Get("X-Plex-Product"); got != DefaultProduct {
			t.Errorf("expected product %q, got %q", DefaultProduct, got)
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = fmt.Fprint(w, `<MediaContainer friendlyName="den" machineIdentifier="abc123" version="1.40.0"/>`)
	})

	info, err := client.ServerInfo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.FriendlyName != "den" || info.MachineIdentifier != "abc123" {
		t.Errorf("unexpected server info %+v", info)
	}
}

func TestServerInfoUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ServerInfo(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestServerInfoNoToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a token")
	})
	client.SetToken("")

	_, err := client.ServerInfo(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
}

func TestServerErrorIsRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = fmt.Fprint(w, `<MediaContainer size="1"><Directory key="1" title="Music" type="artist"/></MediaContainer>`)
	})

	sections, err := client.Library().Sections(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 calls, got %d", got)
	}
}

func TestNotFoundIsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	})

	_, err := client.Library().AlbumTracks(context.Background(), "999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestSections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/sections" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = fmt.Fprint(w, `<MediaContainer size="2">
  <Directory key="1" title="Music" type="artist" agent="tv.plex.agents.music"/>
  <Directory key="2" title="Movies" type="movie"/>
</MediaContainer>`)
	})

	sections, err := client.Library().Sections(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Key != "1" || sections[0].Title != "Music" || sections[0].Type != "artist" {
		t.Errorf("unexpected first section %+v", sections[0])
	}
}

func TestAlbumsPaged(t *testing.T) {
	const total = 5
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/sections/1/all" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("type"); got != "9" {
			t.Errorf("expected type=9, got %q", got)
		}
		start, _ := strconv.Atoi(r.Header.Get("X-Plex-Container-Start"))
		size, _ := strconv.Atoi(r.Header.Get("X-Plex-Container-Size"))

		fmt.Fprintf(w, `<MediaContainer totalSize="%d" offset="%d">`, total, start)
		for i := start; i < start+size && i < total; i++ {
			fmt.Fprintf(w, `<Directory ratingKey="%d" title="Album %d" parentTitle="Artist"/>`, 100+i, i)
		}
		fmt.Fprint(w, `</MediaContainer>`)
	})
	client.Library().pageSize = 2

	albums, err := client.Library().Albums(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(albums) != total {
		t.Fatalf("expected %d albums, got %d", total, len(albums))
	}
	for i, a := range albums {
		if a.Title != fmt.Sprintf("Album %d", i) {
			t.Errorf("album %d: unexpected title %q", i, a.Title)
		}
		if a.ParentTitle != "Artist" {
			t.Errorf("album %d: unexpected artist %q", i, a.ParentTitle)
		}
	}
}

func TestAlbumsServerCapsPageSize(t *testing.T) {
	const total, maxPage = 7, 3
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		start, _ := strconv.Atoi(r.Header.Get("X-Plex-Container-Start"))

		fmt.Fprintf(w, `<MediaContainer totalSize="%d" offset="%d">`, total, start)
		for i := start; i < start+maxPage && i < total; i++ {
			fmt.Fprintf(w, `<Directory ratingKey="%d" title="Album %d" parentTitle="Artist"/>`, 100+i, i)
		}
		fmt.Fprint(w, `</MediaContainer>`)
	})
	client.Library().pageSize = 5

	albums, err := client.Library().Albums(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(albums) != total {
		t.Fatalf("expected %d albums, got %d", total, len(albums))
	}
	if got := atomic.LoadInt32(&requests); got != 3 {
		t.Errorf("expected 3 page requests, got %d", got)
	}
}

func TestAlbumsWithoutTotalSize(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, `<MediaContainer size="2">
			<Directory ratingKey="1" title="One" parentTitle="Artist"/>
			<Directory ratingKey="2" title="Two" parentTitle="Artist"/>
		</MediaContainer>`)
	})
	client.Library().pageSize = 5

	albums, err := client.Library().Albums(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(albums) != 2 {
		t.Errorf("expected 2 albums, got %d", len(albums))
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("expected a single request, got %d", got)
	}
}

func TestArtists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "8" {
			t.Errorf("expected type=8, got %q", got)
		}
		_, _ = fmt.Fprint(w, `<MediaContainer size="2" totalSize="2">
  <Directory ratingKey="1" title="Bob Jones"/>
  <Directory ratingKey="2" title="Bob Jones"/>
</MediaContainer>`)
	})

	artists, err := client.Library().Artists(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artists) != 2 || artists[1].Title != "Bob Jones" {
		t.Errorf("unexpected artists %+v", artists)
	}
}

func TestTracksWithFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("type"); got != "10" {
			t.Errorf("expected type=10, got %q", got)
		}
		if _, ok := q["title"]; !ok {
			t.Error("expected title filter to be present")
		}
		_, _ = fmt.Fprint(w, `<MediaContainer size="1" totalSize="1">
  <Track ratingKey="7" title="" index="3" parentIndex="1" parentRatingKey="70" parentTitle="Live" grandparentTitle="Bob Jones">
    <Media id="1" container="flac">
      <Part id="11" file="/music/Bob Jones/Live/03.flac" size="1234"/>
    </Media>
  </Track>
</MediaContainer>`)
	})

	tracks, err := client.Library().Tracks(context.Background(), "1", Filter{"title": ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	tr := tracks[0]
	if tr.Index != 3 || tr.ParentTitle != "Live" || tr.GrandparentTitle != "Bob Jones" {
		t.Errorf("unexpected track %+v", tr)
	}
	files := tr.Files()
	if len(files) != 1 || files[0] != "/music/Bob Jones/Live/03.flac" {
		t.Errorf("unexpected files %v", files)
	}
}

func TestTrackFilesSkipsEmptyParts(t *testing.T) {
	tr := Track{Media: []Media{
		{Parts: []Part{{File: ""}, {File: "/a.mp3"}}},
		{Parts: []Part{{File: "/b.mp3"}}},
	}}
	files := tr.Files()
	if len(files) != 2 || files[0] != "/a.mp3" || files[1] != "/b.mp3" {
		t.Errorf("unexpected files %v", files)
	}
	if got := (Track{}).Files(); len(got) != 0 {
		t.Errorf("expected no files, got %v", got)
	}
}

func TestContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected with a cancelled context")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Library().Albums(ctx, "1"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
