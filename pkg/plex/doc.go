// Package plex provides a small client for the Plex Media Server HTTP API.
//
// # Overview
//
// The package covers the read-only subset of the Plex API needed to inspect
// a music library: server identity, library sections, albums, artists and
// tracks, plus the plex.tv account sign-in used to obtain a token. It is
// designed to be used as a standalone SDK.
//
// # Quick Start
//
//	import "github.com/jfmyers9/plexlint/pkg/plex"
//
//	client, err := plex.NewClient(plex.Config{
//	    BaseURL: "http://192.168.1.10:32400",
//	    Token:   "your-plex-token",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	info, err := client.ServerInfo(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Connected to", info.FriendlyName)
//
// # Authentication
//
// A token can be obtained from plex.tv with a username and password:
//
//	account, err := client.Account().SignIn(ctx, "user", "password")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client.SetToken(account.AuthToken)
//	// Store account.AuthToken for future use
//
// # Library
//
//	sections, err := client.Library().Sections(ctx)
//	albums, err := client.Library().Albums(ctx, sections[0].Key)
//	tracks, err := client.Library().Tracks(ctx, sections[0].Key, plex.Filter{"title": ""})
//
// Collection endpoints are paged transparently using the
// X-Plex-Container-Start and X-Plex-Container-Size headers.
//
// # Error Handling
//
// HTTP failures are returned as *Error values carrying the status code.
// Sentinel values support errors.Is:
//
//	if errors.Is(err, plex.ErrUnauthorized) {
//	    // token missing, expired or revoked
//	}
//
// Server errors (5xx) and network errors are retried with exponential
// backoff before being returned.
package plex
