package plex

import (
	"context"
	"fmt"
)

// ServerInfo fetches the server root, which requires a valid token.
//
// It is the cheapest call that proves both reachability and authorization,
// so callers use it to validate a URL/token pair before doing real work.
func (c *Client) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.getXML(ctx, "/", nil, nil, &info); err != nil {
		return nil, fmt.Errorf("plex: fetch server info: %w", err)
	}
	return &info, nil
}
