package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/worldclock/internal/common"
	"github.com/dmitrijs2005/worldclock/internal/cursor"
	"github.com/dmitrijs2005/worldclock/internal/wire"
)

const changesPath = "/sync/changes"

// HTTPClient talks JSON over HTTP to the sync server.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient builds a client for the server at baseURL authenticating
// with the given bearer token.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}
	return nil
}

func (c *HTTPClient) PushChanges(ctx context.Context, changes []wire.Change) error {
	body, err := json.Marshal(changes)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPatch, changesPath, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	default:
		return fmt.Errorf("push rejected: %s", resp.Status)
	}
}

func (c *HTTPClient) PullChanges(ctx context.Context, cur cursor.Cursor) ([]wire.Change, *cursor.Cursor, error) {
	path := changesPath
	if !cur.IsZero() {
		path += "?cursor=" + cur.Encode()
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, nil, common.ErrorUnauthorized
	default:
		return nil, nil, fmt.Errorf("pull rejected: %s", resp.Status)
	}

	var page wire.ChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, nil, fmt.Errorf("malformed pull response: %w", err)
	}

	var next *cursor.Cursor
	if page.Next != nil {
		u, err := url.Parse(*page.Next)
		if err != nil {
			return nil, nil, fmt.Errorf("malformed next url: %w", err)
		}
		n := cursor.Decode(u.Query().Get("cursor"))
		next = &n
	}
	return page.Changes, next, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
