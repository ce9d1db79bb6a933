package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/worldclock/internal/common"
	"github.com/dmitrijs2005/worldclock/internal/cursor"
	"github.com/dmitrijs2005/worldclock/internal/wire"
)

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "/healthz", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	assert.NoError(t, c.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	assert.Error(t, c.Ping(context.Background()))
}

func TestPushChanges_SendsBatchWithAuth(t *testing.T) {
	var gotAuth string
	var gotBody []wire.Change
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/sync/changes", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	err := c.PushChanges(context.Background(), []wire.Change{
		{ID: "clock-1", Timezone: "Europe/Riga", Position: "U", UpdatedAt: "2024-03-01T09:00:00Z"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	require.Len(t, gotBody, 1)
	assert.Equal(t, "clock-1", gotBody[0].ID)
}

func TestPushChanges_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "bad")
	err := c.PushChanges(context.Background(), nil)
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))
}

func TestPullChanges_PageAndNext(t *testing.T) {
	next := "/sync/changes?cursor=" + (cursor.Cursor{UpdatedAt: "2024-03-01T09:00:00Z", ID: "clock-9"}).Encode()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "", r.URL.Query().Get("cursor"), "zero cursor omits the parameter")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(wire.ChangesResponse{
			Changes: []wire.Change{{ID: "clock-1", Timezone: "Europe/Riga", Position: "U",
				UpdatedAt: "2024-03-01T09:00:00Z", ClientUpdatedAt: "2024-03-01T08:59:00Z"}},
			Next: &next,
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	page, nc, err := c.PullChanges(context.Background(), cursor.Cursor{})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.NotNil(t, nc)
	assert.Equal(t, cursor.Cursor{UpdatedAt: "2024-03-01T09:00:00Z", ID: "clock-9"}, *nc)
}

func TestPullChanges_SendsCursor(t *testing.T) {
	cur := cursor.Cursor{UpdatedAt: "2024-03-01T09:00:00Z", ID: "clock-5"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, cur, cursor.Decode(r.URL.Query().Get("cursor")))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(wire.ChangesResponse{Changes: []wire.Change{}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	page, nc, err := c.PullChanges(context.Background(), cur)
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.Nil(t, nc)
}

func TestPullChanges_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "bad")
	_, _, err := c.PullChanges(context.Background(), cursor.Cursor{})
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))
}
