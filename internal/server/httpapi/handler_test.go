package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/worldclock/internal/cursor"
	"github.com/dmitrijs2005/worldclock/internal/logging"
	"github.com/dmitrijs2005/worldclock/internal/server/auth"
	"github.com/dmitrijs2005/worldclock/internal/wire"
)

var testSecret = []byte("test-secret")

type fakeSync struct {
	applied    [][]wire.Change
	applyErr   error
	page       []wire.Change
	next       *cursor.Cursor
	changesErr error

	gotAccount string
	gotCursor  cursor.Cursor
}

func (f *fakeSync) ApplyChanges(ctx context.Context, accountID string, changes []wire.Change) error {
	f.gotAccount = accountID
	f.applied = append(f.applied, changes)
	return f.applyErr
}

func (f *fakeSync) Changes(ctx context.Context, accountID string, cur cursor.Cursor) ([]wire.Change, *cursor.Cursor, error) {
	f.gotAccount = accountID
	f.gotCursor = cur
	return f.page, f.next, f.changesErr
}

func newTestServer(t *testing.T, f *fakeSync) *httptest.Server {
	t.Helper()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(NewRouter(NewHandler(f, log), testSecret, log))
	t.Cleanup(srv.Close)
	return srv
}

func bearerFor(t *testing.T, accountID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(accountID, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, authHeader string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthz_NoAuthRequired(t *testing.T) {
	srv := newTestServer(t, &fakeSync{})

	resp := doRequest(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetChanges_MissingToken(t *testing.T) {
	srv := newTestServer(t, &fakeSync{})

	resp := doRequest(t, srv, http.MethodGet, ChangesPath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetChanges_InvalidToken(t *testing.T) {
	srv := newTestServer(t, &fakeSync{})

	resp := doRequest(t, srv, http.MethodGet, ChangesPath, "Bearer not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetChanges_EmptyFeed(t *testing.T) {
	f := &fakeSync{}
	srv := newTestServer(t, f)

	resp := doRequest(t, srv, http.MethodGet, ChangesPath, bearerFor(t, "acc1"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"changes":[],"next":null}`, string(body))
	assert.Equal(t, "acc1", f.gotAccount)
	assert.True(t, f.gotCursor.IsZero())
}

func TestGetChanges_FullPageCarriesNextURL(t *testing.T) {
	next := cursor.Cursor{UpdatedAt: "2024-03-01T09:00:00Z", ID: "clock-9"}
	f := &fakeSync{
		page: []wire.Change{{ID: "clock-1", Timezone: "Europe/Riga", Position: "U",
			UpdatedAt: "2024-03-01T09:00:00Z", ClientUpdatedAt: "2024-03-01T08:59:00Z"}},
		next: &next,
	}
	srv := newTestServer(t, f)

	resp := doRequest(t, srv, http.MethodGet, ChangesPath, bearerFor(t, "acc1"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got wire.ChangesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Changes, 1)
	require.NotNil(t, got.Next)
	assert.True(t, strings.HasPrefix(*got.Next, ChangesPath+"?cursor="))

	// The token in the next URL decodes back to the cursor the service
	// returned.
	u, err := url.Parse(*got.Next)
	require.NoError(t, err)
	assert.Equal(t, next, cursor.Decode(u.Query().Get("cursor")))
}

func TestGetChanges_CursorTokenPassedToService(t *testing.T) {
	f := &fakeSync{}
	srv := newTestServer(t, f)

	cur := cursor.Cursor{UpdatedAt: "2024-03-01T09:00:00Z", ID: "clock-5"}
	resp := doRequest(t, srv, http.MethodGet, ChangesPath+"?cursor="+cur.Encode(), bearerFor(t, "acc1"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, cur, f.gotCursor)
}

func TestGetChanges_GarbageCursorRestartsFromZero(t *testing.T) {
	f := &fakeSync{}
	srv := newTestServer(t, f)

	resp := doRequest(t, srv, http.MethodGet, ChangesPath+"?cursor=%21%21garbage", bearerFor(t, "acc1"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, f.gotCursor.IsZero())
}

func TestGetChanges_SinceFallback(t *testing.T) {
	f := &fakeSync{}
	srv := newTestServer(t, f)

	resp := doRequest(t, srv, http.MethodGet, ChangesPath+"?since=2024-03-01T09:00:00Z", bearerFor(t, "acc1"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, cursor.Cursor{UpdatedAt: "2024-03-01T09:00:00Z"}, f.gotCursor)
}

func TestGetChanges_ServiceError(t *testing.T) {
	f := &fakeSync{changesErr: errors.New("db down")}
	srv := newTestServer(t, f)

	resp := doRequest(t, srv, http.MethodGet, ChangesPath, bearerFor(t, "acc1"), nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPatchChanges_Accepted(t *testing.T) {
	f := &fakeSync{}
	srv := newTestServer(t, f)

	body, err := json.Marshal([]wire.Change{
		{ID: "clock-1", Timezone: "Europe/Riga", Label: "Riga", Position: "U", UpdatedAt: "2024-03-01T09:00:00Z"},
		{ID: "clock-2", UpdatedAt: "2024-03-01T09:01:00Z", Tombstone: 1},
	})
	require.NoError(t, err)

	resp := doRequest(t, srv, http.MethodPatch, ChangesPath, bearerFor(t, "acc1"), body)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Len(t, f.applied, 1)
	assert.Len(t, f.applied[0], 2)
	assert.Equal(t, "acc1", f.gotAccount)
}

func TestPatchChanges_MalformedBody(t *testing.T) {
	f := &fakeSync{}
	srv := newTestServer(t, f)

	resp := doRequest(t, srv, http.MethodPatch, ChangesPath, bearerFor(t, "acc1"), []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.applied)
}

func TestPatchChanges_ValidationRejectsBatch(t *testing.T) {
	f := &fakeSync{}
	srv := newTestServer(t, f)

	body, err := json.Marshal([]wire.Change{
		{ID: "clock-1", Timezone: "Europe/Riga", Position: "U", UpdatedAt: "2024-03-01T09:00:00Z"},
		{ID: "x", UpdatedAt: "2024-03-01T09:00:00Z"},
	})
	require.NoError(t, err)

	resp := doRequest(t, srv, http.MethodPatch, ChangesPath, bearerFor(t, "acc1"), body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, f.applied, "store must not be touched on a rejected batch")
}

func TestPatchChanges_ServiceError(t *testing.T) {
	f := &fakeSync{applyErr: errors.New("db down")}
	srv := newTestServer(t, f)

	body, err := json.Marshal([]wire.Change{
		{ID: "clock-1", Timezone: "Europe/Riga", Position: "U", UpdatedAt: "2024-03-01T09:00:00Z"},
	})
	require.NoError(t, err)

	resp := doRequest(t, srv, http.MethodPatch, ChangesPath, bearerFor(t, "acc1"), body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRecoverer_PanicBecomes500(t *testing.T) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := Recoverer(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
