package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipvault/clipvault/internal/models"
	"github.com/clipvault/clipvault/internal/repositories"
	"github.com/clipvault/clipvault/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svc := services.NewClipboardService(
		repositories.NewMemoryMetadataStore(),
		repositories.NewMemoryPayloadStore(),
		repositories.NewMemoryOwnerStateStore(),
		0, 0,
	)

	router := chi.NewRouter()
	NewClipboardHandler(svc).Routes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postItem(t *testing.T, server *httptest.Server, ownerID, contentType, payload string) models.ClipboardItem {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/owners/"+ownerID+"/items", strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var item models.ClipboardItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	return item
}

func TestClipboardHandler_AddAndFetch(t *testing.T) {
	server := newTestServer(t)

	item := postItem(t, server, "owner-1", "text/plain", "shared text")
	assert.NotEmpty(t, item.ItemID)
	assert.Equal(t, int64(len("shared text")), item.SizeBytes)

	resp, err := http.Get(server.URL + "/owners/owner-1/items/" + item.ItemID)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "shared text", body.String())
}

func TestClipboardHandler_GetMissingItem(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/owners/owner-1/items/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClipboardHandler_ListAndRemove(t *testing.T) {
	server := newTestServer(t)

	first := postItem(t, server, "owner-1", "text/plain", "first")
	second := postItem(t, server, "owner-1", "text/plain", "second")

	resp, err := http.Get(server.URL + "/owners/owner-1/items?take=1")
	require.NoError(t, err)
	var items []models.ClipboardItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	resp.Body.Close()
	require.Len(t, items, 1)
	assert.Equal(t, second.ItemID, items[0].ItemID)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/owners/owner-1/items/"+first.ItemID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(server.URL + "/owners/owner-1/items?all=true")
	require.NoError(t, err)
	items = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	resp.Body.Close()
	require.Len(t, items, 1)
	assert.Equal(t, second.ItemID, items[0].ItemID)
}

func TestClipboardHandler_PauseBlocksWrites(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodPut, server.URL+"/owners/owner-1/pause", strings.NewReader(`{"is_paused":true}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	var state models.OwnerState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, state.IsPaused)

	addReq, err := http.NewRequest(http.MethodPost, server.URL+"/owners/owner-1/items", strings.NewReader("blocked"))
	require.NoError(t, err)
	addReq.Header.Set("Content-Type", "text/plain")
	resp, err = http.DefaultClient.Do(addReq)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
