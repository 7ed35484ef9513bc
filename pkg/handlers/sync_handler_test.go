package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/models"
	"github.com/cinelog-io/cinelog-engine/pkg/services"
)

func TestSyncHandler_RunSync(t *testing.T) {
	mock := &mockSyncServiceForHandler{
		result: &services.PrimarySyncResult{
			Username:       "moviefan",
			AccountSynced:  true,
			DiaryCreated:   5,
			WatchlistAdded: 2,
			ItemsProcessed: 7,
		},
	}
	handler := NewSyncHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/sync/moviefan", nil)
	req.SetPathValue("username", "moviefan")
	rec := httptest.NewRecorder()

	handler.RunSync(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "moviefan", mock.lastUsername)
	assert.True(t, mock.lastFetch, "fetch_details defaults to true")

	var response services.PrimarySyncResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, 5, response.DiaryCreated)
	assert.Equal(t, 7, response.ItemsProcessed)
}

func TestSyncHandler_RunSync_FetchDetailsDisabled(t *testing.T) {
	mock := &mockSyncServiceForHandler{result: &services.PrimarySyncResult{}}
	handler := NewSyncHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/sync/moviefan?fetch_details=false", nil)
	req.SetPathValue("username", "moviefan")
	rec := httptest.NewRecorder()

	handler.RunSync(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, mock.lastFetch)
}

func TestSyncHandler_RunSync_InvalidFetchDetails(t *testing.T) {
	mock := &mockSyncServiceForHandler{result: &services.PrimarySyncResult{}}
	handler := NewSyncHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/sync/moviefan?fetch_details=maybe", nil)
	req.SetPathValue("username", "moviefan")
	rec := httptest.NewRecorder()

	handler.RunSync(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncHandler_RunSync_Conflict(t *testing.T) {
	mock := &mockSyncServiceForHandler{syncErr: apperrors.ErrSyncInProgress}
	handler := NewSyncHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/sync/moviefan", nil)
	req.SetPathValue("username", "moviefan")
	rec := httptest.NewRecorder()

	handler.RunSync(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "sync_in_progress", body["error"])
}

func TestSyncHandler_RunSync_SourceFailure(t *testing.T) {
	mock := &mockSyncServiceForHandler{syncErr: errors.New("fetch account moviefan: source returned 503 Service Unavailable")}
	handler := NewSyncHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/sync/moviefan", nil)
	req.SetPathValue("username", "moviefan")
	rec := httptest.NewRecorder()

	handler.RunSync(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSyncHandler_RefreshFilm(t *testing.T) {
	mock := &mockSyncServiceForHandler{
		film: &models.Film{Slug: "the-godfather", Title: "The Godfather", DetailsFetched: true},
	}
	handler := NewSyncHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/films/the-godfather/refresh", nil)
	req.SetPathValue("slug", "the-godfather")
	rec := httptest.NewRecorder()

	handler.RefreshFilm(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var film models.Film
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&film))
	assert.Equal(t, "The Godfather", film.Title)
}

func TestSyncHandler_RefreshFilm_NotFound(t *testing.T) {
	mock := &mockSyncServiceForHandler{refreshErr: apperrors.ErrNotFound}
	handler := NewSyncHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/films/never-seen/refresh", nil)
	req.SetPathValue("slug", "never-seen")
	rec := httptest.NewRecorder()

	handler.RefreshFilm(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
