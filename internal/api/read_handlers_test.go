package api

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readupapp/readup-server/internal/domain"
)

func TestRecordSession_AccumulatesSameDay(t *testing.T) {
	ts := setupTestServer(t)
	_, authz := ts.createUser(t, "reader@example.com")
	bookID := ts.createBook(t, "The Dispossessed", "", false)

	resp := ts.api.Post("/read/"+bookID+"/session", authz, map[string]any{
		"durationSeconds": 300,
		"lastLocation":    "epubcfi(/6/4!/4/2/1:0)",
		"progressPercent": 12.5,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	first := decodeEnvelope[domain.ReadingSession](t, resp.Body.Bytes())
	assert.True(t, first.Success)
	assert.Equal(t, int64(300), first.Data.DurationSeconds)
	assert.Equal(t, bookID, first.Data.BookID)

	resp = ts.api.Post("/read/"+bookID+"/session", authz, map[string]any{"durationSeconds": 120})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	second := decodeEnvelope[domain.ReadingSession](t, resp.Body.Bytes())
	assert.Equal(t, first.Data.ID, second.Data.ID)
	assert.Equal(t, int64(420), second.Data.DurationSeconds)

	// The empty location on the second event kept the first one.
	resp = ts.api.Get("/tracker/"+bookID, authz)
	require.Equal(t, http.StatusOK, resp.Code)
	state := decodeEnvelope[domain.BookState](t, resp.Body.Bytes())
	assert.Equal(t, domain.StatusReading, state.Data.Status)
	assert.Equal(t, "epubcfi(/6/4!/4/2/1:0)", state.Data.LastLocation)
	assert.InDelta(t, 12.5, state.Data.ProgressPercent, 0.001)
	assert.NotNil(t, state.Data.StartDate)
}

func TestRecordSession_ConcurrentWritersSumExactly(t *testing.T) {
	ts := setupTestServer(t)
	_, authz := ts.createUser(t, "reader@example.com")
	bookID := ts.createBook(t, "Lathe of Heaven", "", false)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			resp := ts.api.Post("/read/"+bookID+"/session", authz, map[string]any{"durationSeconds": 15})
			assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		})
	}
	wg.Wait()

	resp := ts.api.Get("/read/sessions", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	env := decodeEnvelope[[]domain.ReadingSession](t, resp.Body.Bytes())
	require.Len(t, env.Data, 1)
	assert.Equal(t, int64(120), env.Data[0].DurationSeconds)
}

func TestRecordSession_Validation(t *testing.T) {
	ts := setupTestServer(t)
	_, authz := ts.createUser(t, "reader@example.com")
	bookID := ts.createBook(t, "Earthsea", "", false)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "zero duration", body: map[string]any{"durationSeconds": 0}},
		{name: "negative duration", body: map[string]any{"durationSeconds": -5}},
		{name: "missing duration", body: map[string]any{"lastLocation": "p1"}},
		{name: "progress over 100", body: map[string]any{"durationSeconds": 5, "progressPercent": 140}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/read/"+bookID+"/session", authz, tt.body)
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			env := decodeEnvelope[any](t, resp.Body.Bytes())
			assert.False(t, env.Success)
			assert.Equal(t, "VALIDATION", env.Code)
		})
	}

	resp := ts.api.Get("/read/sessions", authz)
	env := decodeEnvelope[[]domain.ReadingSession](t, resp.Body.Bytes())
	assert.Empty(t, env.Data)
}

func TestRecordSession_PrivateBookForbidden(t *testing.T) {
	ts := setupTestServer(t)
	ownerID, ownerAuth := ts.createUser(t, "owner@example.com")
	_, otherAuth := ts.createUser(t, "other@example.com")
	bookID := ts.createBook(t, "Private Diary", ownerID, true)

	resp := ts.api.Post("/read/"+bookID+"/session", otherAuth, map[string]any{"durationSeconds": 60})
	require.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", decodeEnvelope[any](t, resp.Body.Bytes()).Code)

	resp = ts.api.Post("/read/"+bookID+"/session", ownerAuth, map[string]any{"durationSeconds": 60})
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestRecordSession_RateLimited(t *testing.T) {
	ts := setupTestServer(t, withSessionLimit(0.001, 2))
	_, authz := ts.createUser(t, "eager@example.com")
	_, calmAuthz := ts.createUser(t, "calm@example.com")
	bookID := ts.createBook(t, "Always Coming Home", "", false)

	for range 2 {
		resp := ts.api.Post("/read/"+bookID+"/session", authz, map[string]any{"durationSeconds": 1})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Post("/read/"+bookID+"/session", authz, map[string]any{"durationSeconds": 1})
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decodeEnvelope[any](t, resp.Body.Bytes()).Code)

	// Limits are per user.
	resp = ts.api.Post("/read/"+bookID+"/session", calmAuthz, map[string]any{"durationSeconds": 1})
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestListSessions_DateFilters(t *testing.T) {
	ts := setupTestServer(t)
	_, authz := ts.createUser(t, "reader@example.com")
	bookID := ts.createBook(t, "The Word for World Is Forest", "", false)

	resp := ts.api.Post("/read/"+bookID+"/session", authz, map[string]any{"durationSeconds": 60})
	require.Equal(t, http.StatusOK, resp.Code)
	today := decodeEnvelope[domain.ReadingSession](t, resp.Body.Bytes()).Data.Day

	resp = ts.api.Get("/read/sessions?startDate="+today+"&endDate="+today, authz)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeEnvelope[[]domain.ReadingSession](t, resp.Body.Bytes()).Data, 1)

	resp = ts.api.Get("/read/sessions?endDate=2001-01-01", authz)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeEnvelope[[]domain.ReadingSession](t, resp.Body.Bytes()).Data)

	resp = ts.api.Get("/read/sessions?startDate=yesterday", authz)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Contains(t, env.Details, "startDate")

	resp = ts.api.Get("/read/sessions?startDate=2024-02-02&endDate=2024-02-01", authz)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
