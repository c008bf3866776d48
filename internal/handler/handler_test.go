package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"microlearn/internal/adapter/llm"
	"microlearn/internal/domain"
	"microlearn/internal/dto"
	"microlearn/internal/handler"
	"microlearn/internal/middleware"
	"microlearn/internal/repository"
	"microlearn/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, cache domain.Cache) *fiber.App {
	t.Helper()
	sessions := service.NewSessionService(repository.NewMemorySessionStore(), nil)
	analytics := service.NewAnalyticsService(sessions, nil)
	content := service.NewContentService(llm.MockBundleGenerator{}, nil, nil, nil, 0, sessions)

	app := fiber.New(fiber.Config{Immutable: true, ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app, handler.Handlers{
		Content:  handler.NewContentHandler(content, 1<<20),
		Progress: handler.NewProgressHandler(sessions, analytics),
		Health:   handler.NewHealthHandler(cache),
	})
	return app
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v), string(body))
}

func processUpload(t *testing.T, app *fiber.App, notes, prompt, sessionID string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if notes != "" {
		fw, err := w.CreateFormFile("text", "notes.txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte(notes))
		require.NoError(t, err)
	}
	if prompt != "" {
		require.NoError(t, w.WriteField("prompt", prompt))
	}
	if sessionID != "" {
		require.NoError(t, w.WriteField("session_id", sessionID))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/process", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func TestLearningWorkflow(t *testing.T) {
	app := newTestApp(t, nil)

	// Step 1: upload notes
	resp := processUpload(t, app, "Photosynthesis converts light energy.", "focus on chlorophyll", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var processed dto.ProcessResponse
	decode(t, resp, &processed)
	sessionID := processed.SessionID
	require.NotEmpty(t, sessionID)
	require.Len(t, processed.Bundle.Questions, 3)
	for _, q := range processed.Bundle.Questions {
		assert.GreaterOrEqual(t, q.CorrectIndex, 0)
		assert.Less(t, q.CorrectIndex, len(q.Options))
	}
	assert.Equal(t, "focus on chlorophyll", processed.InputPrompt)

	// Step 2: quiz result, form encoded
	resp = postForm(t, app, "/quiz-complete", url.Values{
		"session_id": {sessionID}, "quiz_id": {"knowledge_check"}, "score": {"85"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Step 3: three flashcard reviews, JSON
	for i, correct := range []bool{true, false, true} {
		resp = postJSON(t, app, "/flashcard-review", dto.FlashcardReviewRequest{
			SessionID: sessionID,
			CardID:    fmt.Sprintf("%s:%d", processed.Bundle.ID, i),
			Correct:   correct,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// Step 4: module completed via generic action
	resp = postForm(t, app, "/update-progress", url.Values{"session_id": {sessionID}, "action": {"module_completed"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated dto.ProgressUpdateResponse
	decode(t, resp, &updated)
	assert.True(t, updated.Success)

	resp = postJSON(t, app, "/study-time", dto.StudyTimeRequest{SessionID: sessionID, Seconds: 120})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Step 5: final progress
	resp = get(t, app, "/progress/"+sessionID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var progress dto.ProgressResponse
	decode(t, resp, &progress)
	assert.Equal(t, 85.0, progress.Progress.QuizScores["knowledge_check"])
	assert.Equal(t, 1, progress.Progress.CompletedModules)
	assert.Len(t, progress.Progress.Flashcards, 3)
	assert.Equal(t, int64(120), progress.Progress.StudySeconds)

	// Step 6: analytics
	resp = get(t, app, "/analytics/"+sessionID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var analytics domain.Analytics
	decode(t, resp, &analytics)
	assert.Equal(t, 1, analytics.TotalQuizzes)
	assert.Equal(t, 85.0, analytics.AverageQuizScore)
	assert.Equal(t, 3, analytics.FlashcardReviews)
	assert.InDelta(t, 2.0/3.0, analytics.FlashcardAccuracy, 0.0001)
	assert.Equal(t, 1, analytics.StreakDays)

	// Step 7: a second upload reuses the session
	resp = processUpload(t, app, "", "now cellular respiration", sessionID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var again dto.ProcessResponse
	decode(t, resp, &again)
	assert.Equal(t, sessionID, again.SessionID)
	assert.Equal(t, 85.0, again.Progress.QuizScores["knowledge_check"])
}

func TestFormIDsKeepTheirValueAcrossRequests(t *testing.T) {
	app := newTestApp(t, nil)
	resp := processUpload(t, app, "", "enzymes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var processed dto.ProcessResponse
	decode(t, resp, &processed)
	sessionID := processed.SessionID

	resp = postForm(t, app, "/quiz-complete", url.Values{"session_id": {sessionID}, "quiz_id": {"aaaa"}, "score": {"40"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = postForm(t, app, "/flashcard-review", url.Values{"session_id": {sessionID}, "card_id": {"deck:0"}, "correct": {"true"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for i := 0; i < 20; i++ {
		resp = postForm(t, app, "/quiz-complete", url.Values{"session_id": {sessionID}, "quiz_id": {"zzzz"}, "score": {"90"}})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp = get(t, app, "/progress/"+sessionID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var progress dto.ProgressResponse
	decode(t, resp, &progress)
	assert.Equal(t, map[string]float64{"aaaa": 40, "zzzz": 90}, progress.Progress.QuizScores)
	require.Len(t, progress.Progress.Flashcards, 1)
	assert.Contains(t, progress.Progress.Flashcards, "deck:0")
	assert.Equal(t, 1, progress.Progress.Flashcards["deck:0"].CorrectCount)
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	app := newTestApp(t, nil)

	resp := postForm(t, app, "/quiz-complete", url.Values{"session_id": {"invalid-session"}, "quiz_id": {"q"}, "score": {"50"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errResp middleware.ErrorResponse
	decode(t, resp, &errResp)
	assert.Equal(t, "NOT_FOUND", errResp.Code)

	resp = postForm(t, app, "/update-progress", url.Values{"session_id": {"invalid-session"}, "action": {"module_completed"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	for _, path := range []string{"/progress/invalid-session", "/analytics/invalid-session", "/preferences/invalid-session"} {
		assert.Equal(t, http.StatusNotFound, get(t, app, path).StatusCode, path)
	}
}

func TestValidationErrors(t *testing.T) {
	app := newTestApp(t, nil)
	resp := processUpload(t, app, "notes", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var processed dto.ProcessResponse
	decode(t, resp, &processed)

	tests := []struct {
		name string
		resp *http.Response
	}{
		{"score above 100", postForm(t, app, "/quiz-complete", url.Values{"session_id": {processed.SessionID}, "quiz_id": {"q"}, "score": {"150"}})},
		{"missing quiz id", postForm(t, app, "/quiz-complete", url.Values{"session_id": {processed.SessionID}, "score": {"50"}})},
		{"negative study time", postJSON(t, app, "/study-time", dto.StudyTimeRequest{SessionID: processed.SessionID, Seconds: -3})},
		{"unknown action", postForm(t, app, "/update-progress", url.Values{"session_id": {processed.SessionID}, "action": {"teleport"}})},
		{"empty upload", processUpload(t, app, "", "", "")},
		{"malformed json", func() *http.Response {
			req := httptest.NewRequest(http.MethodPost, "/flashcard-review", strings.NewReader("{"))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			r, err := app.Test(req)
			require.NoError(t, err)
			return r
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, tt.resp.StatusCode)
		})
	}
}

func TestProcess_MalformedMultipartIsInvalidBody(t *testing.T) {
	app := newTestApp(t, nil)

	send := func(body string, header map[string]string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEMultipartForm+"; boundary=xyz")
		for k, v := range header {
			req.Header.Set(k, v)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	// The server refuses a truncated body before routing.
	resp := send("--xyz\r\nContent-Disposition: form-data; name=\"text\"; filename=\"notes.txt\"\r\n\r\nhalf a no", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Encoded bodies are parsed on demand, so the handler sees the failure.
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.SetBoundary("xyz"))
	fw, err := w.CreateFormFile("text", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Mitochondria produce ATP."))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp = send(buf.String(), map[string]string{fiber.HeaderContentEncoding: "gzip"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errResp middleware.ErrorResponse
	decode(t, resp, &errResp)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
	assert.Equal(t, "Invalid request body", errResp.Message)
}

func TestPreferencesRoundTrip(t *testing.T) {
	app := newTestApp(t, nil)
	resp := processUpload(t, app, "", "anything", "")
	var processed dto.ProcessResponse
	decode(t, resp, &processed)

	resp = postJSON(t, app, "/preferences", dto.PreferencesRequest{
		SessionID:   processed.SessionID,
		Preferences: map[string]string{"theme": "dark"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, app, "/preferences/"+processed.SessionID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var prefs dto.PreferencesResponse
	decode(t, resp, &prefs)
	assert.Equal(t, "dark", prefs.Preferences["theme"])
}

type pingCache struct {
	err error
}

func (p pingCache) Get(context.Context, string) (string, error)                 { return "", domain.ErrCacheMiss }
func (p pingCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (p pingCache) Delete(context.Context, string) error                       { return nil }
func (p pingCache) Ping(context.Context) error                                 { return p.err }

func TestHealth(t *testing.T) {
	resp := get(t, newTestApp(t, nil), "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health dto.HealthResponse
	decode(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, handler.ServiceVersion, health.Version)

	resp = get(t, newTestApp(t, pingCache{}), "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, newTestApp(t, pingCache{err: errors.New("connection refused")}), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	decode(t, resp, &health)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "connection refused", health.Checks["redis"])
}
