package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"microlearn/internal/config"
	"microlearn/internal/domain"
	"microlearn/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_RecordQuizResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/quiz-complete", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req dto.QuizCompleteRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "s1", req.SessionID)
		assert.Equal(t, "quiz-1", req.QuizID)
		assert.Equal(t, 66.7, req.Score)

		s := domain.NewSession("s1", time.Now())
		s.QuizScores["quiz-1"] = req.Score
		writeJSON(t, w, http.StatusOK, dto.ProgressUpdateResponse{Success: true, Progress: s})
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/", nil)
	s, err := c.RecordQuizResult(context.Background(), "s1", "quiz-1", 66.7)
	require.NoError(t, err)
	assert.Equal(t, 66.7, s.QuizScores["quiz-1"])
}

func TestClient_ErrorBodyBecomesDomainError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{
			"code":    "NOT_FOUND",
			"message": "Session not found",
			"status":  404,
			"details": map[string]any{"session_id": "ghost"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.GetProgress(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "Session not found", derr.Message)
	assert.Equal(t, "ghost", derr.Context["session_id"])
}

func TestClient_NonJSONErrorUsesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).GetAnalytics(context.Background(), "s1")
	require.Error(t, err)
	assert.True(t, domain.IsUpstream(err))
}

func TestClient_ProcessSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/process", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "explain it", r.FormValue("prompt"))
		assert.Equal(t, "s1", r.FormValue("session_id"))

		f, fh, err := r.FormFile("text")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "notes.txt", fh.Filename)
		assert.Equal(t, "cells divide", string(data))

		_, _, err = r.FormFile("audio")
		assert.Error(t, err)

		writeJSON(t, w, http.StatusOK, dto.ProcessResponse{
			SessionID: "s1",
			Bundle:    &domain.LearningBundle{ID: "b1", Summary: "mitosis"},
		})
	}))
	defer srv.Close()

	res, err := New(srv.URL, nil).Process(context.Background(), ProcessRequest{
		Text:      &Upload{Filename: "notes.txt", Data: []byte("cells divide")},
		Prompt:    "explain it",
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", res.SessionID)
	assert.Equal(t, "mitosis", res.Bundle.Summary)
}

func TestClient_AnalyticsAndHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analytics/s1":
			writeJSON(t, w, http.StatusOK, domain.Analytics{SessionID: "s1", TotalQuizzes: 2, AverageQuizScore: 75})
		case "/health":
			writeJSON(t, w, http.StatusOK, dto.HealthResponse{Status: "healthy", Service: "microlearn"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewFromConfig(config.ClientConfig{BaseURL: srv.URL})
	a, err := c.GetAnalytics(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, a.TotalQuizzes)
	assert.Equal(t, 75.0, a.AverageQuizScore)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
}

func TestAsyncReporter_CountsAndWaits(t *testing.T) {
	var (
		mu      sync.Mutex
		reviews []dto.FlashcardReviewRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/flashcard-review":
			var req dto.FlashcardReviewRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			mu.Lock()
			reviews = append(reviews, req)
			mu.Unlock()
			writeJSON(t, w, http.StatusOK, dto.ProgressUpdateResponse{Success: true})
		default:
			writeJSON(t, w, http.StatusBadRequest, map[string]any{"code": "VALIDATION_ERROR", "message": "score out of range"})
		}
	}))
	defer srv.Close()

	r := NewAsyncReporter(New(srv.URL, nil), time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, r.ReportFlashcardReview(ctx, "s1", "deck:0", true))
	require.NoError(t, r.ReportFlashcardReview(ctx, "s1", "deck:1", false))
	require.NoError(t, r.ReportQuizResult(ctx, "s1", "quiz", 101))
	// Cancelling the caller's context must not abort in-flight reports.
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, r.Wait(waitCtx))

	assert.Equal(t, int64(2), r.Sent())
	assert.Equal(t, int64(1), r.Failures())
	mu.Lock()
	assert.Len(t, reviews, 2)
	mu.Unlock()
}

type blockingWriter struct {
	release chan struct{}
}

func (b blockingWriter) RecordQuizResult(ctx context.Context, _, _ string, _ float64) (*domain.Session, error) {
	select {
	case <-b.release:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b blockingWriter) RecordFlashcardReview(context.Context, string, string, bool) (*domain.Session, error) {
	return nil, nil
}

func TestAsyncReporter_TimeoutCountsAsFailure(t *testing.T) {
	w := blockingWriter{release: make(chan struct{})}
	r := NewAsyncReporter(w, 20*time.Millisecond)

	require.NoError(t, r.ReportQuizResult(context.Background(), "s1", "quiz", 50))
	require.NoError(t, r.Wait(context.Background()))

	assert.Equal(t, int64(1), r.Failures())
	assert.Zero(t, r.Sent())
}

func TestAsyncReporter_WaitHonoursContext(t *testing.T) {
	w := blockingWriter{release: make(chan struct{})}
	r := NewAsyncReporter(w, time.Minute)
	require.NoError(t, r.ReportQuizResult(context.Background(), "s1", "quiz", 50))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)

	close(w.release)
	require.NoError(t, r.Wait(context.Background()))
	assert.Equal(t, int64(1), r.Sent())
}
