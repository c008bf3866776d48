// Package client talks to the microlearn REST API. It is used by the CLI
// study session to fetch bundles and report progress.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"microlearn/internal/config"
	"microlearn/internal/domain"
	"microlearn/internal/dto"
)

const (
	defaultTimeout    = 10 * time.Second
	maxErrorBodyBytes = 1024
	maxBodyBytes      = 16 << 20
)

// Client is a thin JSON client for the session API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Upload is one file attached to a Process call.
type Upload struct {
	Filename string
	Data     []byte
}

// ProcessRequest mirrors the multipart form accepted by POST /process.
type ProcessRequest struct {
	Audio     *Upload
	Image     *Upload
	Text      *Upload
	Prompt    string
	SessionID string
}

// New returns a client for baseURL. A nil httpClient gets a default with timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// NewFromConfig builds a client from the client section of the config.
func NewFromConfig(cfg config.ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return New(cfg.BaseURL, &http.Client{Timeout: timeout})
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Process uploads material and returns the generated bundle.
func (c *Client) Process(ctx context.Context, req ProcessRequest) (*dto.ProcessResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	files := []struct {
		field  string
		upload *Upload
	}{{"audio", req.Audio}, {"image", req.Image}, {"text", req.Text}}
	for _, f := range files {
		if f.upload == nil || len(f.upload.Data) == 0 {
			continue
		}
		part, err := w.CreateFormFile(f.field, f.upload.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s part: %w", f.field, err)
		}
		if _, err := part.Write(f.upload.Data); err != nil {
			return nil, fmt.Errorf("failed to write %s part: %w", f.field, err)
		}
	}
	for field, value := range map[string]string{"prompt": req.Prompt, "session_id": req.SessionID} {
		if value == "" {
			continue
		}
		if err := w.WriteField(field, value); err != nil {
			return nil, fmt.Errorf("failed to write %s field: %w", field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var out dto.ProcessResponse
	if err := c.do(ctx, http.MethodPost, "/process", w.FormDataContentType(), &buf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProgress returns the raw session record.
func (c *Client) GetProgress(ctx context.Context, sessionID string) (*domain.Session, error) {
	var out dto.ProgressResponse
	if err := c.doJSON(ctx, http.MethodGet, "/progress/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	if out.Progress == nil {
		return nil, domain.NewSessionNotFoundError(sessionID)
	}
	return out.Progress, nil
}

// GetSession is an alias of GetProgress.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return c.GetProgress(ctx, sessionID)
}

// RecordQuizResult stores a quiz score in percent.
func (c *Client) RecordQuizResult(ctx context.Context, sessionID, quizID string, score float64) (*domain.Session, error) {
	return c.mutate(ctx, "/quiz-complete", dto.QuizCompleteRequest{SessionID: sessionID, QuizID: quizID, Score: score})
}

// RecordFlashcardReview stores one self-assessment.
func (c *Client) RecordFlashcardReview(ctx context.Context, sessionID, cardID string, correct bool) (*domain.Session, error) {
	return c.mutate(ctx, "/flashcard-review", dto.FlashcardReviewRequest{SessionID: sessionID, CardID: cardID, Correct: correct})
}

// RecordStudyTime adds seconds of study time.
func (c *Client) RecordStudyTime(ctx context.Context, sessionID string, seconds int64) (*domain.Session, error) {
	return c.mutate(ctx, "/study-time", dto.StudyTimeRequest{SessionID: sessionID, Seconds: seconds})
}

// GetAnalytics returns the aggregated view of a session.
func (c *Client) GetAnalytics(ctx context.Context, sessionID string) (*domain.Analytics, error) {
	var out domain.Analytics
	if err := c.doJSON(ctx, http.MethodGet, "/analytics/"+url.PathEscape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the service health report.
func (c *Client) Health(ctx context.Context) (*dto.HealthResponse, error) {
	var out dto.HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) mutate(ctx context.Context, path string, in any) (*domain.Session, error) {
	var out dto.ProgressUpdateResponse
	if err := c.doJSON(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	return out.Progress, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = &buf
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, body, out)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// errorBody is the JSON shape written by the API error handler.
type errorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details"`
}

// decodeError turns an API error response into a *domain.DomainError so
// callers can use the domain predicates on remote failures.
func decodeError(status int, raw []byte) error {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Code == "" {
		return domain.NewError(codeForStatus(status),
			fmt.Sprintf("unexpected status %d", status),
			errors.New(strings.TrimSpace(string(raw))))
	}
	code := domain.ErrorCode(body.Code)
	if code == "HTTP_ERROR" {
		code = codeForStatus(status)
	}
	derr := domain.NewError(code, body.Message, nil)
	for k, v := range body.Details {
		derr.WithContext(k, v)
	}
	return derr
}

func codeForStatus(status int) domain.ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return domain.CodeNotFound
	case status >= 400 && status < 500:
		return domain.CodeValidation
	case status == http.StatusBadGateway:
		return domain.CodeUpstream
	default:
		return domain.CodeInternal
	}
}
