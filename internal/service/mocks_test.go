package service

import (
	"context"
	"time"

	"microlearn/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockBundleGenerator ---
type MockBundleGenerator struct {
	mock.Mock
}

func (m *MockBundleGenerator) Generate(ctx context.Context, text string) (*domain.GeneratedContent, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedContent), args.Error(1)
}

// --- MockTranscriber ---
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	args := m.Called(ctx, audio, mimeType)
	return args.String(0), args.Error(1)
}

// --- MockCaptioner ---
type MockCaptioner struct {
	mock.Mock
}

func (m *MockCaptioner) Caption(ctx context.Context, image []byte, mimeType string) (string, error) {
	args := m.Called(ctx, image, mimeType)
	return args.String(0), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockSessionService ---
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) session(args mock.Arguments) (*domain.Session, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionService) CreateSession(ctx context.Context) (*domain.Session, error) {
	return m.session(m.Called(ctx))
}

func (m *MockSessionService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return m.session(m.Called(ctx, id))
}

func (m *MockSessionService) RecordQuizResult(ctx context.Context, id, quizKey string, scorePercent float64) (*domain.Session, error) {
	return m.session(m.Called(ctx, id, quizKey, scorePercent))
}

func (m *MockSessionService) RecordFlashcardReview(ctx context.Context, id, cardKey string, wasCorrect bool) (*domain.Session, error) {
	return m.session(m.Called(ctx, id, cardKey, wasCorrect))
}

func (m *MockSessionService) RecordStudyTime(ctx context.Context, id string, seconds int64) (*domain.Session, error) {
	return m.session(m.Called(ctx, id, seconds))
}

func (m *MockSessionService) RecordModuleCompleted(ctx context.Context, id string) (*domain.Session, error) {
	return m.session(m.Called(ctx, id))
}

func (m *MockSessionService) UpdateProgress(ctx context.Context, id, action string, data map[string]interface{}) (*domain.Session, error) {
	return m.session(m.Called(ctx, id, action, data))
}

func (m *MockSessionService) SetPreferences(ctx context.Context, id string, prefs map[string]string) (map[string]string, error) {
	args := m.Called(ctx, id, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockSessionService) GetPreferences(ctx context.Context, id string) (map[string]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}
