package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"microlearn/internal/cache"
	"microlearn/internal/domain"
	"microlearn/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const maxTxRetries = 5

// RedisSessionStore stores each session as a JSON document. Updates use
// optimistic WATCH/MULTI transactions.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates the store. A ttl of 0 keeps sessions forever.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Create(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.NewValidationError("session id is required")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return domain.NewInternalError("failed to encode session", err)
	}
	ok, err := s.client.SetNX(ctx, cache.SessionKey(session.ID), string(data), s.ttl).Result()
	if err != nil {
		return domain.NewInternalError("failed to store session", err)
	}
	if !ok {
		return domain.NewInternalError("session already exists", nil).WithContext("session_id", session.ID)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	return load(ctx, s.client, id)
}

func (s *RedisSessionStore) Update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	key := cache.SessionKey(id)
	var updated *domain.Session

	txf := func(tx *redis.Tx) error {
		session, err := load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		data, err := json.Marshal(session)
		if err != nil {
			return domain.NewInternalError("failed to encode session", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, string(data), s.ttl)
			return nil
		})
		if err == nil {
			updated = session
		}
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			logger.Get().Debug("Session update conflicted, retrying",
				zap.String("session_id", id), zap.Int("attempt", attempt+1))
			continue
		}
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, domain.NewInternalError("failed to update session", err)
	}
	return nil, domain.NewInternalError(fmt.Sprintf("session update did not commit after %d attempts", maxTxRetries), redis.TxFailedErr).
		WithContext("session_id", id)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, c stringGetter, id string) (*domain.Session, error) {
	raw, err := c.Get(ctx, cache.SessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, domain.NewInternalError("failed to read session", err)
	}
	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, domain.NewInternalError("failed to decode session", err)
	}
	if session.QuizScores == nil {
		session.QuizScores = make(map[string]float64)
	}
	if session.Flashcards == nil {
		session.Flashcards = make(map[string]domain.FlashcardRecord)
	}
	if session.Preferences == nil {
		session.Preferences = make(map[string]string)
	}
	return &session, nil
}

var _ domain.SessionStore = (*RedisSessionStore)(nil)
