package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"microlearn/internal/cache"
	"microlearn/internal/domain"
	"microlearn/internal/logger"
	"microlearn/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ContentInput is one upload. Every field is optional, but together they must
// yield some text.
type ContentInput struct {
	Audio     []byte
	AudioMIME string
	Image     []byte
	ImageMIME string
	Text      []byte
	Prompt    string
	SessionID string
}

// GeneratedBundle is a learning bundle plus the text it was generated from.
type GeneratedBundle struct {
	Bundle      *domain.LearningBundle
	Transcript  string
	Caption     string
	InputText   string
	InputPrompt string
	Cached      bool
}

// ProcessResult is a generated bundle bound to a learner session.
type ProcessResult struct {
	GeneratedBundle
	Session *domain.Session
}

// ContentService turns uploads into learning bundles.
type ContentService interface {
	// Generate runs the content pipeline without touching sessions.
	Generate(ctx context.Context, in ContentInput) (*GeneratedBundle, error)
	// Process generates a bundle and then reuses or creates the learner session.
	Process(ctx context.Context, in ContentInput) (*ProcessResult, error)
}

type contentService struct {
	generator   domain.BundleGenerator
	transcriber domain.Transcriber
	captioner   domain.Captioner
	cache       domain.Cache
	cacheTTL    time.Duration
	sessions    SessionService
	shuffle     domain.ShuffleFunc
	newID       func() string
	sfGroup     singleflight.Group
}

// ContentServiceOption customizes a content service.
type ContentServiceOption func(*contentService)

// WithShuffle replaces the option shuffler.
func WithShuffle(shuffle domain.ShuffleFunc) ContentServiceOption {
	return func(s *contentService) { s.shuffle = shuffle }
}

// WithBundleIDs replaces the bundle id generator.
func WithBundleIDs(newID func() string) ContentServiceOption {
	return func(s *contentService) { s.newID = newID }
}

// NewContentService wires the pipeline. A nil transcriber or captioner disables
// that modality. A nil cache disables bundle caching.
func NewContentService(
	generator domain.BundleGenerator,
	transcriber domain.Transcriber,
	captioner domain.Captioner,
	bundleCache domain.Cache,
	cacheTTL time.Duration,
	sessions SessionService,
	opts ...ContentServiceOption,
) ContentService {
	s := &contentService{
		generator:   generator,
		transcriber: transcriber,
		captioner:   captioner,
		cache:       bundleCache,
		cacheTTL:    cacheTTL,
		sessions:    sessions,
		shuffle:     rand.Shuffle,
		newID:       util.NewULID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *contentService) Process(ctx context.Context, in ContentInput) (*ProcessResult, error) {
	generated, err := s.Generate(ctx, in)
	if err != nil {
		return nil, err
	}

	session, err := s.resolveSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	return &ProcessResult{GeneratedBundle: *generated, Session: session}, nil
}

func (s *contentService) Generate(ctx context.Context, in ContentInput) (*GeneratedBundle, error) {
	if len(in.Text) > 0 && !utf8.Valid(in.Text) {
		return nil, domain.NewValidationError("text upload must be UTF-8")
	}

	out := &GeneratedBundle{
		InputText:   string(in.Text),
		InputPrompt: in.Prompt,
	}
	if err := s.analyzeMedia(ctx, in, out); err != nil {
		return nil, err
	}

	combined := combineText(out.Transcript, out.Caption, out.InputText, out.InputPrompt)
	if combined == "" {
		return nil, domain.NewValidationError("no usable content: provide audio, image, text or a prompt")
	}

	bundle, cached, err := s.bundleFor(ctx, combined)
	if err != nil {
		return nil, err
	}
	out.Bundle = bundle
	out.Cached = cached
	return out, nil
}

// analyzeMedia runs transcription and captioning concurrently.
func (s *contentService) analyzeMedia(ctx context.Context, in ContentInput, out *GeneratedBundle) error {
	if len(in.Audio) > 0 && s.transcriber == nil {
		return domain.NewValidationError("audio input is not enabled on this server")
	}
	if len(in.Image) > 0 && s.captioner == nil {
		return domain.NewValidationError("image input is not enabled on this server")
	}

	g, gctx := errgroup.WithContext(ctx)
	if len(in.Audio) > 0 {
		g.Go(func() error {
			transcript, err := s.transcriber.Transcribe(gctx, in.Audio, in.AudioMIME)
			if err != nil {
				return err
			}
			out.Transcript = transcript
			return nil
		})
	}
	if len(in.Image) > 0 {
		g.Go(func() error {
			caption, err := s.captioner.Caption(gctx, in.Image, in.ImageMIME)
			if err != nil {
				return err
			}
			out.Caption = caption
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return err
		}
		return domain.NewUpstreamError("Media analysis failed", err)
	}
	return nil
}

type bundleResult struct {
	bundle *domain.LearningBundle
	cached bool
}

func (s *contentService) bundleFor(ctx context.Context, combined string) (*domain.LearningBundle, bool, error) {
	key := cache.BundleKey(combined)
	if bundle, ok := s.cachedBundle(ctx, key); ok {
		return bundle, true, nil
	}

	res, err, shared := s.sfGroup.Do(key, func() (interface{}, error) {
		// Another caller may have filled the cache while this one waited.
		if bundle, ok := s.cachedBundle(ctx, key); ok {
			return bundleResult{bundle: bundle, cached: true}, nil
		}

		content, err := s.generator.Generate(ctx, combined)
		if err != nil {
			logger.Get().Error("Bundle generation failed", zap.Error(err), zap.Int("input_length", len(combined)))
			if domain.IsUpstream(err) {
				return nil, err
			}
			return nil, domain.NewUpstreamError("Failed to generate learning content", err)
		}

		bundle := domain.NormalizeBundle(s.newID(), content, s.shuffle)
		s.storeBundle(ctx, key, bundle)
		return bundleResult{bundle: bundle}, nil
	})
	if err != nil {
		return nil, false, err
	}

	br := res.(bundleResult)
	if shared {
		logger.Get().Debug("Bundle generation shared between concurrent requests", zap.String("bundle_id", br.bundle.ID))
	}
	return br.bundle, br.cached, nil
}

func (s *contentService) cachedBundle(ctx context.Context, key string) (*domain.LearningBundle, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Bundle cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var bundle domain.LearningBundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		logger.Get().Warn("Discarding undecodable cached bundle", zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	logger.Get().Debug("Bundle cache hit", zap.String("key", key))
	return &bundle, true
}

func (s *contentService) storeBundle(ctx context.Context, key string, bundle *domain.LearningBundle) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(bundle)
	if err != nil {
		logger.Get().Error("Failed to encode bundle for caching", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		logger.Get().Warn("Bundle cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *contentService) resolveSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if strings.TrimSpace(sessionID) != "" {
		session, err := s.sessions.GetSession(ctx, sessionID)
		if err == nil {
			return session, nil
		}
		if !domain.IsNotFound(err) {
			return nil, err
		}
		logger.Get().Info("Unknown session supplied with upload, creating a new one", zap.String("session_id", sessionID))
	}
	return s.sessions.CreateSession(ctx)
}

func combineText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}
