// Package app wires configuration into adapters, services and the HTTP server.
// It is shared by the API binary and the offline CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"microlearn/internal/adapter"
	"microlearn/internal/adapter/llm"
	"microlearn/internal/adapter/media"
	"microlearn/internal/cache"
	"microlearn/internal/config"
	"microlearn/internal/domain"
	"microlearn/internal/handler"
	"microlearn/internal/logger"
	"microlearn/internal/middleware"
	"microlearn/internal/repository"
	"microlearn/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Pipeline holds the collaborators of content generation.
type Pipeline struct {
	Generator   domain.BundleGenerator
	Transcriber domain.Transcriber
	Captioner   domain.Captioner

	closers []func() error
}

// Close releases the cloud clients.
func (p *Pipeline) Close() error {
	var errs []error
	for _, closeFn := range p.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// Dependencies is everything the API server needs.
type Dependencies struct {
	*Pipeline
	Store domain.SessionStore
	// Cache is nil when Redis is not configured.
	Cache domain.Cache
	Redis *redis.Client
}

// Close releases the pipeline and the Redis connection.
func (d *Dependencies) Close() error {
	errs := []error{d.Pipeline.Close()}
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	return errors.Join(errs...)
}

// NewGenerator selects the bundle generator for cfg.Provider.
func NewGenerator(cfg config.LLMConfig) (domain.BundleGenerator, error) {
	if cfg.Provider == "mock" {
		logger.Get().Warn("No LLM provider configured, using demo bundles")
		return llm.MockBundleGenerator{}, nil
	}
	model, err := llm.NewModel(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model: %w", cfg.Provider, err)
	}
	logger.Get().Info("LLM bundle generator initialized",
		zap.String("provider", cfg.Provider), zap.String("model", cfg.Model))
	return llm.NewBundleGenerator(model, cfg), nil
}

// NewPipeline builds the generator and the optional media adapters.
func NewPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	generator, err := NewGenerator(cfg.LLM)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{Generator: generator}

	if cfg.Media.Transcriber == "google" {
		t, err := media.NewGoogleSpeechTranscriber(ctx, cfg.Media)
		if err != nil {
			return nil, fmt.Errorf("failed to create speech transcriber: %w", err)
		}
		p.Transcriber = t
		p.closers = append(p.closers, t.Close)
		logger.Get().Info("Google speech transcriber initialized", zap.String("language", cfg.Media.LanguageCode))
	}
	if cfg.Media.Captioner == "google" {
		c, err := media.NewGoogleVisionCaptioner(ctx, cfg.Media)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to create vision captioner: %w", err)
		}
		p.Captioner = c
		p.closers = append(p.closers, c.Close)
		logger.Get().Info("Google vision captioner initialized")
	}
	return p, nil
}

// Build creates the pipeline, the session store and the optional Redis cache.
func Build(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	pipeline, err := NewPipeline(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps := &Dependencies{Pipeline: pipeline}

	if cfg.RedisEnabled() {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			_ = pipeline.Close()
			return nil, err
		}
		logger.Get().Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
		deps.Redis = client
		deps.Cache = adapter.NewRedisCacheAdapter(client)
	}

	switch cfg.Session.Store {
	case "redis":
		deps.Store = repository.NewRedisSessionStore(deps.Redis, cfg.Session.TTL)
		logger.Get().Info("Using Redis session store", zap.Duration("ttl", cfg.Session.TTL))
	default:
		deps.Store = repository.NewMemorySessionStore()
		logger.Get().Info("Using in-memory session store")
	}
	return deps, nil
}

// NewServer assembles services and handlers into a fiber app with every route
// mounted under /api and at the root.
func NewServer(cfg *config.Config, deps *Dependencies) *fiber.App {
	bodyLimit := cfg.Server.BodyLimitMB * 1024 * 1024
	if bodyLimit <= 0 {
		bodyLimit = fiber.DefaultBodyLimit
	}

	sessions := service.NewSessionService(deps.Store, time.Now)
	analytics := service.NewAnalyticsService(sessions, time.Now)

	var bundleCache domain.Cache
	if cfg.Cache.Enabled {
		bundleCache = deps.Cache
	}
	content := service.NewContentService(
		deps.Generator, deps.Transcriber, deps.Captioner,
		bundleCache, cfg.Cache.BundleTTL, sessions,
	)

	handlers := handler.Handlers{
		Content:  handler.NewContentHandler(content, int64(bodyLimit)),
		Progress: handler.NewProgressHandler(sessions, analytics),
		Health:   handler.NewHealthHandler(deps.Cache),
	}

	app := fiber.New(fiber.Config{
		AppName:      handler.ServiceName,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BodyLimit:    bodyLimit,
		// Parsed ids end up as map keys in the session store, so they
		// must not alias fasthttp's pooled request buffers.
		Immutable:    true,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app.Group("/api"), handlers)
	handler.RegisterRoutes(app, handlers)

	return app
}
