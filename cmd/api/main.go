// Package main is the entrypoint for the Pagescribe web server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pagescribe/pagescribe/internal/auth"
	"github.com/pagescribe/pagescribe/internal/cache"
	"github.com/pagescribe/pagescribe/internal/config"
	"github.com/pagescribe/pagescribe/internal/handler"
	"github.com/pagescribe/pagescribe/internal/metrics"
	"github.com/pagescribe/pagescribe/internal/middleware"
	"github.com/pagescribe/pagescribe/internal/repository"
	"github.com/pagescribe/pagescribe/internal/scraper"
	"github.com/pagescribe/pagescribe/internal/server"
	"github.com/pagescribe/pagescribe/internal/service"
	"github.com/pagescribe/pagescribe/internal/summarizer"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		ConnectTimeout:  cfg.DBConnectTimeout,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	cookies, err := auth.NewCookieSigner(cfg.SecretKey, cfg.SessionTTL, !cfg.IsDevelopment())
	if err != nil {
		logger.Error("failed to initialize session cookies", "error", err)
		os.Exit(1)
	}

	var sum summarizer.Summarizer = summarizer.Disabled{}
	var gemini *summarizer.Gemini
	if cfg.SummarizerEnabled() {
		gemini, err = summarizer.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to initialize summarizer", "error", err)
			os.Exit(1)
		}
		sum = gemini
		logger.Info("summarizer enabled", "model", cfg.GeminiModel)
	} else {
		logger.Warn("GEMINI_API_KEY not set, summarization disabled")
	}

	pages, err := handler.NewPages()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	// Services
	recorder := metrics.NewPrometheus()
	var fetchOpts []scraper.FetcherOption
	if cfg.FetchBlockPrivate {
		fetchOpts = append(fetchOpts, scraper.WithPrivateNetworksBlocked())
	}
	pageScraper := scraper.New(
		scraper.NewFetcher(cfg.FetchTimeout, cfg.FetchUserAgent, cfg.FetchMaxBytes, fetchOpts...),
		scraper.NewExtractor(),
	)
	identities := service.NewIdentityService(repo)
	authService := service.NewAuthService(
		auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL()),
		cacheClient,
		identities,
		cfg.SessionTTL,
		recorder,
	)
	scrapeService := service.NewScrapeService(repo, pageScraper, recorder)
	promptService := service.NewPromptService(repo, repo, sum, recorder)

	// Handlers
	handlers := routes{
		base:      handler.New(logger),
		health:    handler.NewHealthHandler(repo, cacheClient, cfg.SummarizerEnabled(), logger),
		metrics:   handler.NewMetricsHandler(recorder.Handler()),
		auth:      handler.NewAuthHandler(authService, cookies, logger),
		dashboard: handler.NewDashboardHandler(scrapeService, promptService, pages, logger),
		scrape:    handler.NewScrapeHandler(scrapeService, promptService, pages, logger),
		prompts:   handler.NewPromptLogHandler(promptService, pages, logger),
	}

	r := setupRouter(handlers, authService, cookies, cacheClient, cfg, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered in dependency order; stopped in reverse.
	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})
	if gemini != nil {
		srv.OnShutdown("summarizer", func(ctx context.Context) error {
			return gemini.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routes struct {
	base      *handler.Handler
	health    *handler.HealthHandler
	metrics   *handler.MetricsHandler
	auth      *handler.AuthHandler
	dashboard *handler.DashboardHandler
	scrape    *handler.ScrapeHandler
	prompts   *handler.PromptLogHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h routes,
	authn middleware.Authenticator,
	cookies middleware.CookieReader,
	limiter middleware.RateLimiter,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = cfg.IsDevelopment()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(securityCfg))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.Session(cookies, authn, logger))

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:    logger,
		Limiter:   limiter,
		Enabled:   cfg.RateLimitEnabled,
		UserRPM:   cfg.RateLimitRPM,
		UserBurst: cfg.RateLimitBurst,
		IPRPM:     cfg.LoginRateLimitRPM,
		IPBurst:   cfg.RateLimitBurst,
	}

	// Public endpoints
	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)
	r.With(middleware.RateLimitIP(rateLimitCfg)).Get(middleware.LoginPath, h.auth.Google)

	// Signed-in pages and actions
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/", h.dashboard.Index)
		r.Get("/logout", h.auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitUser(rateLimitCfg))
			r.Post("/scrape", h.scrape.Scrape)
			r.Post("/generate_prompt_response", h.prompts.Generate)
		})

		// URL params are resolved only after routing, so the ID check is
		// attached per route rather than with Use.
		withID := r.With(middleware.RequireRecordID("id"))
		withID.Get("/scraped_data/edit/{id}", h.scrape.Edit)
		withID.Post("/scraped_data/edit/{id}", h.scrape.Update)
		withID.Get("/prompt_log/edit/{id}", h.prompts.Edit)
		withID.Post("/prompt_log/edit/{id}", h.prompts.Update)

		// Deletes are plain links, so Lax cookies ride along on cross-site
		// navigation.
		deletes := withID.With(middleware.SameOrigin)
		deletes.Get("/scraped_data/delete/{id}", h.scrape.Delete)
		deletes.Get("/prompt_log/delete/{id}", h.prompts.Delete)
	})

	r.NotFound(h.base.NotFound)
	r.MethodNotAllowed(h.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
