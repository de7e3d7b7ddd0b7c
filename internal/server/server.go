// Package server exposes the retrieval engine over HTTP: health, metrics,
// document upload, quick search and deep answers.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jusconsultus/lexsearch/config"
	"github.com/jusconsultus/lexsearch/internal/cache"
	"github.com/jusconsultus/lexsearch/internal/corpus"
	"github.com/jusconsultus/lexsearch/internal/deepsearch"
	"github.com/jusconsultus/lexsearch/internal/kag"
	"github.com/jusconsultus/lexsearch/internal/telemetry"
	"github.com/jusconsultus/lexsearch/internal/userdocs"
	"github.com/jusconsultus/lexsearch/provider"
	openai_provider "github.com/jusconsultus/lexsearch/provider/openai"
)

// Run wires the full pipeline from config and serves it until the
// listener fails.
func Run(cfg *config.Config) error {
	engine, metrics, userDocs, err := BuildEngine(cfg)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	h := &Handler{Engine: engine, UserDocs: userDocs}
	h.Register(e.Group("/api"))

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":10020"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// BuildEngine is the top-level dependency wiring shared by serve and the
// CLI commands.
func BuildEngine(cfg *config.Config) (*deepsearch.Engine, *telemetry.Metrics, *userdocs.Index, error) {
	metrics := telemetry.NewMetrics()

	folders := corpus.DefaultFolders()
	if cfg.Corpus.FolderFile != "" {
		loaded, err := corpus.LoadFolders(cfg.Corpus.FolderFile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("loading folder table: %w", err)
		}
		folders = loaded
	}

	store := corpus.NewFSStore(cfg.Corpus.Root)
	index := corpus.NewIndex(store, folders, cfg.Search.FolderSampleCap)
	searcher := kag.NewSearcher(store, folders, cfg.Search.HopCandidateCap, cfg.Search.ConceptSampleCap)

	var backing cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		rs, err := cache.NewRedisStore(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting cache backend: %w", err)
		}
		backing = rs
	default:
		backing = cache.NewMemoryStore()
	}
	cacheStore := cache.New(backing)

	var prov provider.CompletionProvider
	if cfg.LLM.APIKey != "" {
		prov = openai_provider.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.MaxRetries, cfg.LLM.Timeout)
		prov = provider.WithCache(prov, cacheStore, cfg.Cache.CompletionTTL)
	}

	userDocs, err := userdocs.NewIndex()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating user document index: %w", err)
	}

	engine := deepsearch.NewEngine(index, searcher, prov, cacheStore, userDocs, metrics, cfg.Search, cfg.LLM, cfg.Cache)
	return engine, metrics, userDocs, nil
}
