package app

import (
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/artifex/internal/common"
	"github.com/ternarybob/artifex/internal/handlers"
	"github.com/ternarybob/artifex/internal/interfaces"
	"github.com/ternarybob/artifex/internal/jobs"
	"github.com/ternarybob/artifex/internal/services/capture"
	"github.com/ternarybob/artifex/internal/services/events"
	"github.com/ternarybob/artifex/internal/services/fetch"
	gh "github.com/ternarybob/artifex/internal/services/github"
	"github.com/ternarybob/artifex/internal/services/imaging"
	"github.com/ternarybob/artifex/internal/services/llm"
	"github.com/ternarybob/artifex/internal/services/pdf"
	"github.com/ternarybob/artifex/internal/services/seo"
	"github.com/ternarybob/artifex/internal/services/sweeper"
	"github.com/ternarybob/artifex/internal/services/transform"
	"github.com/ternarybob/artifex/internal/tools"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Job execution
	EventService interfaces.EventService
	Store        *jobs.Store
	Registry     *tools.Registry
	Runner       *jobs.Runner

	// Tool services
	FetchService     *fetch.Service
	CaptureService   *capture.Service
	ImagingService   *imaging.Service
	Renderer         *pdf.Renderer
	PDFOps           *pdf.Ops
	TransformService *transform.Service
	SEOService       *seo.Service
	LLMService       *llm.Service
	GitHubService    *gh.Service

	// Artifact retention
	Sweeper *sweeper.Sweeper

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	ProcessHandler  *handlers.ProcessHandler
	JobHandler      *handlers.JobHandler
	UploadHandler   *handlers.UploadHandler
	ToolsHandler    *handlers.ToolsHandler
	ProgressHandler *handlers.ProgressHandler
	WSHandler       *handlers.WebSocketHandler
}

// New wires the application together: storage directories, event bus,
// job store, tool registry, runner, sweeper, and HTTP handlers.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDirectories(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage directories: %w", err)
	}

	app.EventService = events.NewService(app.Logger)

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	if cfg.Retention.Enabled {
		app.Sweeper = sweeper.NewSweeper(cfg, app.Logger)
		if err := app.Sweeper.Start(); err != nil {
			return nil, fmt.Errorf("failed to start retention sweeper: %w", err)
		}
	}

	logger.Info().
		Int("tools", len(app.Registry.List())).
		Int("concurrency", cfg.Jobs.Concurrency).
		Bool("retention_enabled", cfg.Retention.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

func (a *App) initDirectories() error {
	for _, dir := range []string{a.Config.Storage.UploadDir, a.Config.Storage.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func (a *App) initServices() error {
	a.FetchService = fetch.NewService(a.Config, a.Logger)
	a.CaptureService = capture.NewService(a.Config, a.Logger)
	a.ImagingService = imaging.NewService(a.Logger)
	a.Renderer = pdf.NewRenderer(a.Logger)
	a.PDFOps = pdf.NewOps(a.Logger)
	a.TransformService = transform.NewService(a.Logger)
	a.SEOService = seo.NewService(a.Logger)
	a.LLMService = llm.NewService(a.Config, a.Logger)
	a.GitHubService = gh.NewService(a.Config, a.Logger)

	estimates := tools.DefaultEstimates()
	if path := a.Config.Jobs.EstimatesFile; path != "" {
		if err := estimates.LoadOverrides(path); err != nil {
			a.Logger.Warn().Err(err).Str("path", path).Msg("Failed to load estimate overrides, using defaults")
		}
	}

	a.Registry = tools.NewRegistry(estimates, a.Logger)
	tools.RegisterAll(a.Registry, &tools.Deps{
		Fetch:     a.FetchService,
		Capture:   a.CaptureService,
		Imaging:   a.ImagingService,
		Renderer:  a.Renderer,
		PDFOps:    a.PDFOps,
		Transform: a.TransformService,
		SEO:       a.SEOService,
		LLM:       a.LLMService,
		GitHub:    a.GitHubService,
		Logger:    a.Logger,
	})

	a.Store = jobs.NewStore(a.Logger)
	a.Runner = jobs.NewRunner(
		a.Store,
		a.Registry,
		a.EventService,
		a.Config.Jobs.Concurrency,
		a.Config.JobTimeoutDuration(),
		a.Logger,
	)

	a.Logger.Debug().
		Int("tools", len(a.Registry.List())).
		Msg("Tool registry sealed")

	return nil
}

func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler()
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, a.Logger)
	a.ProcessHandler = handlers.NewProcessHandler(a.Runner, a.Config, a.Logger)
	a.JobHandler = handlers.NewJobHandler(a.Store, a.Logger)
	a.UploadHandler = handlers.NewUploadHandler(a.ProcessHandler, a.Logger)
	a.ToolsHandler = handlers.NewToolsHandler(a.Registry, a.Logger)
	a.ProgressHandler = handlers.NewProgressHandler(a.Logger)
	return nil
}

// Close shuts the application down in reverse dependency order. In-flight
// jobs are allowed to finish before the event bus closes.
func (a *App) Close() error {
	if a.Sweeper != nil {
		a.Sweeper.Stop()
		a.Logger.Info().Msg("Retention sweeper stopped")
	}

	if a.Runner != nil {
		a.Runner.Wait()
		a.Logger.Info().Msg("Job runner drained")
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	return nil
}
