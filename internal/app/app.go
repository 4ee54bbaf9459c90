// Package app wires configuration, storage and services into one App
// shared by the HTTP server and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/interfaces"
	"github.com/bobmcallan/investbadge/internal/services/dashboard"
	"github.com/bobmcallan/investbadge/internal/services/events"
	"github.com/bobmcallan/investbadge/internal/services/leaderboard"
	"github.com/bobmcallan/investbadge/internal/services/reputation"
	"github.com/bobmcallan/investbadge/internal/services/session"
	"github.com/bobmcallan/investbadge/internal/storage"
)

// App holds all initialized services.
type App struct {
	Config             *common.Config
	Logger             *common.Logger
	Storage            interfaces.StorageManager
	Refresher          *reputation.Refresher
	Events             *events.Hub
	SessionService     *session.Service
	LeaderboardService *leaderboard.Service
	DashboardService   *dashboard.Service
	StartupTime        time.Time

	schedulerCancel context.CancelFunc
	schedulerDone   chan struct{}
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes the App.
// configPath may be empty, in which case INVESTBADGE_CONFIG, then
// investbadge.toml beside the binary, then config/investbadge.toml are tried.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("INVESTBADGE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "investbadge.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/investbadge.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths to the binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger, err := common.NewLoggerFromConfig(config.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a, err := New(config, logger)
	if err != nil {
		logger.Close()
		return nil, err
	}
	return a, nil
}

// New initializes storage and services from an already loaded config.
func New(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	rc := config.Reputation
	rng := reputation.NewRand(rc.Seed)

	hub := events.NewHub(logger)
	go hub.Run()

	oracle := reputation.NewSimulatedOracle(rc.GetRefreshDelay(), rc.FailurePercent, rng, logger)
	refresher := reputation.NewRefresher(oracle,
		reputation.WithRand(rng),
		reputation.WithEvents(hub),
		reputation.WithRateLimit(rc.RefreshRatePerMin, rc.RefreshBurst),
		reputation.WithWorkers(rc.GetRefreshWorkers()),
		reputation.WithLogger(logger),
	)

	sessionService := session.NewService(storageManager, refresher, config, logger)
	leaderboardService := leaderboard.NewService(storageManager.ProfileStore(), logger, leaderboard.WithRand(rng))
	dashboardService := dashboard.NewService(config.Server.GetPublicURL(), logger)

	a := &App{
		Config:             config,
		Logger:             logger,
		Storage:            storageManager,
		Refresher:          refresher,
		Events:             hub,
		SessionService:     sessionService,
		LeaderboardService: leaderboardService,
		DashboardService:   dashboardService,
		StartupTime:        startupStart,
	}

	if config.Leaderboard.SeedMockInvestors {
		if _, err := leaderboardService.SeedInvestors(context.Background()); err != nil {
			a.closeServices()
			return nil, fmt.Errorf("failed to seed leaderboard: %w", err)
		}
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")
	return a, nil
}

// StartRefreshScheduler launches the periodic refresh of every connected
// session. It does nothing when no interval is configured.
func (a *App) StartRefreshScheduler() {
	interval := a.Config.Reputation.GetAutoRefreshInterval()
	if interval <= 0 || a.schedulerCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel
	a.schedulerDone = make(chan struct{})
	go func() {
		defer close(a.schedulerDone)
		startRefreshScheduler(ctx, a.SessionService, a.Logger, interval)
	}()
}

// Close releases all resources held by the App.
// Shutdown order: scheduler, refreshes, event hub, storage, log file.
func (a *App) Close() {
	a.closeServices()
	a.Logger.Close()
}

func (a *App) closeServices() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		<-a.schedulerDone
		a.schedulerCancel = nil
	}
	if a.Refresher != nil {
		a.Refresher.Close()
		a.Refresher = nil
	}
	if a.Events != nil {
		a.Events.Stop()
		a.Events = nil
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
}
