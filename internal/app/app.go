package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/jot/internal/config"
	"github.com/MrSnakeDoc/jot/internal/httpserver"
	"github.com/MrSnakeDoc/jot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jot/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/jot/internal/logger"
	"github.com/MrSnakeDoc/jot/internal/metrics"
	"github.com/MrSnakeDoc/jot/internal/notebook"
	"github.com/MrSnakeDoc/jot/internal/redis"
	"github.com/MrSnakeDoc/jot/internal/scheduler"
	"github.com/MrSnakeDoc/jot/internal/sources/backup"
	"github.com/MrSnakeDoc/jot/internal/storage"
	redisstore "github.com/MrSnakeDoc/jot/internal/storage/redis"
	"github.com/MrSnakeDoc/jot/internal/store"
	"github.com/MrSnakeDoc/jot/internal/toast"
	"github.com/MrSnakeDoc/jot/internal/version"
)

// reloadDebounce collapses the burst of events one editor save produces.
const reloadDebounce = 250 * time.Millisecond

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	storage  storage.Storage
	notebook *notebook.Notebook
	metrics  *metrics.Metrics
	server   *httpserver.Server
	sweeper  *scheduler.TrashSweeper
	reloader *scheduler.StorageReloader
}

// New opens the configured storage and loads the notebook. The HTTP
// server is built but not started.
func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	st, err := openStorage(cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	toasts := toast.NewQueue(toast.Config{
		MaxToasts:       cfg.MaxToasts,
		DefaultDuration: cfg.ToastDuration,
	})
	opts := store.Options{Retention: cfg.TrashRetention}
	nb := notebook.New(
		store.NewNoteStore(st, loggerClient.Named("notes"), opts),
		store.NewCategoryStore(st, loggerClient.Named("categories"), opts),
		store.NewPreferences(st, loggerClient.Named("preferences")),
		toasts,
		loggerClient.Named("notebook"),
		notebook.Config{UndoWindow: cfg.UndoWindow},
	)

	ctx := context.Background()
	if err := nb.Load(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to load notebook: %w", err)
	}
	active, trashed := nb.Counts()
	loggerClient.Info("notebook loaded",
		logger.String("storage", string(cfg.Storage)),
		logger.Int("active", active),
		logger.Int("trash", trashed),
		logger.Int("categories", nb.CategoryCount()))

	if cfg.SeedFile != "" && active+trashed == 0 && nb.CategoryCount() == 0 {
		if err := seed(ctx, nb, cfg.SeedFile, loggerClient); err != nil {
			loggerClient.Warn("seed import failed", logger.String("file", cfg.SeedFile), logger.Error(err))
		}
	}

	m := metrics.New()
	m.Observe(nb)

	a := &App{
		cfg:      cfg,
		logger:   loggerClient,
		storage:  st,
		notebook: nb,
		metrics:  m,
		sweeper: scheduler.NewTrashSweeper(nb, loggerClient.Named("sweeper"),
			cfg.PurgeInterval, m.NotesPurged),
	}

	if f, ok := st.(*storage.File); ok && cfg.WatchDataFile {
		a.reloader = scheduler.NewStorageReloader(nb, loggerClient.Named("reloader"), reloadDebounce)
		if err := f.Watch(a.reloader.Notify); err != nil {
			loggerClient.Warn("data file watch disabled", logger.Error(err))
			a.reloader = nil
		}
	}

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Notebook:        nb,
		Storage:         st,
		StorageKind:     cfg.Storage,
		Metrics:         m,
		Validate:        handlers.NewValidator(),
	}
	a.server = httpserver.New(cfg, loggerClient, d)

	return a, nil
}

func openStorage(cfg *config.Config, loggerClient logger.Logger) (storage.Storage, error) {
	switch cfg.Storage {
	case storage.KindMemory:
		loggerClient.Warn("memory storage selected, notes are lost on exit")
		return storage.NewMemory(), nil

	case storage.KindFile:
		f, err := storage.OpenFile(cfg.DataFile, loggerClient.Named("storage"))
		if err != nil {
			return nil, fmt.Errorf("failed to open data file: %w", err)
		}
		return f, nil

	case storage.KindSQLite:
		s, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return s, nil

	case storage.KindRedis:
		// Fail fast if unavailable
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")
		return redisstore.NewStore(client, cfg.RedisPrefix), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

func seed(ctx context.Context, nb *notebook.Notebook, path string, loggerClient logger.Logger) error {
	doc, err := backup.NewLoader(path).Load()
	if err != nil {
		return err
	}
	notes, categories, skipped := backup.NewMapper(time.Now).FromDocument(doc)
	addedNotes, addedCategories := nb.Import(ctx, notes, categories)
	if q := doc.Preferences; q.Category != "" || q.OnlyFavorites {
		if q.Category != "" {
			id := q.Category
			nb.SetActiveCategory(ctx, &id)
		}
		nb.SetShowOnlyFavorites(ctx, q.OnlyFavorites)
	}
	loggerClient.Info("notebook seeded",
		logger.String("file", path),
		logger.Int("notes", addedNotes),
		logger.Int("categories", addedCategories),
		logger.Int("skipped", skipped))
	return nil
}

// Notebook exposes the loaded notebook to the CLI commands.
func (a *App) Notebook() *notebook.Notebook {
	return a.notebook
}

// Export writes a YAML backup of the whole notebook to w.
func (a *App) Export(w io.Writer) error {
	nb := a.notebook
	doc := backup.NewMapper(time.Now).ToDocument(nb.AllNotes(), nb.Categories(), nb.Query())
	return backup.Encode(w, doc)
}

// Purge runs one trash sweep and returns the number of notes removed.
func (a *App) Purge(ctx context.Context) int {
	return a.sweeper.Sweep(ctx)
}

// Run serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting jot v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("jot %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start trash sweeper: %w", err)
	}
	if a.sweeper.Periodic() {
		a.logger.Info("trash sweeper started",
			logger.Duration("interval", a.cfg.PurgeInterval),
			logger.Duration("retention", a.cfg.TrashRetention))
	}

	if a.reloader != nil {
		a.reloader.Start(ctx)
		a.logger.Info("data file watcher started", logger.String("file", a.cfg.DataFile))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.sweeper.Stop()
	if a.reloader != nil {
		a.reloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.Close()
	a.logger.Info("✅ jot stopped cleanly")
	return nil
}

// Close releases the storage backend and the toast timers.
func (a *App) Close() {
	a.notebook.Toasts().Close()
	if err := a.storage.Close(); err != nil {
		a.logger.Warnf("failed to close storage: %v", err)
	} else {
		a.logger.Debug("storage closed", logger.String("kind", string(a.cfg.Storage)))
	}
}
