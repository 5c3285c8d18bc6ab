package container

import (
	"context"
	"fmt"
	"time"

	"gopetro/adapters/excel"
	"gopetro/adapters/postgres"
	"gopetro/internal"
	"gopetro/internal/api"
	"gopetro/internal/config"
	"gopetro/internal/dataset"
	"gopetro/internal/session"
	"gopetro/internal/testkit"
	"gopetro/ports"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// sessionSweepInterval is how often idle sessions are looked for
const sessionSweepInterval = time.Minute

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure, set only for SQL sources
	DB *sqlx.DB

	Source   ports.SampleSource
	Store    *dataset.Store
	Sessions *session.Manager
	SSEHub   *api.SSEHub
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Container{Config: cfg, Logger: logger}, nil
}

// Init opens the configured sample source and loads the first dataset. A
// dataset that cannot be loaded here is fatal to the caller.
func (c *Container) Init(ctx context.Context) error {
	source, err := c.openSource(ctx)
	if err != nil {
		return fmt.Errorf("failed to open sample source: %w", err)
	}
	return c.InitWithSource(ctx, source)
}

// InitWithSource wires every component around source
func (c *Container) InitWithSource(ctx context.Context, source ports.SampleSource) error {
	c.Source = source
	c.Store = dataset.NewStore(source, c.Logger)

	ds, err := c.Store.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("initial dataset load failed: %w", err)
	}

	c.SSEHub = api.NewSSEHub(c.Logger)
	c.Sessions = session.NewManager(c.Store, c.Config.Session.TTL, c.Logger)
	c.Sessions.SetRenderSink(c.SSEHub.PublishRender)

	c.Logger.Info("Container initialized: %d samples from %s (version %s)",
		ds.Len(), source.Describe(), ds.Version().Short())
	return nil
}

func (c *Container) openSource(ctx context.Context) (ports.SampleSource, error) {
	data := c.Config.Data
	switch data.Source {
	case config.SourceFile:
		cfg := excel.DefaultExcelConfig(data.File)
		cfg.Sheet = data.Sheet
		return excel.NewSampleSource(cfg, c.Logger), nil

	case config.SourcePostgres, config.SourceSQLite:
		driver := postgres.DriverPostgres
		if data.Source == config.SourceSQLite {
			driver = postgres.DriverSQLite
		}
		db, err := postgres.Connect(ctx, driver, c.Config.Database.URL)
		if err != nil {
			return nil, err
		}
		c.DB = db
		return postgres.NewSampleRepository(db, c.Config.Database.SamplesTable), nil

	case config.SourceSynthetic:
		cfg := testkit.DefaultCoreConfig()
		cfg.Count = data.SyntheticCount
		cfg.Seed = data.SyntheticSeed
		return testkit.NewSyntheticSource(cfg), nil
	}
	return nil, fmt.Errorf("unknown data source %q", data.Source)
}

// Run starts the background workers: periodic refresh, the data file watcher
// and the session sweeper. It blocks until ctx is done or a worker fails.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if interval := c.Config.Data.RefreshInterval; interval > 0 {
		c.Logger.Info("Refreshing dataset every %s", interval)
		g.Go(func() error {
			c.Store.Run(ctx, interval)
			return nil
		})
	}

	if c.Config.Data.Source == config.SourceFile && c.Config.Data.WatchFile {
		// a failed watcher must not stop the sweeper or the refresh ticker
		g.Go(func() error {
			if err := c.Store.WatchFile(ctx, c.Config.Data.File); err != nil {
				c.Logger.Error("Watching %s failed, file changes will not be picked up: %v", c.Config.Data.File, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		c.Sessions.Run(ctx, sessionSweepInterval)
		return nil
	})

	return g.Wait()
}

// Shutdown stops the SSE hub and closes the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
