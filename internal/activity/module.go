package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/shandysiswandi/exportviz/internal/activity/entity"
	"github.com/shandysiswandi/exportviz/internal/activity/inbound"
	"github.com/shandysiswandi/exportviz/internal/activity/store"
	"github.com/shandysiswandi/exportviz/internal/activity/usecase"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/exportviz/internal/pkg/pkguid"
)

const (
	defaultSessionTTL    = 24 * time.Hour
	defaultSweepInterval = 10 * time.Minute
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
	Revision  pkguid.NumberID
}

type sessionStore interface {
	usecase.Store
	store.Sweeper
	Close() error
}

func New(dep Dependency) (func(context.Context) error, error) {
	ttl := dep.Config.GetDuration("modules.activity.store.ttl")
	if ttl == 0 {
		ttl = defaultSessionTTL
	}

	storage, err := newStore(dep.Context, dep.Config, ttl)
	if err != nil {
		return nil, err
	}

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}

	uc := usecase.New(usecase.Dependency{
		Store:          storage,
		ID:             dep.ID,
		Revision:       dep.Revision,
		ExportFilename: dep.Config.GetString("modules.activity.export_filename"),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config.GetInt("modules.activity.max_upload_bytes"))

	interval := dep.Config.GetDuration("modules.activity.store.sweep_interval")
	if interval == 0 {
		interval = defaultSweepInterval
	}
	if ttl > 0 && dep.Goroutine != nil {
		dep.Goroutine.Every(dep.Context, "session-janitor", interval, store.Janitor(storage, time.Now))
	}

	return func(context.Context) error {
		return storage.Close()
	}, nil
}

func newStore(ctx context.Context, cfg pkgconfig.Config, ttl time.Duration) (sessionStore, error) {
	driver := entity.StoreDriver(cfg.GetString("modules.activity.store.driver"))

	switch driver {
	case "", entity.StoreDriverMemory:
		return store.NewInMemoryStore(ttl), nil
	case entity.StoreDriverSQLite:
		path := cfg.GetString("modules.activity.store.sqlite_path")
		if path == "" {
			return nil, fmt.Errorf("modules.activity.store.sqlite_path is required for driver %q", driver)
		}
		return store.NewSQLiteStore(ctx, path, ttl)
	default:
		return nil, fmt.Errorf("unknown session store driver %q", driver)
	}
}
