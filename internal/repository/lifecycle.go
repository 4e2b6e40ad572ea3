package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/Digital-Shane/show-manager/internal/cache"
	"github.com/Digital-Shane/show-manager/internal/provider"
	"github.com/Digital-Shane/show-manager/internal/provider/omdb"
	"github.com/Digital-Shane/show-manager/internal/provider/tmdb"
	"github.com/Digital-Shane/show-manager/internal/store"
	"github.com/rs/zerolog"
)

// Config describes the process-wide repository.
type Config struct {
	DatabasePath     string
	DestructiveReset bool

	// Catalog selects the search catalog by name.
	Catalog string
	// Catalogs holds per-catalog settings keyed by catalog name. A catalog
	// is enabled when its settings configure successfully.
	Catalogs map[string]map[string]interface{}
	Timeout  time.Duration

	// CacheProvider is a registered cache backend name. Empty disables the
	// response cache.
	CacheProvider string
	Cache         cache.ProviderConfig

	Logger *zerolog.Logger
}

var (
	instanceMu sync.Mutex
	instance   *Repository
)

// Init opens the process-wide repository. Later calls return the same
// instance until Shutdown.
func Init(cfg Config) (*Repository, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance != nil {
		return instance, nil
	}

	r, err := build(cfg)
	if err != nil {
		return nil, err
	}
	instance = r
	return instance, nil
}

// Default returns the process-wide repository, or nil before Init.
func Default() *Repository {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	return instance
}

// Shutdown closes the process-wide repository. A later Init opens a fresh one.
func Shutdown() error {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		return nil
	}
	err := instance.Close()
	instance = nil
	return err
}

// NewRegistry registers every known catalog and enables those whose
// settings configure successfully.
func NewRegistry(settings map[string]map[string]interface{}, logger *zerolog.Logger) *provider.Registry {
	registry := provider.NewRegistry()
	catalogs := []provider.Catalog{omdb.New(), tmdb.New()}

	for _, c := range catalogs {
		if err := registry.Register(c.Name(), c, c.Capabilities().Priority); err != nil {
			logWarn(logger, err, c.Name(), "Register catalog failed")
			continue
		}
		conf, ok := settings[c.Name()]
		if !ok || len(conf) == 0 {
			continue
		}
		if err := registry.Configure(c.Name(), conf); err != nil {
			logWarn(logger, err, c.Name(), "Catalog configuration rejected")
			continue
		}
		if err := registry.Enable(c.Name()); err != nil {
			logWarn(logger, err, c.Name(), "Enable catalog failed")
		}
	}
	return registry
}

func logWarn(logger *zerolog.Logger, err error, catalog, msg string) {
	if logger != nil {
		logger.Warn().Err(err).Str("catalog", catalog).Msg(msg)
	}
}

func build(cfg Config) (*Repository, error) {
	st, err := store.Open(store.Options{
		Path:             cfg.DatabasePath,
		DestructiveReset: cfg.DestructiveReset,
		Logger:           cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open bookmark store: %w", err)
	}

	var responses Cache
	if cfg.CacheProvider != "" {
		cacheCfg := cfg.Cache
		if cacheCfg.Logger == nil {
			cacheCfg.Logger = cfg.Logger
		}
		c, err := cache.New(cfg.CacheProvider, cacheCfg)
		if err != nil {
			// Searches still work without a cache.
			logWarn(cfg.Logger, err, cfg.CacheProvider, "Response cache unavailable")
		} else {
			responses = c
		}
	}

	r, err := New(Deps{
		Registry: NewRegistry(cfg.Catalogs, cfg.Logger),
		Catalog:  cfg.Catalog,
		Cache:    responses,
		Store:    st,
		Logger:   cfg.Logger,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		st.Close()
		if responses != nil {
			responses.Close()
		}
		return nil, err
	}
	return r, nil
}
