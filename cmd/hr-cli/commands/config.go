package commands

import (
	"errors"
	"fmt"
	"hrtools/lib/configutil"
	"hrtools/lib/credstore"
	"hrtools/lib/restyutil"
	"hrtools/lib/scrapers/horsereality/core"
	"hrtools/lib/scrapers/horsereality/view"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/time/rate"
)

type Config struct {
	// Credential overrides the one stored in the keyring.
	Credential        core.RememberCredential `json:"credential"`
	AutoRollover      bool                    `json:"auto_rollover"`
	CooldownSeconds   int                     `json:"cooldown_seconds"`
	TimeoutSeconds    int                     `json:"timeout_seconds"`
	RequestsPerSecond float64                 `json:"requests_per_second"`
	Hosts             core.Hosts              `json:"hosts"`
	// CacheDir enables the page cache when set.
	CacheDir             string `json:"cache_dir"`
	CacheLifetimeMinutes int    `json:"cache_lifetime_minutes"`
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config](configPath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file, using defaults", "path", configPath)
		return Config{}, nil
	}
	return cfg, err
}

func (c Config) credential() (core.RememberCredential, error) {
	if c.Credential.Name != "" {
		return c.Credential, nil
	}
	cred, err := credstore.NewKeyringStore().Get(profile)
	if errors.Is(err, credstore.ErrNoCredential) {
		return core.RememberCredential{}, fmt.Errorf(
			"no credential for profile %q, run `hr-cli credentials set` or add one to %s",
			profile, configPath,
		)
	}
	return cred, err
}

func (c Config) clientOptions() (core.ClientOptions, error) {
	cred, err := c.credential()
	if err != nil {
		return core.ClientOptions{}, err
	}
	opts := core.ClientOptions{
		Credential:   cred,
		AutoRollover: c.AutoRollover,
		Cooldown:     time.Duration(c.CooldownSeconds) * time.Second,
		Timeout:      time.Duration(c.TimeoutSeconds) * time.Second,
		RateLimit:    rate.Limit(c.RequestsPerSecond),
		Hosts:        c.Hosts,
	}
	if dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(dumpHttp)
		if err != nil {
			return core.ClientOptions{}, err
		}
		opts.InstrumentOutput = output
	}
	return opts, nil
}

// clients bundles what a command needs to talk to the site.
type clients struct {
	core  *core.Client
	view  *view.Client
	cache *badger.DB
}

func (c clients) Close() {
	c.core.Close()
	if c.cache != nil {
		err := c.cache.Close()
		if err != nil {
			slog.Warn("failed to close page cache", "err", err)
		}
	}
}

func openClients(cfg Config) (clients, error) {
	opts, err := cfg.clientOptions()
	if err != nil {
		return clients{}, err
	}
	coreClient, err := core.NewClient(opts)
	if err != nil {
		return clients{}, err
	}

	var cache *badger.DB
	if cfg.CacheDir != "" {
		cache, err = badger.Open(badger.DefaultOptions(cfg.CacheDir).WithLogger(nil))
		if err != nil {
			coreClient.Close()
			return clients{}, fmt.Errorf("open page cache: %w", err)
		}
	}
	viewClient := view.NewClient(coreClient, view.ClientOptions{
		Cache:         cache,
		CacheLifetime: time.Duration(cfg.CacheLifetimeMinutes) * time.Minute,
	})
	return clients{core: coreClient, view: viewClient, cache: cache}, nil
}

func setupClients() (clients, error) {
	cfg, err := readConfig()
	if err != nil {
		return clients{}, fmt.Errorf("read config: %w", err)
	}
	return openClients(cfg)
}
