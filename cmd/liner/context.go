package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"liner/internal/config"
	"liner/internal/identity"
	"liner/internal/logging"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withStore opens the store for read-only commands.
func (c *commandContext) withStore(fn func(*identity.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := identity.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// withLockedStore takes the exclusive advisory lock before opening the
// store, so only one mutating command runs against a data dir at a time.
func (c *commandContext) withLockedStore(fn func(*identity.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", cfg.LockPath(), err)
	}
	if !locked {
		return fmt.Errorf("another liner mutation is in progress (lock %s held)", cfg.LockPath())
	}
	defer func() {
		_ = lock.Unlock()
	}()

	return c.withStore(fn)
}
