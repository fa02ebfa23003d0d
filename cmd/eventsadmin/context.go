package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/rpggio/eventsadmin/internal/config"
	"github.com/rpggio/eventsadmin/internal/domain/activity"
	"github.com/rpggio/eventsadmin/internal/domain/operator"
	"github.com/rpggio/eventsadmin/internal/sqlite"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		var cfg config.Config
		var err error
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			cfg, err = config.LoadFrom(strings.TrimSpace(*c.configFlag))
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			c.configErr = fmt.Errorf("config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(w io.Writer) (*slog.Logger, func()) {
	cfg, _ := c.ensureConfig()
	return newLogger(cfg.Log.Level, w)
}

// store holds the sqlite-backed services shared by several commands.
type store struct {
	db       *sqlite.DB
	sessions *operator.Service
	activity *activity.Service
}

func (s *store) Close() error {
	return s.db.Close()
}

func (c *commandContext) openStore(logger *slog.Logger) (*store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := ensureDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &store{
		db:       db,
		sessions: operator.NewService(sqlite.NewOperatorSessionRepository(db), logger),
		activity: activity.NewService(sqlite.NewActivityRepository(db), logger),
	}, nil
}

func (c *commandContext) withStore(logger *slog.Logger, fn func(*store) error) error {
	s, err := c.openStore(logger)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
