package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fentz26/tickit/internal/audit"
	"github.com/fentz26/tickit/internal/config"
	"github.com/fentz26/tickit/internal/logging"
	"github.com/fentz26/tickit/internal/notify"
	"github.com/fentz26/tickit/internal/store"
	"github.com/fentz26/tickit/internal/tasks"
)

// cli carries global flags and the session opened for one command.
type cli struct {
	configPath string
	dataDir    string
	backend    string
	logLevel   string

	cfg    *config.Config
	logger *log.Logger
	slot   store.Slot
	repo   *tasks.Repository
	loc    *time.Location
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

// loadConfig reads the config file, then env, then flag overrides.
func (c *cli) loadConfig() error {
	if c.errOut == nil {
		c.errOut = os.Stderr
	}
	if c.now == nil {
		c.now = time.Now
	}

	var (
		cfg *config.Config
		err error
	)
	if c.configPath == "" {
		cfg, err = config.LoadConfigFromHome()
	} else {
		cfg, err = config.LoadConfig(c.configPath)
	}
	if err != nil {
		return err
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}
	if c.backend != "" {
		cfg.Backend = c.backend
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	c.cfg = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	c.logger = logging.New(c.errOut, level)

	c.loc, err = cfg.Location()
	return err
}

// open loads config, then the store, then the repository.
func (c *cli) open() error {
	if err := c.loadConfig(); err != nil {
		return err
	}

	var err error
	c.slot, err = openSlot(c.cfg)
	if err != nil {
		return err
	}
	if p, ok := c.slot.(pinger); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := p.Ping(ctx)
		cancel()
		if err != nil {
			c.slot.Close()
			return fmt.Errorf("store unavailable: %w", err)
		}
	}
	c.logger.Debug("store opened", "backend", c.cfg.Backend, "dir", c.cfg.DataDir)

	opts := []tasks.Option{
		tasks.WithLogger(c.logger),
		tasks.WithClock(c.now),
		tasks.WithLocation(c.loc),
		tasks.WithUndoCapacity(c.cfg.UndoCapacity),
		tasks.WithNotifyWindow(c.cfg.NotifyWindow()),
		tasks.WithNotifier(c.notifier()),
	}
	if sink, ok := c.slot.(audit.Sink); ok {
		opts = append(opts, tasks.WithAudit(audit.NewRecorder(sink)))
	}
	c.repo = tasks.Open(store.New(c.slot, c.logger), opts...)
	return nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// notifier picks the due-soon alert style from config.
func (c *cli) notifier() notify.Notifier {
	switch c.cfg.Notify {
	case config.NotifyLog:
		return notify.LogNotifier{Logger: c.logger}
	case config.NotifyNone:
		return notify.Nop{}
	default:
		return notify.Bell{W: c.errOut}
	}
}

func openSlot(cfg *config.Config) (store.Slot, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return store.NewFileSlot(filepath.Join(cfg.DataDir, "slots"))
	case config.BackendMemory:
		return store.NewMemorySlot(), nil
	default:
		return store.NewSQLite(filepath.Join(cfg.DataDir, "tickit.db"))
	}
}

// close flushes and closes the session, if one was opened.
func (c *cli) close() error {
	if c.repo == nil {
		return nil
	}
	err := c.repo.Close()
	c.repo = nil
	return err
}

// resolve maps a user-typed id or prefix to a task id.
func (c *cli) resolve(ref string) (string, error) {
	return c.repo.ResolveID(ref)
}

// warnUnsaved reports a failed write without failing the command.
func (c *cli) warnUnsaved() {
	if err := c.repo.LastSaveError(); err != nil {
		fmt.Fprintln(c.errOut, "warning: change kept in memory only:", err)
	}
}
