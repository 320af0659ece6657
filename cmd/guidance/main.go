package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nhle/guidance/internal/catalog"
	"github.com/nhle/guidance/internal/engine"
	"github.com/nhle/guidance/internal/logging"
	"github.com/nhle/guidance/internal/model"
	"github.com/nhle/guidance/internal/store"
)

func main() {
	root, c := newRootCmd()
	err := root.Execute()
	c.close()
	if err != nil {
		os.Exit(1)
	}
}

// cli holds what the subcommands share. Everything is opened on first use so
// commands that never touch storage do not need a reachable backend.
type cli struct {
	configPath string
	owner      string
	logToFile  bool

	cfg   *model.AppConfig
	log   *logging.Logger
	cat   *catalog.Catalog
	store store.SessionStore
	eng   *engine.Engine
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:           "guidance",
		Short:         "Step-by-step guidance for everyday parenting struggles",
		Long:          "guidance walks a parent through five-step plans for a struggle, switching approach when one does not help.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", model.DefaultConfigPath(), "Path to the configuration file")
	root.PersistentFlags().StringVar(&c.owner, "owner", "", "Owner id (overrides owner_id from the config)")

	root.AddCommand(
		c.tuiCmd(),
		c.newCmd(),
		c.listCmd(),
		c.showCmd(),
		c.toggleCmd(),
		c.feedbackCmd(),
		c.switchCmd(),
		c.noteCmd(),
		c.deleteCmd(),
		c.stepsCmd(),
		c.titleCmd(),
		c.configCmd(),
	)
	return root, c
}

// config loads the configuration and logger once.
func (c *cli) config() (*model.AppConfig, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	cfg, err := model.LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.owner != "" {
		cfg.OwnerID = c.owner
	}
	if c.logToFile && cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(filepath.Dir(c.configPath), "guidance.log")
		if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.log = log
	return cfg, nil
}

func (c *cli) catalog() (*catalog.Catalog, error) {
	if c.cat != nil {
		return c.cat, nil
	}
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}

	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.LoadFile(cfg.Catalog.Path)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}
	c.cat = cat
	return cat, nil
}

// engine opens the configured store and wires the engine around it.
func (c *cli) engine(ctx context.Context) (*engine.Engine, error) {
	if c.eng != nil {
		return c.eng, nil
	}
	cat, err := c.catalog()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, c.cfg.Storage)
	if err != nil {
		return nil, err
	}
	c.store = st
	c.log.Debug("store opened", "backend", c.cfg.Storage.Backend)

	c.eng = engine.New(st, cat, c.log)
	return c.eng, nil
}

func (c *cli) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil && c.log != nil {
			c.log.Warn("closing store", "error", err)
		}
	}
	if c.log != nil {
		c.log.Sync()
	}
}
