package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/guidance/internal/app"
	appsync "github.com/nhle/guidance/internal/sync"
	"github.com/nhle/guidance/internal/theme"
)

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context())
		},
	}
}

func (c *cli) runTUI(ctx context.Context) error {
	c.logToFile = true

	eng, err := c.engine(ctx)
	if err != nil {
		return err
	}
	theme.Apply(c.cfg.Display.Theme)

	var poller *appsync.Poller
	if secs := c.cfg.Display.RefreshSeconds; secs > 0 {
		poller = appsync.New(eng, c.cfg.OwnerID, time.Duration(secs)*time.Second)
		defer poller.Stop()
	}

	c.log.Info("starting tui", "owner_id", c.cfg.OwnerID, "refresh_seconds", c.cfg.Display.RefreshSeconds)
	p := tea.NewProgram(app.New(eng, c.cfg.OwnerID, poller), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
