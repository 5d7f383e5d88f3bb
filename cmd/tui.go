package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/catx/internal/search"
	"github.com/desertthunder/catx/internal/shared"
	"github.com/desertthunder/catx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive catalog browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session store not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/catx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	coordinator := search.NewCoordinator(r.api, search.Options{
		Delay:  r.config.Search.Debounce(),
		Limit:  r.config.Search.Limit,
		Logger: fileLogger.With("component", "search"),
	})
	defer coordinator.Close()

	bridge := ui.NewSessionBridge(r.session)
	model := ui.NewModel(ctx, r.session, coordinator, bridge, fileLogger.With("component", "ui"))
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
