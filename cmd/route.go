package main

import (
	"context"

	"github.com/desertthunder/catx/internal/guard"
	"github.com/urfave/cli/v3"
)

// Route resolves a requested view against the restored session and prints where the client lands.
func (r *Runner) Route(ctx context.Context, cmd *cli.Command) error {
	requested := guard.ParseView(cmd.StringArg("view"))

	snap, err := r.restoreSession(ctx)
	if err != nil {
		return err
	}

	decision := guard.Resolve(snap.Role(), requested)
	r.logger.Debug("route resolved", "role", snap.Role(), "requested", requested, "view", decision.View)

	if !decision.Redirected {
		return r.writePlain("✓ %s\n", decision.View)
	}
	if !guard.Known(requested) {
		return r.writePlain("↪ %s → %s (unknown view)\n", requested, decision.View)
	}
	return r.writePlain("↪ %s → %s (role: %s)\n", requested, decision.View, snap.Role())
}
