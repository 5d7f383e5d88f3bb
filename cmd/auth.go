package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/catx/internal/guard"
	"github.com/desertthunder/catx/internal/shared"
	"github.com/urfave/cli/v3"
)

type authStatus struct {
	State           string `json:"state"`
	Role            string `json:"role"`
	DisplayName     string `json:"display_name,omitempty"`
	UserID          *int64 `json:"user_id,omitempty"`
	ArtistProfileID *int64 `json:"artist_profile_id,omitempty"`
	Home            string `json:"home"`
}

// AuthLogin exchanges an identifier and secret for a session and persists it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session store not initialized", shared.ErrServiceUnavailable)
	}

	identifier := cmd.String("identifier")
	r.logger.Info("logging in", "identifier", identifier)

	if err := r.session.Login(ctx, identifier, cmd.String("secret")); err != nil {
		return err
	}

	snap := r.session.Snapshot()
	r.writePlain("✓ Logged in as %s (%s)\n", snap.Session.DisplayName, snap.Session.Role)
	return r.writePlain("Dashboard: %s\n", guard.DefaultView(snap.Role()))
}

// AuthLogout clears the persisted session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session store not initialized", shared.ErrServiceUnavailable)
	}

	r.session.Logout()
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus validates the persisted session against the backend and reports the result.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	snap, err := r.restoreSession(ctx)
	if err != nil {
		return err
	}

	status := authStatus{
		State:           snap.State.String(),
		Role:            snap.Role().String(),
		DisplayName:     snap.Session.DisplayName,
		UserID:          snap.Session.UserID,
		ArtistProfileID: snap.Session.ArtistProfileID,
		Home:            string(guard.DefaultView(snap.Role())),
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if !snap.Session.Authenticated() {
		return r.writePlain("✗ Not logged in\n")
	}

	r.writePlain("✓ Logged in as %s\n", status.DisplayName)
	r.writePlain("Role: %s\n", status.Role)
	if status.UserID != nil {
		r.writePlain("User ID: %d\n", *status.UserID)
	}
	if status.ArtistProfileID != nil {
		r.writePlain("Artist profile: %d\n", *status.ArtistProfileID)
	}
	return r.writePlain("Dashboard: %s\n", status.Home)
}
