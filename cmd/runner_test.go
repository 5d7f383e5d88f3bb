package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/repositories"
	"github.com/desertthunder/catx/internal/services"
	"github.com/desertthunder/catx/internal/shared"
	tu "github.com/desertthunder/catx/internal/testing"
	"github.com/urfave/cli/v3"
)

var alice = tu.CatalogAccount{
	Identifier: "alice",
	Secret:     "right",
	Credential: "T1",
	Identity: models.Identity{
		Role:            "artist",
		UserID:          tu.Int64(1),
		ArtistProfileID: tu.Int64(42),
		DisplayName:     "Alice",
	},
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestRunner builds a runner against srv. Runners sharing db behave like separate invocations of the CLI.
func newTestRunner(t *testing.T, srv *tu.CatalogServer, db *sql.DB) (*Runner, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		API:    services.NewAPIService(srv.URL, srv.Client()),
		DB:     db,
		Logger: log.New(io.Discard),
		Output: output,
	})
	return runner, output
}

func run(r *Runner, args ...string) error {
	app := &cli.Command{
		Name:     "catx",
		Writer:   io.Discard,
		Commands: r.register(),
	}
	return app.Run(context.Background(), append([]string{"catx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			input := strings.NewReader("")
			api := services.NewAPIService("", nil)

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Input:  input,
				API:    api,
				DB:     setupTestDB(t),
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.input != input {
				t.Error("expected input to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.session == nil || runner.history == nil || runner.engine == nil {
				t.Error("expected session, history and engine to be wired")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
			if runner.api == nil {
				t.Error("expected api client to be created")
			}
		})

		t.Run("without database has no session", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: log.New(io.Discard)})

			if runner.session != nil {
				t.Error("expected no session manager without a database")
			}

			err := run(runner, "auth", "status")
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, name := range []string{"setup", "auth", "search", "route", "api", "tui"} {
			if !names[name] {
				t.Errorf("expected %q command to be registered", name)
			}
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("login persists session", func(t *testing.T) {
		srv := tu.NewCatalogServer(t, alice)
		db := setupTestDB(t)
		runner, output := newTestRunner(t, srv, db)

		if err := run(runner, "auth", "login", "-u", "alice", "-p", "right"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Logged in as Alice (artist)") {
			t.Errorf("unexpected output %q", output.String())
		}

		stored, err := repositories.NewSessionRepository(db).Load(context.Background())
		if err != nil {
			t.Fatalf("failed to load session: %v", err)
		}
		if stored.Credential != "T1" || stored.Role != models.RoleArtist {
			t.Errorf("expected persisted artist session, got %+v", stored)
		}

		next, output := newTestRunner(t, srv, db)
		if err := run(next, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"Logged in as Alice", "Artist profile: 42", "/dashboard/artist"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in %q", want, output.String())
			}
		}
	})

	t.Run("rejected login", func(t *testing.T) {
		srv := tu.NewCatalogServer(t, alice)
		runner, _ := newTestRunner(t, srv, setupTestDB(t))

		err := run(runner, "auth", "login", "-u", "alice", "-p", "wrong")
		if !errors.Is(err, shared.ErrAuthRejected) {
			t.Errorf("expected ErrAuthRejected, got %v", err)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		srv := tu.NewCatalogServer(t, alice)
		runner, _ := newTestRunner(t, srv, setupTestDB(t))

		err := run(runner, "auth", "login", "-u", "alice")
		if !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if srv.Hits("/auth/login") != 0 {
			t.Error("expected no request without a secret")
		}
	})

	t.Run("revoked session is cleared", func(t *testing.T) {
		srv := tu.NewCatalogServer(t, alice)
		db := setupTestDB(t)
		runner, _ := newTestRunner(t, srv, db)
		if err := run(runner, "auth", "login", "-u", "alice", "-p", "right"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		srv.Revoke("T1")

		next, output := newTestRunner(t, srv, db)
		if err := run(next, "auth", "status", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"state": "anonymous"`) {
			t.Errorf("expected anonymous status, got %q", output.String())
		}

		stored, _ := repositories.NewSessionRepository(db).Load(context.Background())
		if stored.Credential != "" {
			t.Error("expected persisted session to be cleared")
		}
	})

	t.Run("logout", func(t *testing.T) {
		srv := tu.NewCatalogServer(t, alice)
		db := setupTestDB(t)
		runner, _ := newTestRunner(t, srv, db)
		if err := run(runner, "auth", "login", "-u", "alice", "-p", "right"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		next, output := newTestRunner(t, srv, db)
		if err := run(next, "auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := run(next, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Not logged in") {
			t.Errorf("expected logged out status, got %q", output.String())
		}
	})
}

func TestRouteCommand(t *testing.T) {
	tests := []struct {
		name     string
		login    bool
		view     string
		expected string
	}{
		{name: "anonymous public view", view: "/search", expected: "✓ /search"},
		{name: "anonymous dashboard", view: "/dashboard/admin", expected: "→ /login"},
		{name: "unknown view", view: "/nowhere", expected: "(unknown view)"},
		{name: "artist dashboard alias", login: true, view: "dashboard", expected: "→ /dashboard/artist"},
		{name: "artist denied admin", login: true, view: "/dashboard/admin", expected: "(role: artist)"},
		{name: "artist login page", login: true, view: "/login", expected: "→ /dashboard/artist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := tu.NewCatalogServer(t, alice)
			runner, output := newTestRunner(t, srv, setupTestDB(t))
			if tt.login {
				if err := run(runner, "auth", "login", "-u", "alice", "-p", "right"); err != nil {
					t.Fatalf("login failed: %v", err)
				}
				output.Reset()
			}

			if err := run(runner, "route", tt.view); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), tt.expected) {
				t.Errorf("expected %q in %q", tt.expected, output.String())
			}
		})
	}
}

func TestSearchCommands(t *testing.T) {
	blue := func(query string, limit int) models.SearchResults {
		return models.SearchResults{
			Tracks:  []models.TrackSummary{{ID: 1, Title: query + " song", ArtistName: "Band", Duration: 125}},
			Artists: []models.ArtistSummary{{ID: 2, Name: "Band"}},
		}
	}

	t.Run("search prints results", func(t *testing.T) {
		srv := tu.NewCatalogServer(t, alice)
		srv.SetSearch(blue)
		runner, output := newTestRunner(t, srv, setupTestDB(t))

		if err := run(runner, "search", "--format", "csv", "blue", "monday"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		result := output.String()
		if !strings.HasPrefix(result, "Kind,ID,Name,Artist,Album,Duration") {
			t.Errorf("expected CSV header, got %q", result)
		}
		if !strings.Contains(result, "blue monday song") {
			t.Errorf("expected joined query in results, got %q", result)
		}
		if headers := srv.AuthHeaders("/search/multi"); len(headers) != 1 || headers[0] != "" {
			t.Errorf("expected one anonymous search, got %v", headers)
		}
	})

	t.Run("search carries session credential", func(t *testing.T) {
		srv := tu.NewCatalogServer(t, alice)
		db := setupTestDB(t)
		runner, _ := newTestRunner(t, srv, db)
		if err := run(runner, "auth", "login", "-u", "alice", "-p", "right"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		next, _ := newTestRunner(t, srv, db)
		if err := run(next, "search", "blue"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if headers := srv.AuthHeaders("/search/multi"); len(headers) != 1 || headers[0] != "Bearer T1" {
			t.Errorf("expected bearer credential, got %v", headers)
		}
	})

	t.Run("search requires a query", func(t *testing.T) {
		srv := tu.NewCatalogServer(t)
		runner, _ := newTestRunner(t, srv, setupTestDB(t))

		if err := run(runner, "search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("search rejects unknown format", func(t *testing.T) {
		srv := tu.NewCatalogServer(t)
		runner, _ := newTestRunner(t, srv, setupTestDB(t))

		if err := run(runner, "search", "--format", "xml", "blue"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("batch from stdin records history", func(t *testing.T) {
		srv := tu.NewCatalogServer(t)
		srv.SetSearch(blue)
		db := setupTestDB(t)
		dir := filepath.Join(t.TempDir(), "out")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			API:    services.NewAPIService(srv.URL, srv.Client()),
			DB:     db,
			Logger: log.New(io.Discard),
			Output: output,
			Input:  strings.NewReader("blue\n# skipped\n\nred\nBlue\n"),
		})

		if err := run(runner, "search", "batch", "--format", "markdown", "--output", dir, "--rate", "100"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Succeeded: 2/2") {
			t.Errorf("expected two searched queries, got %q", output.String())
		}
		tu.AssertFileExists(t, filepath.Join(dir, "search_manifest.json"))
		tu.AssertFileExists(t, filepath.Join(dir, "001_blue.md"))
		tu.AssertFileExists(t, filepath.Join(dir, "002_red.md"))

		output.Reset()
		if err := run(runner, "search", "history"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, query := range []string{"blue", "red"} {
			if !strings.Contains(output.String(), query) {
				t.Errorf("expected %q in history %q", query, output.String())
			}
		}
	})

	t.Run("batch from missing file", func(t *testing.T) {
		srv := tu.NewCatalogServer(t)
		runner, _ := newTestRunner(t, srv, setupTestDB(t))

		err := run(runner, "search", "batch", filepath.Join(t.TempDir(), "missing.txt"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestAPICommands(t *testing.T) {
	t.Run("get with session", func(t *testing.T) {
		srv := tu.NewCatalogServer(t, alice)
		db := setupTestDB(t)
		runner, _ := newTestRunner(t, srv, db)
		if err := run(runner, "auth", "login", "-u", "alice", "-p", "right"); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		next, output := newTestRunner(t, srv, db)
		if err := run(next, "api", "get", "/library"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"tracks":[]`) {
			t.Errorf("expected library JSON, got %q", output.String())
		}
	})

	t.Run("get without session", func(t *testing.T) {
		srv := tu.NewCatalogServer(t)
		runner, _ := newTestRunner(t, srv, setupTestDB(t))

		err := run(runner, "api", "get", "/library")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("post rejects invalid JSON", func(t *testing.T) {
		srv := tu.NewCatalogServer(t)
		runner, _ := newTestRunner(t, srv, setupTestDB(t))

		err := run(runner, "api", "post", "-d", "{nope", "/auth/login")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: log.New(io.Discard)})

		if err := run(runner, "setup", "config", "-c", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)

		if err := run(runner, "setup", "config", "-c", path); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected existing config to be rejected, got %v", err)
		}
	})

	t.Run("database", func(t *testing.T) {
		dir := t.TempDir()
		original := tu.MustGetwd(t)
		tu.MustChdir(t, dir)
		t.Cleanup(func() { tu.MustChdir(t, original) })

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: log.New(io.Discard)})
		if err := run(runner, "setup", "database", "-c", "config.toml"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
		config, err := shared.LoadConfig(filepath.Join(dir, "config.toml"))
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, config.Database.Path))
	})
}
