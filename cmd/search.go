package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/catx/internal/formatter"
	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/shared"
	"github.com/desertthunder/catx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Search runs one multi-entity search and prints the results.
//
// The persisted session is restored first so the request carries its credential.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: query is required", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	if limit <= 0 {
		limit = r.config.Search.Limit
	}

	if r.session != nil {
		r.restoreSession(ctx)
	}

	r.logger.Info("searching catalog", "query", query, "limit", limit)
	results, err := r.api.SearchMulti(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return formatter.WriteResults(r.output, format, query, results)
}

// SearchBatch searches every query read from a file, or stdin when no file is given, and exports the
// results with a manifest.
func (r *Runner) SearchBatch(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	input := r.input
	if path := cmd.StringArg("file"); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		defer f.Close()
		input = f
	}

	queries, err := tasks.ReadQueries(input)
	if err != nil {
		return err
	}

	opts := tasks.BatchOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		Limit:      cmd.Int("limit"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}
	if opts.Limit <= 0 {
		opts.Limit = r.config.Search.Limit
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = r.config.Search.Workers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = r.config.Search.RateLimit
	}

	if r.session != nil {
		r.restoreSession(ctx)
	}

	r.logger.Info("starting batch search", "queries", len(queries), "format", format)
	r.writePlain("Searching %d queries...\n\n", len(queries))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Prepare:
				r.writePlain("📁 %s\n", update.Message)
			case tasks.SearchQueries:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.BatchSearch(ctx, progressCh, queries, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Batch Search Complete!")
	r.writePlain("Run: %s\n", result.RunID)
	r.writePlain("Succeeded: %d/%d\n", result.Succeeded, result.TotalQueries)
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.Failed > 0 {
		r.writePlain("\nFailed %d queries:\n", result.Failed)
		for _, res := range result.Results {
			if !res.Success() {
				r.writePlain("  - %s: %s\n", res.Query, res.Error)
			}
		}
	}
	return nil
}

// SearchHistory lists recorded batch searches, newest first.
func (r *Runner) SearchHistory(ctx context.Context, cmd *cli.Command) error {
	if r.history == nil {
		return fmt.Errorf("%w: search history not initialized", shared.ErrServiceUnavailable)
	}

	var records []models.SearchRecord
	var err error
	if runID := cmd.String("run"); runID != "" {
		records, err = r.history.ListByRun(ctx, runID)
	} else {
		records, err = r.history.Recent(ctx, cmd.Int("limit"))
	}
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return r.writePlain("No searches recorded\n")
	}

	for _, rec := range records {
		status := "✓"
		if rec.Failed() {
			status = "✗"
		}
		r.writePlain("%s %s  %-30s tracks=%d artists=%d albums=%d\n",
			status, rec.CreatedAt.Format("2006-01-02 15:04"), rec.Query, rec.Tracks, rec.Artists, rec.Albums)
	}
	return nil
}
