package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/catx/internal/formatter"
	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
	defaultRate    = 5.0
	manifestName   = "search_manifest.json"
)

// BatchOpts contains configuration for batch searches.
type BatchOpts struct {
	Format     formatter.Format // Output format for each result set
	OutputDir  string           // Base output directory (default: catx_search_{epoch})
	Limit      int              // Per-entity result limit sent to the backend
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
	RateLimit  float64          // Requests per second (default: 5)
}

// QueryResult is the outcome of one query in a batch.
type QueryResult struct {
	Index   int      `json:"index"`
	Query   string   `json:"query"`
	Tracks  int      `json:"tracks"`
	Artists int      `json:"artists"`
	Albums  int      `json:"albums"`
	Files   []string `json:"files,omitempty"`
	Error   string   `json:"error,omitempty"`
	Err     error    `json:"-"`
}

// Success reports whether the query was searched and written.
func (r QueryResult) Success() bool { return r.Err == nil }

// BatchResult summarizes a batch search. It doubles as the manifest written to the output directory.
type BatchResult struct {
	RunID           string        `json:"run_id"`
	Format          string        `json:"format"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	TotalQueries    int           `json:"total_queries"`
	Succeeded       int           `json:"succeeded"`
	Failed          int           `json:"failed"`
	OutputDirectory string        `json:"output_directory"`
	ManifestPath    string        `json:"-"`
	Results         []QueryResult `json:"results"`
}

type batchJob struct {
	index int
	query string
}

// BatchSearch searches every query concurrently under a shared rate limit and writes the results.
//
// Failed queries are reported in the result; only setup and manifest failures are returned as errors.
func (e *Engine) BatchSearch(ctx context.Context, progress chan<- ProgressUpdate, queries []string, opts BatchOpts) (*BatchResult, error) {
	if e.searcher == nil {
		return nil, fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no queries to search", shared.ErrMissingArgument)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("catx_search_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRate
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BatchResult{
		RunID:           shared.GenerateID(),
		Format:          string(opts.Format),
		StartedAt:       time.Now(),
		TotalQueries:    len(queries),
		OutputDirectory: opts.OutputDir,
		Results:         make([]QueryResult, 0, len(queries)),
	}
	logger := e.logger.With("run_id", result.RunID)
	logger.Info("starting batch search", "queries", len(queries), "workers", opts.NumWorkers, "rate", opts.RateLimit)

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan batchJob, len(queries))
	results := make(chan QueryResult, len(queries))

	for i, query := range queries {
		jobs <- batchJob{index: i, query: query}
	}
	close(jobs)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.searchWorker(ctx, &wg, limiter, jobs, results, result.RunID, opts)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	e.sendProgress(progress, prepareUpdate(len(queries), opts.OutputDir))

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success() {
			result.Succeeded++
			e.sendProgress(progress, queryCompletedUpdate(completed, len(queries), res))
		} else {
			result.Failed++
			logger.Warn("query failed", "query", res.Query, "error", res.Err)
			e.sendProgress(progress, queryFailedUpdate(completed, len(queries), res))
		}
	}

	sort.Slice(result.Results, func(i, j int) bool { return result.Results[i].Index < result.Results[j].Index })
	result.FinishedAt = time.Now()

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	e.sendProgress(progress, manifestUpdate(len(queries), manifestPath))
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("search completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// searchWorker searches queries from the jobs channel until it is drained or ctx is done.
func (e *Engine) searchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan batchJob,
	results chan<- QueryResult,
	runID string,
	opts BatchOpts,
) {
	defer wg.Done()

	for job := range jobs {
		res := QueryResult{Index: job.index, Query: job.query}

		if err := limiter.Wait(ctx); err != nil {
			res.Err = fmt.Errorf("rate limiter: %w", err)
			res.Error = res.Err.Error()
			results <- res
			continue
		}

		results <- e.searchSingle(ctx, job, runID, opts)
	}
}

// searchSingle searches one query, records it and writes its result file.
func (e *Engine) searchSingle(ctx context.Context, job batchJob, runID string, opts BatchOpts) QueryResult {
	res := QueryResult{Index: job.index, Query: job.query}

	found, err := e.searcher.SearchMulti(ctx, job.query, opts.Limit)
	e.record(ctx, runID, job.query, found, err)
	if err != nil {
		res.Err = fmt.Errorf("search failed: %w", err)
		res.Error = res.Err.Error()
		return res
	}

	if found == nil {
		found = &models.SearchResults{}
	}
	found.Normalize()
	res.Tracks, res.Artists, res.Albums = len(found.Tracks), len(found.Artists), len(found.Albums)

	name := fmt.Sprintf("%03d_%s", job.index+1, formatter.Slug(job.query))
	path, err := formatter.WriteResultsFile(opts.OutputDir, name, opts.Format, job.query, found)
	if err != nil {
		res.Err = err
		res.Error = err.Error()
		return res
	}

	res.Files = []string{path}
	return res
}

func (e *Engine) record(ctx context.Context, runID, query string, results *models.SearchResults, err error) {
	if e.recorder == nil {
		return
	}
	if recErr := e.recorder.RecordSearch(ctx, runID, query, results, err); recErr != nil {
		e.logger.Debug("failed to record search", "query", query, "error", recErr)
	}
}
