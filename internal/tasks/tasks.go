// package tasks implements batch search operations against the catalog backend.
package tasks

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/catx/internal/models"
)

// Searcher issues multi-entity searches.
type Searcher interface {
	SearchMulti(ctx context.Context, query string, limit int) (*models.SearchResults, error)
}

// Recorder stores the outcome of one batch query.
type Recorder interface {
	RecordSearch(ctx context.Context, runID, query string, results *models.SearchResults, err error) error
}

// Engine runs batch searches.
type Engine struct {
	searcher Searcher
	recorder Recorder
	logger   *log.Logger
}

// NewEngine creates a new Engine with the given searcher.
func NewEngine(searcher Searcher, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{searcher: searcher, logger: logger}
}

// SetRecorder enables search history recording.
func (e *Engine) SetRecorder(r Recorder) {
	e.recorder = r
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ReadQueries reads one query per line, skipping blank lines, # comments and duplicates.
func ReadQueries(r io.Reader) ([]string, error) {
	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		queries = append(queries, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	return queries, nil
}
