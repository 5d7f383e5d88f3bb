package search

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/catx/internal/models"
	"github.com/desertthunder/catx/internal/shared"
)

const DefaultLimit = 10

// Phase is the state of a [Coordinator].
type Phase int

const (
	Idle Phase = iota
	Pending
	InFlight
	Settled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case InFlight:
		return "in_flight"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// Searcher issues the multi-entity search request.
type Searcher interface {
	SearchMulti(ctx context.Context, query string, limit int) (*models.SearchResults, error)
}

// Options configures a [Coordinator]. Zero values select the defaults.
type Options struct {
	Delay     time.Duration // clamped to [shared.MinDebounce], [shared.MaxDebounce]
	Limit     int
	Scheduler Scheduler
	Logger    *log.Logger
}

// Snapshot is a copy of the coordinator state.
//
// The result slices are shared with the coordinator and must not be modified.
type Snapshot struct {
	Phase   Phase
	Query   models.SearchQuery
	Results models.SearchResultSet
	Err     error // failure of the newest query, if any
}

// Coordinator owns the search input state. It is safe for concurrent use.
type Coordinator struct {
	searcher Searcher
	sched    Scheduler
	delay    time.Duration
	limit    int
	logger   *log.Logger

	ctx      context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup
	changes  chan struct{}

	mu        sync.Mutex
	phase     Phase
	query     models.SearchQuery
	results   models.SearchResultSet
	err       error
	stopTimer func() bool
	cancel    context.CancelFunc
	closed    bool
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator(searcher Searcher, opts Options) *Coordinator {
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	ctx, shutdown := context.WithCancel(context.Background())
	c := &Coordinator{
		searcher: searcher,
		sched:    opts.Scheduler,
		delay:    shared.ClampDebounce(opts.Delay),
		limit:    opts.Limit,
		logger:   opts.Logger,
		ctx:      ctx,
		shutdown: shutdown,
		changes:  make(chan struct{}, 1),
	}
	c.results.Normalize()
	return c
}

// Delay returns the debounce delay in use.
func (c *Coordinator) Delay() time.Duration { return c.delay }

// Changes signals after every state change. Signals coalesce; read [Coordinator.Snapshot] on receipt.
func (c *Coordinator) Changes() <-chan struct{} { return c.changes }

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Phase: c.phase, Query: c.query, Results: c.results, Err: c.err}
}

// SetText records an edit of the search text.
//
// Non-empty text restarts the debounce timer. Empty (or blank) text cancels the timer and any request in
// flight and clears the results immediately.
func (c *Coordinator) SetText(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.query = models.SearchQuery{Text: text, Sequence: c.query.Sequence + 1}
	c.err = nil
	c.stopTimerLocked()

	if strings.TrimSpace(text) == "" {
		c.cancelLocked()
		c.results = models.SearchResultSet{ForSequence: c.query.Sequence}
		c.results.Normalize()
		c.phase = Idle
	} else {
		seq := c.query.Sequence
		c.stopTimer = c.sched.AfterFunc(c.delay, func() { c.fire(seq) })
		c.phase = Pending
	}
	c.mu.Unlock()

	c.notify()
}

// Flush issues the pending query now instead of waiting for the timer.
func (c *Coordinator) Flush() {
	c.mu.Lock()
	if c.phase != Pending {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	seq := c.query.Sequence
	c.mu.Unlock()

	c.fire(seq)
}

// fire issues the request for seq if it is still the pending query.
func (c *Coordinator) fire(seq int64) {
	c.mu.Lock()
	if c.closed || c.phase != Pending || c.query.Sequence != seq {
		c.mu.Unlock()
		return
	}

	c.stopTimer = nil
	c.cancelLocked()
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.phase = InFlight
	text := strings.TrimSpace(c.query.Text)
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("searching", "query", text, "sequence", seq)
	c.notify()

	go func() {
		defer c.wg.Done()
		defer cancel()

		results, err := c.searcher.SearchMulti(ctx, text, c.limit)
		c.complete(seq, results, err)
	}()
}

// complete applies the response for seq if it is newer than the accepted result set.
func (c *Coordinator) complete(seq int64, results *models.SearchResults, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if err != nil {
		if seq != c.query.Sequence {
			c.mu.Unlock()
			c.logger.Debug("dropping error for superseded query", "sequence", seq, "error", err)
			return
		}
		c.err = err
		c.phase = Settled
		c.mu.Unlock()

		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("search failed", "sequence", seq, "error", err)
		}
		c.notify()
		return
	}

	if seq <= c.results.ForSequence {
		c.mu.Unlock()
		c.logger.Debug("discarding response", "sequence", seq, "accepted", c.results.ForSequence, "reason", shared.ErrStale)
		return
	}

	c.results = models.SearchResultSet{ForSequence: seq}
	if results != nil {
		c.results.SearchResults = *results
	}
	c.results.Normalize()
	if seq == c.query.Sequence {
		c.phase = Settled
		c.err = nil
	}
	c.mu.Unlock()

	c.notify()
}

// wait blocks until every request issued so far has completed. The caller must not trigger new requests
// concurrently; tests call it after driving the scheduler from the same goroutine.
func (c *Coordinator) wait() {
	c.wg.Wait()
}

// Close stops the timer, cancels requests in flight and waits for them to return.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopTimerLocked()
	c.cancelLocked()
	c.mu.Unlock()

	c.shutdown()
	c.wg.Wait()
}

func (c *Coordinator) stopTimerLocked() {
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
}

func (c *Coordinator) cancelLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Coordinator) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
