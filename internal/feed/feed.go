package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventfeed/internal/client"
	"eventfeed/pkg/models"
)

// DefaultInterval is the poll period used when Options.Interval is zero.
const DefaultInterval = 3 * time.Second

var (
	ErrAlreadyStarted  = errors.New("feed already started")
	ErrInvalidInterval = errors.New("poll interval must be positive")
)

// Fetcher retrieves the current event list.
type Fetcher interface {
	FetchEvents(ctx context.Context) ([]models.Event, error)
}

// View receives each applied event list. Replace must drop every previous
// row before adding the new ones.
type View interface {
	Replace(events []models.Event)
}

// Ordering decides which of several overlapping refreshes ends up on the view.
type Ordering int

const (
	// LatestIssued applies a completion only if it was issued after the one
	// currently shown. Older completions are dropped as Stale.
	LatestIssued Ordering = iota
	// LastCompleted applies every successful completion, so a slow older
	// request can overwrite newer data.
	LastCompleted
)

func (o Ordering) String() string {
	switch o {
	case LatestIssued:
		return "latest-issued"
	case LastCompleted:
		return "last-completed"
	default:
		return fmt.Sprintf("ordering(%d)", int(o))
	}
}

// ParseOrdering accepts the names produced by Ordering.String.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "latest-issued":
		return LatestIssued, nil
	case "last-completed":
		return LastCompleted, nil
	default:
		return 0, fmt.Errorf("unknown ordering %q (want latest-issued or last-completed)", s)
	}
}

type Options struct {
	Interval time.Duration
	Ordering Ordering
	// OnResult is called after every refresh, including failed and stale ones.
	// It may be called from several goroutines at once.
	OnResult func(Result)
	Logger   *slog.Logger
}

// Feed polls a Fetcher and projects the result onto a View.
type Feed struct {
	fetcher Fetcher
	view    View
	opts    Options
	log     *slog.Logger

	mu      sync.Mutex
	issued  uint64
	applied uint64
	cancel  context.CancelFunc
	loop    chan struct{}
	running sync.WaitGroup

	newTicker func(time.Duration) ticker
}

func New(fetcher Fetcher, view View, opts Options) *Feed {
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		fetcher:   fetcher,
		view:      view,
		opts:      opts,
		log:       logger.With("component", "feed"),
		newTicker: newTimeTicker,
	}
}

// Interval is the configured poll period.
func (f *Feed) Interval() time.Duration { return f.opts.Interval }

// Refresh performs one poll cycle: fetch, then replace the view on success.
func (f *Feed) Refresh(ctx context.Context) Result {
	f.mu.Lock()
	f.issued++
	gen := f.issued
	f.mu.Unlock()

	res := Result{
		Generation: gen,
		RequestID:  uuid.NewString(),
		Started:    time.Now(),
	}

	events, err := f.fetcher.FetchEvents(client.WithRequestID(ctx, res.RequestID))
	res.Duration = time.Since(res.Started)

	if err != nil {
		res.Outcome = Failed
		res.Err = err
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) {
			// Stop or a cancelled parent, not a backend problem.
			level = slog.LevelDebug
		}
		f.log.Log(ctx, level, "refresh failed", "generation", gen, "request_id", res.RequestID, "error", err)
		f.report(res)
		return res
	}
	res.Events = events

	f.mu.Lock()
	switch {
	case ctx.Err() != nil:
		res.Outcome = Failed
		res.Err = ctx.Err()
	case f.opts.Ordering == LatestIssued && gen <= f.applied:
		res.Outcome = Stale
	default:
		f.view.Replace(events)
		if gen > f.applied {
			f.applied = gen
		}
		res.Outcome = Applied
	}
	f.mu.Unlock()

	switch res.Outcome {
	case Stale:
		f.log.Debug("discarded stale refresh", "generation", gen, "request_id", res.RequestID)
	case Applied:
		f.log.Debug("refresh applied", "generation", gen, "events", len(events), "duration", res.Duration)
	}
	f.report(res)
	return res
}

func (f *Feed) report(res Result) {
	if f.opts.OnResult != nil {
		f.opts.OnResult(res)
	}
}

// Start refreshes immediately and then once per interval until ctx is done
// or Stop is called. Ticks are not delayed by slow refreshes; overlapping
// refreshes are resolved by the configured Ordering.
func (f *Feed) Start(ctx context.Context) error {
	if f.opts.Interval <= 0 {
		return ErrInvalidInterval
	}

	f.mu.Lock()
	if f.cancel != nil {
		f.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.loop = make(chan struct{})
	loop := f.loop
	f.mu.Unlock()

	t := f.newTicker(f.opts.Interval)
	f.log.Info("feed started", "interval", f.opts.Interval, "ordering", f.opts.Ordering.String())

	f.spawn(ctx)
	go func() {
		defer close(loop)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C():
				f.spawn(ctx)
			}
		}
	}()
	return nil
}

func (f *Feed) spawn(ctx context.Context) {
	f.running.Add(1)
	go func() {
		defer f.running.Done()
		f.Refresh(ctx)
	}()
}

// Stop cancels the loop and any in-flight refresh and waits for them to
// return. Stopping an idle feed is a no-op.
func (f *Feed) Stop() {
	f.mu.Lock()
	cancel, loop := f.cancel, f.loop
	f.cancel, f.loop = nil, nil
	f.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-loop
	f.running.Wait()
	f.log.Info("feed stopped")
}

// Running reports whether the poll loop is active.
func (f *Feed) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancel != nil
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.Ticker.C }

func newTimeTicker(d time.Duration) ticker { return timeTicker{time.NewTicker(d)} }
