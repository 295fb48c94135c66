package listing

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/shared"
)

// Phase is the lifecycle stage of a [Synchronizer].
type Phase int

const (
	NotHydrated Phase = iota
	Idle
	Fetching
)

func (p Phase) String() string {
	switch p {
	case NotHydrated:
		return "not-hydrated"
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// FetchFunc loads data for a set of filters.
type FetchFunc[R any] func(ctx context.Context, f Filters) (R, error)

// QueryWriter receives the canonical query string after every change. It must not grow navigation history.
type QueryWriter interface {
	ReplaceQuery(q url.Values)
}

// Snapshot is an immutable view of a synchronizer's state.
type Snapshot[R any] struct {
	Phase   Phase
	Filters Filters
	Query   url.Values
	Draft   string
	Data    R
	HasData bool
	Err     error
	Version uint64
}

func (s Snapshot[R]) Loading() bool { return s.Phase == Fetching }

// Options configures a [Synchronizer].
type Options[R any] struct {
	Config Config
	Fetch  FetchFunc[R]
	// Merge combines displayed data with a later page. Required in [Append] mode.
	Merge  func(prev, next R) R
	URL    QueryWriter
	Clock  shared.Clock
	Logger *log.Logger
	// Context is the parent of every fetch context. Defaults to [context.Background].
	Context context.Context
}

// Synchronizer binds a list view's [Filters] to its URL and its fetches.
//
// Every change after hydration rewrites the URL and, unless the field is passive, issues a fetch tagged
// with a new generation. The previous fetch is cancelled and its response discarded if it still arrives.
type Synchronizer[R any] struct {
	cfg    Config
	fetch  FetchFunc[R]
	merge  func(prev, next R) R
	url    QueryWriter
	clock  shared.Clock
	logger *log.Logger
	parent context.Context

	mu       sync.Mutex
	phase    Phase
	filters  Filters
	draft    string
	data     R
	hasData  bool
	err      error
	version  uint64
	gen      uint64
	cancel   context.CancelFunc
	debounce func() bool
	typing   uint64
	closed   bool

	wg        sync.WaitGroup
	pubMu     sync.Mutex
	published uint64
	updates   chan Snapshot[R]

	urlMu     sync.Mutex
	written   uint64
	urlClosed bool
}

func New[R any](opts Options[R]) *Synchronizer[R] {
	if opts.Clock == nil {
		opts.Clock = shared.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.URL == nil {
		opts.URL = discardQuery{}
	}

	return &Synchronizer[R]{
		cfg:     opts.Config,
		fetch:   opts.Fetch,
		merge:   opts.Merge,
		url:     opts.URL,
		clock:   opts.Clock,
		logger:  opts.Logger,
		parent:  opts.Context,
		filters: opts.Config.Normalize(opts.Config.Defaults),
		updates: make(chan Snapshot[R], 1),
	}
}

// Updates delivers the latest snapshot after every change. Only the newest undelivered snapshot is kept.
func (s *Synchronizer[R]) Updates() <-chan Snapshot[R] { return s.updates }

// Snapshot returns the current state.
func (s *Synchronizer[R]) Snapshot() Snapshot[R] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Hydrate seeds state from q, canonicalizes the URL and issues the first fetch. It may run only once.
func (s *Synchronizer[R]) Hydrate(q url.Values) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrCancelled
	}
	if s.phase != NotHydrated {
		s.mu.Unlock()
		return shared.ErrAlreadyHydrated
	}

	s.filters = s.cfg.Decode(q)
	s.draft = s.filters.Query
	s.phase = Idle
	s.startLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("hydrated", "query", snap.Query.Encode())
	s.writeURL(snap)
	s.publish(snap)
	return nil
}

func (s *Synchronizer[R]) SetGenre(v string) error {
	return s.update(ParamGenre, func(f *Filters) { f.Genre = v })
}

func (s *Synchronizer[R]) SetStatus(v string) error {
	return s.update(ParamStatus, func(f *Filters) { f.Status = v })
}

func (s *Synchronizer[R]) SetSort(v string) error {
	return s.update(ParamSort, func(f *Filters) { f.Sort = v })
}

func (s *Synchronizer[R]) SetTags(tags []string) error {
	return s.update(ParamTags, func(f *Filters) { f.Tags = slices.Clone(tags) })
}

func (s *Synchronizer[R]) SetTab(v int) error {
	return s.update(ParamTab, func(f *Filters) { f.Tab = v })
}

func (s *Synchronizer[R]) SetView(v string) error {
	return s.update(ParamView, func(f *Filters) { f.View = v })
}

func (s *Synchronizer[R]) SetPage(v int) error {
	return s.update(ParamPage, func(f *Filters) { f.Page = v })
}

func (s *Synchronizer[R]) SetLimit(v int) error {
	return s.update(ParamLimit, func(f *Filters) { f.Limit = v })
}

// Type records the search draft and commits it once the debounce window passes without another call.
func (s *Synchronizer[R]) Type(draft string) error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}

	s.draft = draft
	s.version++
	s.stopDebounceLocked()
	s.typing++
	token := s.typing

	if s.cfg.Debounce > 0 {
		s.debounce = s.clock.AfterFunc(s.cfg.Debounce, func() { s.commit(token) })
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	if s.cfg.Debounce <= 0 {
		s.commit(token)
	}
	return nil
}

// CommitSearch applies the current draft immediately, cancelling any pending debounce.
func (s *Synchronizer[R]) CommitSearch() error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.stopDebounceLocked()
	s.typing++
	draft := s.draft
	s.mu.Unlock()

	return s.update(ParamQuery, func(f *Filters) { f.Query = draft })
}

func (s *Synchronizer[R]) commit(token uint64) {
	s.mu.Lock()
	if token != s.typing {
		s.mu.Unlock()
		return
	}
	s.debounce = nil
	draft := s.draft
	s.mu.Unlock()

	if err := s.update(ParamQuery, func(f *Filters) { f.Query = draft }); err != nil {
		s.logger.Debug("search commit skipped", "error", err)
	}
}

// LoadMore requests the next page of an [Append] list. It does nothing while a fetch is in flight.
func (s *Synchronizer[R]) LoadMore() error {
	if s.cfg.Mode != Append {
		return fmt.Errorf("%w: load more requires an append list", shared.ErrInvalidArgument)
	}

	s.mu.Lock()
	busy := s.phase == Fetching
	s.mu.Unlock()
	if busy {
		return nil
	}
	return s.update(ParamPage, func(f *Filters) { f.Page++ })
}

// Refresh re-issues the current request. An [Append] list starts over from the first page.
func (s *Synchronizer[R]) Refresh() error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}

	if s.cfg.Mode == Append {
		s.filters.Page = s.cfg.FirstPage()
		s.clearLocked()
	}
	s.startLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.writeURL(snap)
	s.publish(snap)
	return nil
}

// Close cancels in-flight work and pending debounce timers, then waits for fetch goroutines to return.
func (s *Synchronizer[R]) Close() {
	s.mu.Lock()
	s.closed = true
	s.gen++
	s.typing++
	s.stopDebounceLocked()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.urlMu.Lock()
	s.urlClosed = true
	s.urlMu.Unlock()

	s.wg.Wait()
}

// Wait blocks until no fetch goroutine is running.
func (s *Synchronizer[R]) Wait() { s.wg.Wait() }

func (s *Synchronizer[R]) update(p Param, mutate func(*Filters)) error {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}

	next := s.filters
	next.Tags = slices.Clone(next.Tags)
	mutate(&next)
	if s.cfg.resets(p) {
		next.Page = s.cfg.FirstPage()
	}
	next = s.cfg.Normalize(next)

	if next.Equal(s.filters) {
		s.mu.Unlock()
		return nil
	}

	if s.cfg.resets(p) {
		s.clearLocked()
	}
	s.filters = next
	s.version++

	if !s.cfg.passive(p) {
		s.startLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("filters changed", "param", p, "query", snap.Query.Encode())
	s.writeURL(snap)
	s.publish(snap)
	return nil
}

// startLocked supersedes any in-flight fetch and launches a new one for the current filters.
func (s *Synchronizer[R]) startLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(s.parent)
	s.cancel = cancel
	s.phase = Fetching
	s.version++

	f := s.filters
	f.Tags = slices.Clone(f.Tags)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		data, err := s.fetch(ctx, f)
		s.finish(gen, f, data, err)
	}()
}

func (s *Synchronizer[R]) finish(gen uint64, f Filters, data R, err error) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("discarding superseded response", "generation", gen)
		return
	}

	s.phase = Idle
	s.cancel = nil
	s.version++
	rewound := false
	if err != nil {
		s.err = err
		s.logger.Error("list fetch failed", "error", err)
		// A failed later page of an append list is retried by the next LoadMore.
		if s.cfg.Mode == Append && f.Page > s.cfg.FirstPage() && s.filters.Page == f.Page {
			s.filters.Page = f.Page - 1
			rewound = true
		}
	} else {
		s.err = nil
		if s.cfg.Mode == Append && f.Page != s.cfg.FirstPage() && s.hasData && s.merge != nil {
			s.data = s.merge(s.data, data)
		} else {
			s.data = data
		}
		s.hasData = true
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if rewound {
		s.writeURL(snap)
	}
	s.publish(snap)
}

func (s *Synchronizer[R]) usableLocked() error {
	switch {
	case s.closed:
		return shared.ErrCancelled
	case s.phase == NotHydrated:
		return shared.ErrNotHydrated
	}
	return nil
}

func (s *Synchronizer[R]) clearLocked() {
	var zero R
	s.data = zero
	s.hasData = false
	s.err = nil
}

func (s *Synchronizer[R]) stopDebounceLocked() {
	if s.debounce != nil {
		s.debounce()
		s.debounce = nil
	}
}

func (s *Synchronizer[R]) snapshotLocked() Snapshot[R] {
	f := s.filters
	f.Tags = slices.Clone(f.Tags)
	return Snapshot[R]{
		Phase:   s.phase,
		Filters: f,
		Query:   s.cfg.Encode(f),
		Draft:   s.draft,
		Data:    s.data,
		HasData: s.hasData,
		Err:     s.err,
		Version: s.version,
	}
}

// writeURL passes snap's query to the URL unless a newer snapshot was already written or the
// synchronizer is closed. Writes are serialized so the URL always ends on the latest filters.
func (s *Synchronizer[R]) writeURL(snap Snapshot[R]) {
	s.urlMu.Lock()
	defer s.urlMu.Unlock()

	if s.urlClosed || snap.Version < s.written {
		return
	}
	s.written = snap.Version
	s.url.ReplaceQuery(snap.Query)
}

// publish hands snap to the updates channel, replacing an undelivered older snapshot.
func (s *Synchronizer[R]) publish(snap Snapshot[R]) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	if snap.Version < s.published {
		return
	}
	s.published = snap.Version

	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- snap:
	default:
	}
}

type discardQuery struct{}

func (discardQuery) ReplaceQuery(url.Values) {}
