package fetch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bookwyrm/catalog/internal/model"
)

// Executor resolves one query spec into records plus an exact total.
type Executor interface {
	ListBooks(ctx context.Context, spec model.QuerySpec) (model.BookList, error)
}

// State is the snapshot handed to consumers. Records is a fresh slice
// on every call, callers may keep it.
type State struct {
	Records     []model.Book
	Loading     bool
	Err         error
	TotalCount  int
	CurrentPage int
	PageSize    int
}

const (
	defaultDebounce = 100 * time.Millisecond
	defaultPageSize = 9
)

type Option func(*Fetcher)

// WithDebounce overrides the trailing-edge debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(f *Fetcher) { f.debounce = d }
}

// Fetcher owns the browsing state for one list view: it collapses
// bursts of identical fetch requests, debounces the remote call and
// drops responses that a newer request has superseded. All state is
// per instance, two lists on one page never interfere.
type Fetcher struct {
	exec     Executor
	log      *zap.Logger
	debounce time.Duration

	mu          sync.Mutex
	records     []model.Book
	loading     bool
	err         error
	totalCount  int
	currentPage int
	pageSize    int

	lastSpec   *model.QuerySpec
	loadedOnce bool
	seq        uint64
	timer      *time.Timer
}

func New(exec Executor, log *zap.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		exec:        exec,
		log:         log.Named("fetch"),
		debounce:    defaultDebounce,
		loading:     true,
		currentPage: 1,
		pageSize:    defaultPageSize,
	}
	for _, op := range opts {
		op(f)
	}
	return f
}

// Fetch requests the list described by spec. A spec whose fingerprint
// matches the previous one while records are already present is a
// no-op; this absorbs callers that fire on every render. Otherwise the
// spec is recorded immediately and the remote call is scheduled one
// debounce delay after the most recent Fetch: within a burst only the
// last call executes.
func (f *Fetcher) Fetch(ctx context.Context, spec model.QuerySpec) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lastSpec != nil && f.lastSpec.Equal(spec) && len(f.records) > 0 {
		return
	}

	sp := spec
	f.lastSpec = &sp
	f.loading = true
	f.seq++
	seq := f.seq

	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.debounce, func() {
		f.run(ctx, sp, seq)
	})
}

func (f *Fetcher) run(ctx context.Context, spec model.QuerySpec, seq uint64) {
	list, err := f.exec.ListBooks(ctx, spec)

	f.mu.Lock()
	defer f.mu.Unlock()

	// a newer request was issued while this one was in flight
	if seq != f.seq {
		f.log.Debug("drop stale response", zap.Uint64("seq", seq), zap.Uint64("latest", f.seq))
		return
	}

	f.loading = false
	if err != nil {
		f.records = nil
		f.err = err
		f.log.Warn("fetch failed", zap.Error(err))
		return
	}
	f.records = list.Items
	f.totalCount = list.TotalElements
	f.err = nil
	f.loadedOnce = true
}

// NotifyVisible handles the view regaining visibility: if no fetch has
// ever completed successfully the last requested spec is re-dispatched,
// otherwise nothing happens.
func (f *Fetcher) NotifyVisible(ctx context.Context) {
	f.mu.Lock()
	if f.loadedOnce || f.lastSpec == nil {
		f.mu.Unlock()
		return
	}
	spec := *f.lastSpec
	f.mu.Unlock()

	f.Fetch(ctx, spec)
}

// SetCurrentPage is a pure setter; callers re-invoke Fetch themselves,
// which lets a filter change and a page reset travel as one request.
func (f *Fetcher) SetCurrentPage(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentPage = n
}

// SetPageSize is a pure setter, see SetCurrentPage.
func (f *Fetcher) SetPageSize(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageSize = n
}

func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	records := make([]model.Book, len(f.records))
	copy(records, f.records)
	return State{
		Records:     records,
		Loading:     f.loading,
		Err:         f.err,
		TotalCount:  f.totalCount,
		CurrentPage: f.currentPage,
		PageSize:    f.pageSize,
	}
}

// Stop cancels a pending debounce timer. An in-flight request still
// settles through the usual sequence check.
func (f *Fetcher) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
}
