package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	rcron "github.com/robfig/cron/v3"

	"github.com/goliatone/go-flowchart"
)

// DefaultRefreshSchedule refreshes unread counts once a minute.
const DefaultRefreshSchedule = "@every 1m"

type mailbox struct {
	user, organization int64
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithSchedule sets the cron expression the refresh job runs on.
func WithSchedule(expr string) RefresherOption {
	return func(r *Refresher) { r.schedule = expr }
}

// WithLocation sets the timezone used to evaluate the schedule.
func WithLocation(loc *time.Location) RefresherOption {
	return func(r *Refresher) { r.location = loc }
}

// WithSeconds accepts a leading seconds field in the schedule.
func WithSeconds() RefresherOption {
	return func(r *Refresher) { r.seconds = true }
}

func WithRefresherLogger(l flowchart.Logger) RefresherOption {
	return func(r *Refresher) { r.logger = l }
}

// Refresher caches unread counts and refreshes the watched mailboxes on a cron
// schedule. It implements UnreadCounter.
type Refresher struct {
	mu      sync.RWMutex
	source  UnreadCounter
	counts  map[mailbox]int
	watched map[mailbox]struct{}

	schedule string
	location *time.Location
	seconds  bool
	logger   flowchart.Logger

	cron    *rcron.Cron
	entryID rcron.EntryID
}

// NewRefresher wraps source with a cache.
func NewRefresher(source UnreadCounter, opts ...RefresherOption) (*Refresher, error) {
	if source == nil {
		return nil, invalid(ErrInvalidOptions, "option", "unread counter is required")
	}
	r := &Refresher{
		source:   source,
		counts:   make(map[mailbox]int),
		watched:  make(map[mailbox]struct{}),
		schedule: DefaultRefreshSchedule,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.logger == nil {
		r.logger = flowchart.NewFmtLogger(nil)
	}
	return r, nil
}

// Watch adds a mailbox to the set refreshed by the job.
func (r *Refresher) Watch(userID, organizationID int64) {
	r.mu.Lock()
	r.watched[mailbox{userID, organizationID}] = struct{}{}
	r.mu.Unlock()
}

// Unwatch stops refreshing a mailbox and drops its cached count.
func (r *Refresher) Unwatch(userID, organizationID int64) {
	key := mailbox{userID, organizationID}
	r.mu.Lock()
	delete(r.watched, key)
	delete(r.counts, key)
	r.mu.Unlock()
}

// UnreadCount returns the cached count. A miss queries the source, caches the
// result and watches the mailbox.
func (r *Refresher) UnreadCount(ctx context.Context, userID, organizationID int64) (int, error) {
	key := mailbox{userID, organizationID}
	r.mu.RLock()
	count, ok := r.counts[key]
	r.mu.RUnlock()
	if ok {
		return count, nil
	}

	count, err := r.source.UnreadCount(ctx, userID, organizationID)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	r.counts[key] = count
	r.watched[key] = struct{}{}
	r.mu.Unlock()
	return count, nil
}

// Refresh queries the source for every watched mailbox. A failing mailbox keeps
// its previous count.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.RLock()
	keys := make([]mailbox, 0, len(r.watched))
	for key := range r.watched {
		keys = append(keys, key)
	}
	r.mu.RUnlock()

	var errs error
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return errors.Join(errs, err)
		}
		count, err := r.source.UnreadCount(ctx, key.user, key.organization)
		if err != nil {
			errs = errors.Join(errs, errors.Wrap(err, errors.CategoryExternal,
				fmt.Sprintf("refresh unread count for user %d", key.user)).
				WithTextCode(ErrCodeUnreadCount))
			continue
		}
		r.mu.Lock()
		if _, still := r.watched[key]; still {
			r.counts[key] = count
		}
		r.mu.Unlock()
	}
	return errs
}

// Start schedules the refresh job and starts the cron runner.
func (r *Refresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}
	c := rcron.New(r.build()...)
	id, err := c.AddFunc(r.schedule, r.run)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid refresh schedule").
			WithTextCode(ErrCodeSchedule).
			WithMetadata(map[string]any{"schedule": r.schedule})
	}
	r.cron = c
	r.entryID = id
	c.Start()
	r.logger.Info("unread count refresher started with schedule %s", r.schedule)
	return nil
}

// Stop stops the cron runner. The returned context is done once a running job
// has completed.
func (r *Refresher) Stop() context.Context {
	r.mu.Lock()
	c, id := r.cron, r.entryID
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	c.Remove(id)
	return c.Stop()
}

// Next reports the next scheduled refresh, zero when not started.
func (r *Refresher) Next() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cron == nil {
		return time.Time{}
	}
	return r.cron.Entry(r.entryID).Next
}

func (r *Refresher) run() {
	if err := r.Refresh(context.Background()); err != nil {
		r.logger.Error("unread count refresh failed: %v", err)
	}
}

func (r *Refresher) build() []rcron.Option {
	opts := []rcron.Option{
		rcron.WithLogger(&cronLogger{logger: r.logger}),
		rcron.WithChain(rcron.Recover(&cronLogger{logger: r.logger})),
	}
	if r.location != nil {
		opts = append(opts, rcron.WithLocation(r.location))
	}
	if r.seconds {
		opts = append(opts, rcron.WithParser(rcron.NewParser(
			rcron.Second|rcron.Minute|rcron.Hour|rcron.Dom|rcron.Month|rcron.Dow|rcron.Descriptor,
		)))
	}
	return opts
}

// cronLogger adapts flowchart.Logger to the cron runner's logger.
type cronLogger struct {
	logger flowchart.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: %s %v", msg, keysAndValues)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: %s %v: %v", msg, keysAndValues, err)
}
