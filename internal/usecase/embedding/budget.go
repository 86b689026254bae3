package embedding

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// BudgetKeyPrefix namespaces persisted budget counters.
const BudgetKeyPrefix = "vecgate:budget:"

// persistTimeout bounds the write-behind of one Record call.
const persistTimeout = 2 * time.Second

// BudgetAction defines behavior when token budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// Period names a budget window.
type Period string

// Budget windows, aligned to UTC calendar boundaries.
const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
)

// BudgetStore is the persistence interface for budget counters.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// WindowState is a point-in-time view of one budget window.
type WindowState struct {
	Period Period
	Start  time.Time
	End    time.Time
	Limit  int64 // 0 means unlimited
	Used   int64
}

// Unlimited reports whether the window has no cap.
func (w WindowState) Unlimited() bool { return w.Limit <= 0 }

// Remaining returns the tokens left, clamped at 0, or -1 when unlimited.
func (w WindowState) Remaining() int64 {
	if w.Unlimited() {
		return -1
	}
	return max(w.Limit-w.Used, 0)
}

// Exhausted reports whether a capped window has been used up.
func (w WindowState) Exhausted() bool {
	return !w.Unlimited() && w.Used >= w.Limit
}

// window is one calendar-aligned counter.
type window struct {
	period    Period
	limit     int64
	used      int64
	start     time.Time
	floor     func(time.Time) time.Time
	next      func(time.Time) time.Time
	keyLayout string
}

func newDailyWindow(limit int64, now time.Time) *window {
	return &window{
		period:    PeriodDaily,
		limit:     limit,
		start:     startOfDay(now),
		floor:     startOfDay,
		next:      func(t time.Time) time.Time { return t.AddDate(0, 0, 1) },
		keyLayout: "2006-01-02",
	}
}

func newMonthlyWindow(limit int64, now time.Time) *window {
	return &window{
		period:    PeriodMonthly,
		limit:     limit,
		start:     startOfMonth(now),
		floor:     startOfMonth,
		next:      func(t time.Time) time.Time { return t.AddDate(0, 1, 0) },
		keyLayout: "2006-01",
	}
}

// roll starts a fresh count once now has left the current window.
func (w *window) roll(now time.Time) {
	if cur := w.floor(now); !cur.Equal(w.start) {
		w.start = cur
		w.used = 0
	}
}

func (w *window) state() WindowState {
	return WindowState{
		Period: w.period,
		Start:  w.start,
		End:    w.next(w.start),
		Limit:  w.limit,
		Used:   w.used,
	}
}

func (w *window) key(provider string) string {
	return BudgetKeyPrefix + provider + ":" + string(w.period) + ":" + w.start.Format(w.keyLayout)
}

// BudgetTracker counts embedding tokens per day and per month and enforces
// optional caps. Counters live in memory. An attached store receives every
// increment and is read once, in WithStore, so a restart resumes from the
// persisted totals. Increments made by other replicas after that are not read
// back: each replica enforces the caps on its own view.
type BudgetTracker struct {
	mu       sync.Mutex
	daily    *window
	monthly  *window
	action   BudgetAction
	provider string
	store    BudgetStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewBudgetTracker creates a tracker. A limit of 0 leaves that window uncapped.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now().UTC()
	return &BudgetTracker{
		daily:    newDailyWindow(dailyLimit, now),
		monthly:  newMonthlyWindow(monthlyLimit, now),
		action:   action,
		provider: provider,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithStore attaches a persistence store and loads the current windows from it.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	b.rollLocked()
	for _, w := range b.windows() {
		val, err := store.Get(ctx, w.key(b.provider))
		if err != nil {
			b.logger.Warn("Failed to load budget window",
				zap.String("period", string(w.period)), zap.Error(err))
			continue
		}
		w.used = val
	}

	b.logger.Info("Budget loaded from store",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.daily.used),
		zap.Int64("monthly_used", b.monthly.used),
	)
	return b
}

// Check fails with ErrEmbeddingQuotaExceeded when a capped window is used up
// and the action is reject. It never touches the store.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()
	var exhausted []string
	for _, w := range b.windows() {
		if w.state().Exhausted() {
			exhausted = append(exhausted, string(w.period))
		}
	}
	if len(exhausted) == 0 {
		return nil
	}
	if b.action == BudgetActionReject {
		return domain.ErrEmbeddingQuotaExceeded
	}

	b.logger.Warn("Token budget exceeded",
		zap.String("provider", b.provider),
		zap.Strings("windows", exhausted),
		zap.Int64("daily_used", b.daily.used),
		zap.Int64("monthly_used", b.monthly.used),
	)
	return nil
}

// Record adds consumed tokens to both windows, then writes them behind to the store.
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	b.rollLocked()
	keys := make([]string, 0, 2)
	for _, w := range b.windows() {
		w.used += tokens
		keys = append(keys, w.key(b.provider))
	}
	store := b.store
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Detached from the request context: a cancelled request has still spent its tokens.
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	for _, key := range keys {
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			b.logger.Warn("Failed to persist budget", zap.String("key", key), zap.Error(err))
		}
	}
}

// Snapshot returns the current state of one window.
func (b *BudgetTracker) Snapshot(p Period) WindowState {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollLocked()
	if p == PeriodMonthly {
		return b.monthly.state()
	}
	return b.daily.state()
}

func (b *BudgetTracker) windows() [2]*window { return [2]*window{b.daily, b.monthly} }

func (b *BudgetTracker) rollLocked() {
	now := b.now()
	b.daily.roll(now)
	b.monthly.roll(now)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
