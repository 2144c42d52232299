// Package quota keeps the rolling 24h import ledger
//
// The ledger is a soft cap: storage failures read as an empty log and writes are
// dropped, and two runs can both pass CanImport before either records.
package quota

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
)

// Defaults for the daily import budget
const (
	DefaultMax    = 1500
	DefaultWindow = 24 * time.Hour

	// StorageKey is where the ledger lives in the kv store
	StorageKey = "contactImportLimits"
)

// Store is the opaque kv the ledger persists through
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Record is one successful import
type Record struct {
	Timestamp int64 `json:"timestamp"` // unix millis
	Count     int   `json:"contactCount"`
}

// Config tunes the ledger; zero fields take the defaults
type Config struct {
	Max    int
	Window time.Duration
	Key    string
	Now    func() time.Time
	Log    *logger.Logger
}

// Ledger counts imported records over a rolling window
type Ledger struct {
	mu     sync.Mutex
	store  Store
	max    int
	window time.Duration
	key    string
	now    func() time.Time
	log    logger.Logger
}

// New builds a Ledger over st
func New(st Store, cfg Config) *Ledger {
	if cfg.Max <= 0 {
		cfg.Max = DefaultMax
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Key == "" {
		cfg.Key = StorageKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := logger.Nop()
	if cfg.Log != nil {
		log = cfg.Log.With().Str("component", "quota").Logger()
	}
	return &Ledger{
		store:  st,
		max:    cfg.Max,
		window: cfg.Window,
		key:    cfg.Key,
		now:    cfg.Now,
		log:    log,
	}
}

// Max is the per-window budget
func (l *Ledger) Max() int { return l.max }

// CurrentTotal sums the unexpired records
func (l *Ledger) CurrentTotal(ctx context.Context) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return total(l.live(ctx))
}

// CanImport reports whether n more records fit in the budget right now
func (l *Ledger) CanImport(ctx context.Context, n int) bool {
	return l.CurrentTotal(ctx)+n <= l.max
}

// Record appends a record of n at the current time
func (l *Ledger) Record(ctx context.Context, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	recs := append(l.live(ctx), Record{Timestamp: l.now().UnixMilli(), Count: n})
	l.save(ctx, recs)
	l.log.Info().Int("count", n).Int("total", total(recs)).Msg("import recorded")
}

// TimeUntilReset is how long until the oldest live record expires, 0 when there is none
func (l *Ledger) TimeUntilReset(ctx context.Context) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.untilReset(l.live(ctx))
}

// CheckResult answers a quota query; the limit fields are set only when CanImport is false
type CheckResult struct {
	CanImport        bool   `json:"canImport"`
	CurrentTotal     int    `json:"currentTotal"`
	Remaining        int    `json:"remaining,omitempty"`
	Limit            int    `json:"limit,omitempty"`
	TimeUntilReset   string `json:"timeUntilReset,omitempty"`
	TimeUntilResetMs int64  `json:"timeUntilResetMs,omitempty"`
}

// MarshalJSON emits remaining on every allowed check, zero included
func (c CheckResult) MarshalJSON() ([]byte, error) {
	type plain CheckResult
	if !c.CanImport {
		return json.Marshal(plain(c))
	}
	return json.Marshal(struct {
		plain
		Remaining int `json:"remaining"`
	}{plain(c), c.Remaining})
}

// Check evaluates whether n records may be imported and returns the data to show the user
func (l *Ledger) Check(ctx context.Context, n int) CheckResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	recs := l.live(ctx)
	cur := total(recs)
	if cur+n <= l.max {
		return CheckResult{CanImport: true, CurrentTotal: cur, Remaining: l.max - cur}
	}
	wait := l.untilReset(recs)
	return CheckResult{
		CanImport:        false,
		CurrentTotal:     cur,
		Limit:            l.max,
		TimeUntilReset:   FormatDuration(wait),
		TimeUntilResetMs: wait.Milliseconds(),
	}
}

func (l *Ledger) untilReset(recs []Record) time.Duration {
	if len(recs) == 0 {
		return 0
	}
	oldest := recs[0].Timestamp
	for _, r := range recs[1:] {
		oldest = min(oldest, r.Timestamp)
	}
	return max(l.window-l.now().Sub(time.UnixMilli(oldest)), 0)
}

// live loads the log, drops expired records and persists the pruned log when it shrank
// caller holds mu
func (l *Ledger) live(ctx context.Context) []Record {
	recs := l.load(ctx)
	now := l.now()
	keep := recs[:0]
	for _, r := range recs {
		if now.Sub(time.UnixMilli(r.Timestamp)) < l.window {
			keep = append(keep, r)
		}
	}
	if len(keep) != len(recs) {
		l.save(ctx, keep)
	}
	return keep
}

func (l *Ledger) load(ctx context.Context) []Record {
	raw, ok, err := l.store.Get(ctx, l.key)
	if err != nil {
		l.log.Warn().Err(err).Str("key", l.key).Msg("ledger read failed, treating as empty")
		return nil
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	var recs []Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		l.log.Warn().Err(err).Str("key", l.key).Msg("ledger payload unreadable, treating as empty")
		return nil
	}
	return recs
}

func (l *Ledger) save(ctx context.Context, recs []Record) {
	if recs == nil {
		recs = []Record{}
	}
	raw, err := json.Marshal(recs)
	if err == nil {
		err = l.store.Set(ctx, l.key, raw)
	}
	if err != nil {
		l.log.Warn().Err(err).Str("key", l.key).Msg("ledger write dropped")
	}
}

func total(recs []Record) int {
	n := 0
	for _, r := range recs {
		n += r.Count
	}
	return n
}
