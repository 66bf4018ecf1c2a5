// Package ledger holds the record stores of one device profile and keeps the
// figures derived from them consistent across compound actions.
//
// Every exported action runs under the ledger mutex and commits its whole
// effect before returning, so a following read never observes half of it.
// Local durable storage is written through on each action once the ledger
// has loaded; the remote document store is mirrored in the background.
package ledger

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// KV is the local durable key-value store.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	MultiRemove(ctx context.Context, keys []string) error
}

// Mirror is the per-user remote document store.
type Mirror interface {
	Add(ctx context.Context, userID, collection string, doc any) (string, error)
	List(ctx context.Context, userID, collection string) ([]json.RawMessage, error)
	Update(ctx context.Context, userID, collection, id string, patch any) error
	Delete(ctx context.Context, userID, collection, id string) error
	SetMerge(ctx context.Context, userID, docPath string, patch any) error
	Get(ctx context.Context, userID, docPath string) (json.RawMessage, bool, error)
}

// Dispatcher runs remote writes off the caller's path.
type Dispatcher interface {
	Go(name string, task func(ctx context.Context) error)
	Debounce(key string, delay time.Duration, task func(ctx context.Context) error)
}

type phase int

const (
	unloaded phase = iota
	loading
	loaded
)

// DefaultDebounce delays remote writes of the financial summary.
const DefaultDebounce = 2 * time.Second

// Ledger owns the record stores for one device profile.
type Ledger struct {
	mu       sync.Mutex
	kv       KV
	mirror   Mirror
	dispatch Dispatcher
	log      *logrus.Entry
	now      func() time.Time
	newID    func() string
	debounce time.Duration

	phase  phase
	userID string
	pulled bool
	st     State
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithMirror enables remote sync through m, with writes run by d.
func WithMirror(m Mirror, d Dispatcher) Option {
	return func(l *Ledger) {
		l.mirror = m
		l.dispatch = d
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides the record id source.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// WithDebounce sets the trailing delay for financial summary sync.
func WithDebounce(d time.Duration) Option {
	return func(l *Ledger) { l.debounce = d }
}

// New creates an unloaded ledger backed by kv.
func New(kv KV, log *logrus.Entry, opts ...Option) *Ledger {
	l := &Ledger{
		kv:       kv,
		log:      log,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		debounce: DefaultDebounce,
		st:       defaultState(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Loaded reports whether the stores have been read from local storage.
func (l *Ledger) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase == loaded
}

// UserID returns the current sync identity, empty in local-only mode.
func (l *Ledger) UserID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.userID
}

// State returns a copy of every record store.
func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.st.clone()
}
