package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) MultiRemove(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memKV) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	return out
}

type mirrorCall struct {
	op         string
	collection string
	id         string
}

type fakeMirror struct {
	mu    sync.Mutex
	calls []mirrorCall
	lists map[string][]json.RawMessage
	docs  map[string]json.RawMessage
	fail  bool
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{lists: map[string][]json.RawMessage{}, docs: map[string]json.RawMessage{}}
}

func (f *fakeMirror) record(op, coll, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, mirrorCall{op: op, collection: coll, id: id})
	if f.fail {
		return fmt.Errorf("remote unavailable")
	}
	return nil
}

func (f *fakeMirror) Add(_ context.Context, _, coll string, _ any) (string, error) {
	return "remote-id", f.record("add", coll, "")
}

func (f *fakeMirror) List(_ context.Context, _, coll string) ([]json.RawMessage, error) {
	if err := f.record("list", coll, ""); err != nil {
		return nil, err
	}
	return f.lists[coll], nil
}

func (f *fakeMirror) Update(_ context.Context, _, coll, id string, _ any) error {
	return f.record("update", coll, id)
}

func (f *fakeMirror) Delete(_ context.Context, _, coll, id string) error {
	return f.record("delete", coll, id)
}

func (f *fakeMirror) SetMerge(_ context.Context, _, path string, _ any) error {
	return f.record("merge", path, "")
}

func (f *fakeMirror) Get(_ context.Context, _, path string) (json.RawMessage, bool, error) {
	if err := f.record("get", path, ""); err != nil {
		return nil, false, err
	}
	doc, ok := f.docs[path]
	return doc, ok, nil
}

func (f *fakeMirror) writes() []mirrorCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []mirrorCall
	for _, c := range f.calls {
		if c.op != "list" && c.op != "get" {
			out = append(out, c)
		}
	}
	return out
}

// inlineDispatcher runs every task immediately, debounced ones included.
type inlineDispatcher struct{}

func (inlineDispatcher) Go(_ string, task func(ctx context.Context) error) {
	_ = task(context.Background())
}

func (inlineDispatcher) Debounce(_ string, _ time.Duration, task func(ctx context.Context) error) {
	_ = task(context.Background())
}

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestLedger(t *testing.T, kv KV, opts ...Option) *Ledger {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(sequentialIDs()),
	}
	return New(kv, testLogger(), append(base, opts...)...)
}

func loadedLedger(t *testing.T, opts ...Option) (*Ledger, *memKV) {
	t.Helper()
	kv := newMemKV()
	l := newTestLedger(t, kv, opts...)
	require.NoError(t, l.Load(context.Background()))
	return l, kv
}
