package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/semiha11/Fincio/internal/models"
)

// MemoryKV is an in-process key-value store for STORAGE=memory and tests
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get returns the value stored under key
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// MultiRemove deletes every key in keys
func (m *MemoryKV) MultiRemove(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Keys returns the stored keys in sorted order
func (m *MemoryKV) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MemoryStore keeps users and namespaced key-value stores in memory
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]models.User
	spaces map[string]*MemoryKV
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]models.User),
		spaces: make(map[string]*MemoryKV),
	}
}

// KV returns the key-value store scoped to namespace
func (m *MemoryStore) KV(namespace string) *MemoryKV {
	m.mu.Lock()
	defer m.mu.Unlock()
	kv, ok := m.spaces[namespace]
	if !ok {
		kv = NewMemoryKV()
		m.spaces[namespace] = kv
	}
	return kv
}

// CreateUser stores a new user
func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, ok := m.users[email]; ok {
		return ErrEmailTaken
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[email] = *user
	return nil
}

// FindUserByEmail retrieves a user by email
func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}
