// Package session holds the authentication context for a client instance:
// the access token and the logged-in user. State is owned by whoever
// constructs the store and mutated only through defined operations, never
// by open field access.
package session

import (
	"context"
	"sync"
)

// User is the authenticated account identity captured at login.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store is the session state holder. An empty token means unauthenticated;
// facade operations that require auth short-circuit locally on it.
type Store interface {
	// Token returns the current access token, empty when unauthenticated.
	Token(ctx context.Context) (string, error)
	// User returns the current user, nil when unauthenticated.
	User(ctx context.Context) (*User, error)
	// SetCredentials captures a successful login exchange.
	SetCredentials(ctx context.Context, token string, user *User) error
	// Clear wipes the session (logout).
	Clear(ctx context.Context) error
	// Authenticated reports whether a token is present.
	Authenticated(ctx context.Context) (bool, error)
}

// MemoryStore is the in-process session store. Guarded by a mutex: two
// screens may read while a login or logout mutates.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  *User
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) User(ctx context.Context) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil, nil
	}
	u := *m.user
	return &u, nil
}

func (m *MemoryStore) SetCredentials(ctx context.Context, token string, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	if user != nil {
		u := *user
		m.user = &u
	} else {
		m.user = nil
	}
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.user = nil
	return nil
}

func (m *MemoryStore) Authenticated(ctx context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "", nil
}
