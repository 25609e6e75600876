// Package memory is an in-process store.Gateway used for local
// development and tests. It accepts any credentials and keeps
// transactions in a slice guarded by a mutex.
package memory

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"finman/internal/core"
	"finman/internal/store"
)

const sessionCookie = "finman_dev_session"

// Store implements store.Gateway in memory.
type Store struct {
	mu     sync.Mutex
	nextID int
	txs    []core.Transaction
	user   store.User
}

// New returns an empty Store with a fixed dev user.
func New() *Store {
	return &Store{
		nextID: 1,
		user:   store.User{ID: "dev-user", Name: "Dev User", PhoneNumber: "0000000000"},
	}
}

// Seed replaces the transaction list, assigning ids to records that
// lack one. Intended for dev fixtures and tests.
func (s *Store) Seed(txs []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = make([]core.Transaction, len(txs))
	copy(s.txs, txs)
	for i := range s.txs {
		if s.txs[i].ID == "" {
			s.txs[i].ID = s.newIDLocked()
		}
	}
}

func (s *Store) newIDLocked() string {
	id := fmt.Sprintf("mem-%d", s.nextID)
	s.nextID++
	return id
}

// List returns a copy of the current transactions.
func (s *Store) List(_ context.Context, _ store.Session) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

// Create appends a new transaction.
func (s *Store) Create(_ context.Context, _ store.Session, in core.TransactionInput) error {
	if err := in.Validate(); err != nil {
		return store.ValidationError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := core.Transaction{
		ID:       s.newIDLocked(),
		Name:     strings.TrimSpace(in.Name),
		Price:    in.Price,
		IsIncome: in.IsIncome,
		Category: in.Category,
		Time:     in.Time,
	}
	if t.Time == "" {
		t.Time = time.Now().Format("2006-01-02")
	}
	s.txs = append(s.txs, t)
	return nil
}

// Update replaces the record with the given id.
func (s *Store) Update(_ context.Context, _ store.Session, id string, in core.TransactionInput) error {
	if strings.TrimSpace(id) == "" {
		return store.ValidationError(core.ErrInvalidTransaction)
	}
	if err := in.Validate(); err != nil {
		return store.ValidationError(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs[i] = core.Transaction{
				ID:       id,
				Name:     strings.TrimSpace(in.Name),
				Price:    in.Price,
				IsIncome: in.IsIncome,
				Category: in.Category,
				Time:     in.Time,
			}
			return nil
		}
	}
	return store.FromStatus(store.OpUpdate, http.StatusNotFound, "")
}

// Delete removes the record with the given id.
func (s *Store) Delete(_ context.Context, _ store.Session, id string) error {
	if strings.TrimSpace(id) == "" {
		return store.ValidationError(core.ErrInvalidTransaction)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return store.FromStatus(store.OpDelete, http.StatusNotFound, "")
}

// Login accepts any credentials and issues a dev session cookie.
func (s *Store) Login(_ context.Context, phone, _ string) (*store.AuthResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if phone != "" {
		s.user.PhoneNumber = phone
	}
	return &store.AuthResult{
		User:    s.user,
		Cookies: []*http.Cookie{devCookie()},
	}, nil
}

// Signup behaves like Login but also records the display name.
func (s *Store) Signup(_ context.Context, name, phone, _ string) (*store.AuthResult, error) {
	s.mu.Lock()
	if name != "" {
		s.user.Name = name
	}
	if phone != "" {
		s.user.PhoneNumber = phone
	}
	s.mu.Unlock()
	return &store.AuthResult{
		User:    s.user,
		Cookies: []*http.Cookie{devCookie()},
	}, nil
}

// Logout is a no-op; the dev cookie simply stops being sent.
func (s *Store) Logout(_ context.Context, _ store.Session) error {
	return nil
}

// Me returns the dev user when the dev cookie is present.
func (s *Store) Me(_ context.Context, sess store.Session) (*store.User, error) {
	for _, ck := range sess {
		if ck.Name == sessionCookie {
			s.mu.Lock()
			u := s.user
			s.mu.Unlock()
			return &u, nil
		}
	}
	return nil, store.FromStatus(store.OpFetch, http.StatusUnauthorized, "")
}

func devCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    "dev",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

var _ store.Gateway = (*Store)(nil)
