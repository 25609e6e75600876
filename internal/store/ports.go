// Package store defines the gateway ports to the transaction backend
// and the error taxonomy shared by all implementations.
//
// The web client holds no transaction data of its own: every read goes
// to a backend and authentication rides on forwarded browser cookies.
package store

import (
	"context"
	"net/http"

	"finman/internal/core"
)

// Session carries the browser's auth cookies through to the backend.
type Session []*http.Cookie

// User is the authenticated account as the backend reports it.
type User struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// AuthResult is a successful login or signup: the account plus the
// session cookies the backend issued.
type AuthResult struct {
	User    User
	Cookies []*http.Cookie
}

// TransactionSource reads the caller's transaction list.
type TransactionSource interface {
	List(ctx context.Context, sess Session) ([]core.Transaction, error)
}

// TransactionMutator submits create, update and delete operations.
// Implementations validate input before touching the network and map
// failures onto *APIError.
type TransactionMutator interface {
	Create(ctx context.Context, sess Session, in core.TransactionInput) error
	Update(ctx context.Context, sess Session, id string, in core.TransactionInput) error
	Delete(ctx context.Context, sess Session, id string) error
}

// AuthGateway proxies account operations to the backend.
type AuthGateway interface {
	Login(ctx context.Context, phone, password string) (*AuthResult, error)
	Signup(ctx context.Context, name, phone, password string) (*AuthResult, error)
	Logout(ctx context.Context, sess Session) error
	Me(ctx context.Context, sess Session) (*User, error)
}

// Gateway bundles the three ports a full backend provides.
type Gateway interface {
	TransactionSource
	TransactionMutator
	AuthGateway
}
