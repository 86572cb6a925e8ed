// Package datastore persists player accounts and their uniqueness
// indices. The default implementation is SQLite; MemoryStore mirrors
// its behavior for tests.
package datastore

import (
	"errors"

	"github.com/TripleSteak/Final-Aisle/pkg/model"
)

// ErrAccountNotFound is returned when an account ID has no stored row.
// Callers treat persistence failures on a specific account the same
// way; a broken entry must never take the listener down.
var ErrAccountNotFound = errors.New("datastore: account not found")

// AccountStore is the persistence contract the dispatcher depends on.
// Implementations must survive process restarts and reload the
// uniqueness indices from persisted state at startup.
type AccountStore interface {
	AccountReadProvider
	AccountWriteProvider
	Close() error
}

type AccountReadProvider interface {
	// UUIDFromEmail resolves an email address to an account ID,
	// case-insensitively. ok is false when the email is unregistered.
	UUIDFromEmail(email string) (id string, ok bool)

	// UUIDFromUsername resolves a username to an account ID,
	// case-insensitively.
	UUIDFromUsername(username string) (id string, ok bool)

	// UsernameFor returns the stored username for an account.
	UsernameFor(accountID string) (string, error)

	// CheckPassword verifies a password against the stored credential.
	CheckPassword(accountID, password string) (bool, error)

	// LoadAccount materializes the full account with its characters.
	LoadAccount(accountID string) (*model.Account, error)
}

type AccountWriteProvider interface {
	// CreateAccount persists a new account with its default character
	// and registers it in both uniqueness indices, atomically with
	// respect to concurrent creations. The accountID is generated
	// collision-free.
	CreateAccount(email, username, password string) (*model.Account, error)
}
