package datastore

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/TripleSteak/Final-Aisle/pkg/crypto"
	"github.com/TripleSteak/Final-Aisle/pkg/model"
)

type memoryRecord struct {
	account *model.Account
	hash    []byte
	salt    []byte
}

// MemoryStore is an in-memory AccountStore used by tests and the dev
// profile. It shares the same sorted-index lookup path as the SQLite
// store.
type MemoryStore struct {
	mu        sync.Mutex
	accounts  map[string]*memoryRecord
	emails    Index
	usernames Index
}

var _ AccountStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*memoryRecord)}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) UUIDFromEmail(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emails.Lookup(email)
}

func (s *MemoryStore) UUIDFromUsername(username string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usernames.Lookup(username)
}

func (s *MemoryStore) CreateAccount(email, username, password string) (*model.Account, error) {
	if err := model.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("datastore: create account: %w", err)
	}
	if err := model.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("datastore: create account: %w", err)
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("datastore: create account: %w", err)
	}
	hash := crypto.HashPassword(password, salt)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails.Lookup(email); taken {
		return nil, fmt.Errorf("datastore: create account: email already registered")
	}
	if _, taken := s.usernames.Lookup(username); taken {
		return nil, fmt.Errorf("datastore: create account: username already registered")
	}

	acct := model.NewAccount(uuid.NewString(), email, username)
	s.accounts[acct.AccountID] = &memoryRecord{account: acct, hash: hash, salt: salt}
	s.emails.Insert(email, acct.AccountID)
	s.usernames.Insert(username, acct.AccountID)
	return cloneAccount(acct), nil
}

func (s *MemoryStore) CheckPassword(accountID, password string) (bool, error) {
	s.mu.Lock()
	rec, ok := s.accounts[accountID]
	s.mu.Unlock()
	if !ok {
		return false, ErrAccountNotFound
	}
	return crypto.VerifyPassword(password, rec.salt, rec.hash), nil
}

func (s *MemoryStore) UsernameFor(accountID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.accounts[accountID]
	if !ok {
		return "", ErrAccountNotFound
	}
	return rec.account.Username, nil
}

func (s *MemoryStore) LoadAccount(accountID string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.accounts[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(rec.account), nil
}

func cloneAccount(a *model.Account) *model.Account {
	out := *a
	out.Characters = append([]model.Character(nil), a.Characters...)
	return &out
}
