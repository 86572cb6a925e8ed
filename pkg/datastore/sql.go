package datastore

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/TripleSteak/Final-Aisle/pkg/crypto"
	"github.com/TripleSteak/Final-Aisle/pkg/model"
)

// Store is the SQLite-backed AccountStore. The email and username
// uniqueness indices are kept in memory (sorted, binary-searched) and
// reloaded from the database at startup; the database is the durable
// copy.
type Store struct {
	db *sql.DB

	mu        sync.Mutex
	emails    Index
	usernames Index
}

var _ AccountStore = (*Store)(nil)

// Open opens (or creates) the account database and reloads the
// uniqueness indices.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("datastore: open db: %w", err)
	}

	// WAL for concurrent reads, busy timeout against "database is locked".
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("datastore: %s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("datastore: migrate: %w", err)
	}
	if err := s.loadIndices(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("datastore: load indices: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS accounts (
		uuid             TEXT PRIMARY KEY,
		email            TEXT NOT NULL,
		username         TEXT NOT NULL CHECK(length(username) > 0 AND length(username) <= 32),
		password_hash    BLOB NOT NULL,
		password_salt    BLOB NOT NULL,
		active_character INTEGER NOT NULL DEFAULT 0,
		total_slots      INTEGER NOT NULL DEFAULT 3,
		created_at       TEXT NOT NULL DEFAULT (datetime('now'))
	);
	CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_ci ON accounts(upper(email));
	CREATE UNIQUE INDEX IF NOT EXISTS accounts_username_ci ON accounts(upper(username));

	CREATE TABLE IF NOT EXISTS characters (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		account_uuid TEXT NOT NULL REFERENCES accounts(uuid) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		class        TEXT NOT NULL,
		race         TEXT NOT NULL,
		level        INTEGER NOT NULL DEFAULT 1 CHECK(level >= 1),
		exp          INTEGER NOT NULL DEFAULT 0 CHECK(exp >= 0),
		max_health   REAL NOT NULL,
		max_resource REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS characters_account ON characters(account_uuid);
	`
	_, err := s.db.Exec(schema)
	return err
}

// loadIndices rebuilds the in-memory sorted indices from the accounts
// table.
func (s *Store) loadIndices() error {
	rows, err := s.db.Query(`SELECT uuid, email, username FROM accounts`)
	if err != nil {
		return err
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.emails = Index{}
	s.usernames = Index{}
	for rows.Next() {
		var id, email, username string
		if err := rows.Scan(&id, &email, &username); err != nil {
			return err
		}
		s.emails.Insert(email, id)
		s.usernames.Insert(username, id)
	}
	return rows.Err()
}

// UUIDFromEmail resolves an email to an account ID via the in-memory
// index.
func (s *Store) UUIDFromEmail(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emails.Lookup(email)
}

// UUIDFromUsername resolves a username to an account ID via the
// in-memory index.
func (s *Store) UUIDFromUsername(username string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usernames.Lookup(username)
}

// CreateAccount persists a new account plus its default character in
// one transaction and registers both index entries. The index lock is
// held across the duplicate re-check and insertion so concurrent
// creations cannot race past each other.
func (s *Store) CreateAccount(email, username, password string) (*model.Account, error) {
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

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("datastore: create account: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(
		`INSERT INTO accounts (uuid, email, username, password_hash, password_salt, active_character, total_slots)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		acct.AccountID, email, username, hash, salt, acct.ActiveIndex, acct.TotalSlots,
	)
	if err != nil {
		return nil, fmt.Errorf("datastore: insert account: %w", err)
	}
	for _, ch := range acct.Characters {
		_, err = tx.Exec(
			`INSERT INTO characters (account_uuid, name, class, race, level, exp, max_health, max_resource)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			acct.AccountID, ch.Name, ch.Class.String(), ch.Race.String(), ch.Level, ch.Exp, ch.MaxHealth, ch.MaxResource,
		)
		if err != nil {
			return nil, fmt.Errorf("datastore: insert character: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("datastore: create account: %w", err)
	}

	s.emails.Insert(email, acct.AccountID)
	s.usernames.Insert(username, acct.AccountID)
	return acct, nil
}

// CheckPassword verifies a password against the stored argon2id
// credential.
func (s *Store) CheckPassword(accountID, password string) (bool, error) {
	var hash, salt []byte
	err := s.db.QueryRow(
		`SELECT password_hash, password_salt FROM accounts WHERE uuid = ?`, accountID,
	).Scan(&hash, &salt)
	if err == sql.ErrNoRows {
		return false, ErrAccountNotFound
	}
	if err != nil {
		return false, fmt.Errorf("datastore: check password: %w", err)
	}
	return crypto.VerifyPassword(password, salt, hash), nil
}

// UsernameFor returns the username stored for an account ID.
func (s *Store) UsernameFor(accountID string) (string, error) {
	var username string
	err := s.db.QueryRow(`SELECT username FROM accounts WHERE uuid = ?`, accountID).Scan(&username)
	if err == sql.ErrNoRows {
		return "", ErrAccountNotFound
	}
	if err != nil {
		return "", fmt.Errorf("datastore: username for %s: %w", accountID, err)
	}
	return username, nil
}

// LoadAccount materializes an account with its character list, sorted
// by level then experience.
func (s *Store) LoadAccount(accountID string) (*model.Account, error) {
	acct := &model.Account{AccountID: accountID}
	err := s.db.QueryRow(
		`SELECT email, username, active_character, total_slots FROM accounts WHERE uuid = ?`, accountID,
	).Scan(&acct.Email, &acct.Username, &acct.ActiveIndex, &acct.TotalSlots)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("datastore: load account: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT name, class, race, level, exp, max_health, max_resource
		 FROM characters WHERE account_uuid = ?
		 ORDER BY level DESC, exp DESC, id ASC`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("datastore: load characters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		ch := model.Character{AccountID: accountID}
		var class, race string
		if err := rows.Scan(&ch.Name, &class, &race, &ch.Level, &ch.Exp, &ch.MaxHealth, &ch.MaxResource); err != nil {
			return nil, fmt.Errorf("datastore: scan character: %w", err)
		}
		if ch.Class, err = model.ParseClass(class); err != nil {
			return nil, fmt.Errorf("datastore: load characters: %w", err)
		}
		if ch.Race, err = model.ParseRace(race); err != nil {
			return nil, fmt.Errorf("datastore: load characters: %w", err)
		}
		acct.Characters = append(acct.Characters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("datastore: load characters: %w", err)
	}
	if len(acct.Characters) == 0 {
		return nil, fmt.Errorf("datastore: account %s has no characters", accountID)
	}
	acct.UsedSlots = len(acct.Characters)
	if acct.ActiveIndex < 0 || acct.ActiveIndex >= len(acct.Characters) {
		acct.ActiveIndex = 0
	}
	return acct, nil
}
