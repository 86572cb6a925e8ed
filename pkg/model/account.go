package model

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxUsernameLength bounds account usernames.
	MaxUsernameLength = 32

	// DefaultCharacterSlots is the slot count a new account starts with.
	DefaultCharacterSlots = 3
)

var (
	ErrUsernameEmpty        = errors.New("username must not be empty")
	ErrUsernameTooLong      = fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	ErrUsernameInvalidChars = errors.New("username must contain only alphanumeric characters, underscores, or hyphens")
	ErrEmailInvalid         = errors.New("email address is not valid")
	ErrNoActiveCharacter    = errors.New("account has no character at the active index")
)

// Account is a player's gameplay account, as opposed to the network
// session. Created exactly once at successful registration; AccountID
// is immutable thereafter.
type Account struct {
	AccountID   string
	Username    string
	Email       string
	Characters  []Character
	ActiveIndex int
	UsedSlots   int
	TotalSlots  int
}

// NewAccount builds an account with its one default character, named
// after the owner. Every account has at least one character.
func NewAccount(accountID, email, username string) *Account {
	ch := NewCharacter(accountID, username+"'s character", ClassWarrior, RaceTurtle)
	return &Account{
		AccountID:   accountID,
		Username:    username,
		Email:       email,
		Characters:  []Character{ch},
		ActiveIndex: 0,
		UsedSlots:   1,
		TotalSlots:  DefaultCharacterSlots,
	}
}

// ActiveCharacter returns the character the account is currently
// playing.
func (a *Account) ActiveCharacter() (Character, error) {
	if a.ActiveIndex < 0 || a.ActiveIndex >= len(a.Characters) {
		return Character{}, ErrNoActiveCharacter
	}
	return a.Characters[a.ActiveIndex], nil
}

// ValidateUsername checks that a username is 1-32 ASCII alphanumeric,
// underscore, or hyphen characters.
func ValidateUsername(name string) error {
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' && r != '-' {
			return ErrUsernameInvalidChars
		}
	}
	return nil
}

// ValidateEmail performs a light structural check on an email address.
// Deliverability is ultimately proven by the verification code.
func ValidateEmail(email string) error {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 || len(email) > 254 {
		return ErrEmailInvalid
	}
	return nil
}
