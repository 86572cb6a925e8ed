package model

// MaxVerifyAttempts is the number of email verification attempts a
// pending registration gets before it is discarded.
const MaxVerifyAttempts = 5

// PendingRegistration holds an in-progress account registration. It is
// owned exclusively by the session that requested it and dies with that
// session; a client that disconnects mid-registration starts over.
type PendingRegistration struct {
	Email        string
	Username     string
	Password     string
	Code         string
	AttemptsLeft int
}

// NewPendingRegistration starts a registration with a fresh attempt
// budget.
func NewPendingRegistration(email, username, password, code string) *PendingRegistration {
	return &PendingRegistration{
		Email:        email,
		Username:     username,
		Password:     password,
		Code:         code,
		AttemptsLeft: MaxVerifyAttempts,
	}
}
