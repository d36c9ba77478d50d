package auth

import (
	"context"

	"github.com/pkg/errors"
)

// ErrDuplicateAccount is returned by CredentialStore.SignUp when an account
// with the given email already exists. Credential store implementations map
// their backend's duplicate rejection to this error.
var ErrDuplicateAccount = errors.New("account already exists")

type (
	// User is the identity issued by the credential store. It is referenced,
	// never duplicated, locally: students are owned via User.ID.
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	// Session is a live authenticated session.
	Session struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
		User        User   `json:"user"`
	}

	// SignUpResult carries the outcome of an account creation attempt.
	// Session is nil when the backend requires email confirmation first.
	SignUpResult struct {
		User    *User
		Session *Session
	}

	// CredentialStore is the hosted auth backend.
	CredentialStore interface {
		SignInWithPassword(ctx context.Context, email, password string) (Session, error)
		SignUp(ctx context.Context, email, password string) (SignUpResult, error)
	}
)

// Status enumerates every possible exit of Reconciler.Authenticate.
type Status int

const (
	StatusSession Status = iota + 1
	StatusPendingConfirmation
	StatusWrongPassword
	StatusError
	StatusFailed
)

// Outcome is the result of an authentication attempt. Exactly one of the
// enumerated statuses is set; a raw backend error never escapes.
type Outcome struct {
	Status  Status
	Session Session // set when Status == StatusSession
	Message string  // user-facing message for every other status
}

func (o Outcome) OK() bool { return o.Status == StatusSession }

// Reconciler merges "sign in" and "create an account" into a single
// operation: callers need not know in advance whether the account exists.
type Reconciler struct {
	store CredentialStore
}

func NewReconciler(store CredentialStore) *Reconciler {
	return &Reconciler{store: store}
}

// Authenticate tries a password sign-in and, on any failure, falls through
// to a sign-up with the same credentials. The store does not let us
// distinguish "no such account" from "wrong password" (or from a transient
// fault) on the first attempt, so the fall-through is unconditional; an
// existing account then rejecting the sign-up as a duplicate is what tells
// us the password was wrong. Side effect: a failed sign-in for a fresh
// email provisions a new account.
func (r *Reconciler) Authenticate(ctx context.Context, email, password string) Outcome {
	if sess, err := r.store.SignInWithPassword(ctx, email, password); err == nil {
		return Outcome{Status: StatusSession, Session: sess}
	}

	res, err := r.store.SignUp(ctx, email, password)
	if err != nil {
		if errors.Cause(err) == ErrDuplicateAccount {
			// sign-in already failed for this existing account
			return Outcome{Status: StatusWrongPassword, Message: "Incorrect password."}
		}
		return Outcome{Status: StatusError, Message: "Error: " + err.Error()}
	}

	if res.User != nil {
		if res.Session != nil {
			return Outcome{Status: StatusSession, Session: *res.Session}
		}
		return Outcome{
			Status:  StatusPendingConfirmation,
			Message: "Account created! Please check your email to confirm.",
		}
	}

	return Outcome{Status: StatusFailed, Message: "Authentication failed."}
}
