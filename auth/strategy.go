package auth

import (
	"context"
	"errors"

	"github.com/andrebq/pressbox/blog"
)

type (
	// Outcome is the terminal state of one authentication attempt.
	// Exactly one of User, Message or Err is meaningful: User on
	// success, Message on a credential failure, Err when the store or
	// the hasher misbehaved.
	Outcome struct {
		User    *blog.User
		Message string
		Err     error
	}
)

// Both a missing user and a wrong password surface the same text,
// the response must not reveal which of the two happened.
const failedLoginMessage = "incorrect username and/or password"

func (o Outcome) Success() bool { return o.User != nil }
func (o Outcome) Failed() bool  { return o.User == nil && o.Err == nil }

// Authenticate looks up the account by its exact username and checks
// the plaintext password against the stored hash.
//
// Store and hasher errors are never downgraded to a credential
// failure, they bubble up to the caller through Outcome.Err.
func Authenticate(ctx context.Context, store *blog.Store, username string, password string) Outcome {
	user, err := store.LookupUser(ctx, username)
	var notFound blog.UserNotFound
	if errors.As(err, &notFound) {
		return Outcome{Message: failedLoginMessage}
	} else if err != nil {
		return Outcome{Err: err}
	}
	match, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return Outcome{Err: err}
	}
	if !match {
		return Outcome{Message: failedLoginMessage}
	}
	return Outcome{User: &user}
}
