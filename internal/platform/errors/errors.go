package apperrors

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("User not authenticated")
	ErrSessionMissing  = errors.New("auth session missing")
)

// AuthenticationError covers rejected credentials, transport failures and
// pending e-mail confirmation on the sign-in/sign-up paths.
type AuthenticationError struct {
	Op  string
	Err error
}

func (e *AuthenticationError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *AuthenticationError) Unwrap() error { return e.Err }

// DataFetchError is a failed select against a row collection.
type DataFetchError struct {
	Table string
	Err   error
}

func (e *DataFetchError) Error() string { return "fetch " + e.Table + ": " + e.Err.Error() }
func (e *DataFetchError) Unwrap() error { return e.Err }

// DataWriteError is a failed insert or upsert against a row collection.
type DataWriteError struct {
	Table string
	Err   error
}

func (e *DataWriteError) Error() string { return "write " + e.Table + ": " + e.Err.Error() }
func (e *DataWriteError) Unwrap() error { return e.Err }

// ErrConfirmationPending means the account exists but its e-mail address
// has not been confirmed yet.
var ErrConfirmationPending = errors.New("email confirmation pending")
