// internal/errors/errors.go
package appErrors

import "fmt"

// ValidationError covers malformed input: wrong comment count, empty or
// too-many targets, bad request bodies.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthenticationError means the caller carried no valid identity.
type AuthenticationError struct{}

func (e *AuthenticationError) Error() string {
	return "no valid caller identity"
}

// ErrCredentialNotFound is a sentinel error
type ErrCredentialNotFound struct {
	CredentialID int
}

func (e *ErrCredentialNotFound) Error() string {
	return fmt.Sprintf("credential with ID %d not found", e.CredentialID)
}

// Helper constructor
func NewCredentialNotFound(id int) error {
	return &ErrCredentialNotFound{CredentialID: id}
}

// ErrCredentialIncomplete means the credential was never connected: it has no
// access or refresh token to work with.
type ErrCredentialIncomplete struct {
	CredentialID int
}

func (e *ErrCredentialIncomplete) Error() string {
	return fmt.Sprintf("credential with ID %d has no tokens, connect it first", e.CredentialID)
}

func NewCredentialIncomplete(id int) error {
	return &ErrCredentialIncomplete{CredentialID: id}
}

// ErrCredentialRefresh wraps a failed token exchange with the provider
// (expired/revoked refresh token, network failure, provider error).
type ErrCredentialRefresh struct {
	CredentialID int
	Err          error
}

func (e *ErrCredentialRefresh) Error() string {
	return fmt.Sprintf("token refresh failed for credential %d: %v", e.CredentialID, e.Err)
}

func (e *ErrCredentialRefresh) Unwrap() error {
	return e.Err
}

func NewCredentialRefresh(id int, err error) error {
	return &ErrCredentialRefresh{CredentialID: id, Err: err}
}

// PostingError identifies the target whose external post failed and carries
// the underlying provider message. Timeout distinguishes a bounded per-call
// timeout from a provider rejection.
type PostingError struct {
	TargetID string
	Timeout  bool
	Err      error
}

func (e *PostingError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("posting to target %s timed out: %v", e.TargetID, e.Err)
	}
	return fmt.Sprintf("posting to target %s failed: %v", e.TargetID, e.Err)
}

func (e *PostingError) Unwrap() error {
	return e.Err
}

func NewPostingError(targetID string, err error) error {
	return &PostingError{TargetID: targetID, Err: err}
}

func NewPostingTimeout(targetID string, err error) error {
	return &PostingError{TargetID: targetID, Timeout: true, Err: err}
}
