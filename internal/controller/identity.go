// internal/controller/identity.go
package controller

import (
	"errors"
	"net/http"
	"strconv"

	v "github.com/go-ozzo/ozzo-validation/v4"

	appErrors "github.com/vi8hal/ytc-sub000/internal/errors"
)

// CallerID reads the explicit caller identity from the X-User-ID header.
// Authentication itself is an external collaborator; the core only requires
// that an identity was established upstream.
func CallerID(r *http.Request) (int, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return 0, &appErrors.AuthenticationError{}
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, &appErrors.AuthenticationError{}
	}
	return id, nil
}

// WriteError maps the error taxonomy onto HTTP statuses.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var validationErr *appErrors.ValidationError
	var authErr *appErrors.AuthenticationError
	var notFoundErr *appErrors.ErrCredentialNotFound
	var incompleteErr *appErrors.ErrCredentialIncomplete
	var refreshErr *appErrors.ErrCredentialRefresh
	var postingErr *appErrors.PostingError
	var ozzoErrs v.Errors

	switch {
	case errors.As(err, &validationErr), errors.As(err, &ozzoErrs):
		status = http.StatusBadRequest
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
	case errors.As(err, &incompleteErr):
		status = http.StatusConflict
	case errors.As(err, &refreshErr), errors.As(err, &postingErr):
		status = http.StatusBadGateway
	}

	http.Error(w, err.Error(), status)
}
