package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const (
	// GenericAPIMessage is used when the API rejected a call without a message.
	GenericAPIMessage = "Erreur lors de la requête"
	// TransportMessage is shown when the API could not be reached at all.
	TransportMessage = "Une erreur s'est produite : le serveur TerrePro est injoignable"
)

var (
	// ErrNoToken is returned before any network I/O when an authenticated call
	// is attempted without a bearer token.
	ErrNoToken = errors.New("utilisateur non authentifié")
	// ErrMissingToken is returned when the API accepted credentials but sent
	// no token back.
	ErrMissingToken = errors.New("authentication response carries no token")
	// ErrBodyTooLarge is returned instead of a truncated binary response.
	ErrBodyTooLarge = errors.New("response body exceeds the size limit")
)

// APIError is a non-2xx answer from the API: the server told us no.
type APIError struct {
	Status int
	// Message is the API's own message, or GenericAPIMessage.
	Message string
	// FromAPI is false when Message is the generic fallback.
	FromAPI bool
	// Fields holds Laravel-style validation errors keyed by field name.
	Fields map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// FieldMessages flattens validation errors as "field : first message",
// sorted by field name.
func (e *APIError) FieldMessages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k, msgs := range e.Fields {
		if len(msgs) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+" : "+e.Fields[k][0])
	}
	return out
}

// TransportError means no HTTP response was received: we could not reach the
// server.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsCanceled reports whether the call was abandoned because the caller's
// context ended, typically the browser navigating away.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// UserMessage returns the text to show for err. API-reported messages are
// shown verbatim; otherwise fallback is used for API errors and
// TransportMessage for unreachable servers.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	var transportErr *TransportError
	switch {
	case errors.Is(err, ErrNoToken):
		return "Utilisateur non authentifié"
	case errors.As(err, &apiErr):
		if apiErr.FromAPI {
			return apiErr.Message
		}
		if fields := apiErr.FieldMessages(); len(fields) > 0 {
			return strings.Join(fields, " ; ")
		}
		return fallback
	case errors.As(err, &transportErr):
		return TransportMessage
	}
	return fallback
}
