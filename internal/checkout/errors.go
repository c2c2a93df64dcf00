package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCartNotFound          = errors.New("cart not found")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrBusinessClosed        = errors.New("business is closed")
	ErrBelowMinimum          = errors.New("order is below the minimum value")
	ErrCheckoutInProgress    = errors.New("checkout already in progress")
	ErrWhatsAppNotConfigured = errors.New("whatsapp number not configured")
)

// ValidationError carries one message per rejected field, in the language
// shown to the customer.
type ValidationError struct {
	Fields map[string]string
	// Zone names the customer probably meant when the neighborhood did not
	// match any delivery zone.
	Suggestions []string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid checkout: " + strings.Join(keys, ", ")
}

// PersistError is a failed order insert, described by its Postgres class.
type PersistError struct {
	Code    string
	Message string
	Err     error
}

func (e *PersistError) Error() string { return e.Message }
func (e *PersistError) Unwrap() error { return e.Err }

func classifyPersistError(err error) *PersistError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return &PersistError{Message: fmt.Sprintf("database error: %v", err), Err: err}
	}

	pe := &PersistError{Code: pgErr.Code, Err: err}
	switch pgErr.Code {
	case "23502":
		pe.Message = "required data not provided"
	case "23503":
		pe.Message = "invalid reference"
	case "42501":
		pe.Message = "permission denied"
	default:
		pe.Message = "database error: " + pgErr.Message
	}
	return pe
}
