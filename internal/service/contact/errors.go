package contact

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the contact service layer.
var (
	ErrMissingFields       = errors.New("missing required fields")
	ErrInvalidFields       = errors.New("invalid field values")
	ErrNotConfigured       = errors.New("data store is not configured")
	ErrStoreNotProvisioned = errors.New("contact_submissions table does not exist")
	ErrDuplicate           = errors.New("submission already exists")
	ErrStore               = errors.New("database error")
)

// Error kinds reported to callers.
const (
	KindMissingFields       = "missing_fields"
	KindInvalidFields       = "invalid_fields"
	KindServerMisconfigured = "server_misconfigured"
	KindStoreNotProvisioned = "store_not_provisioned"
	KindDuplicate           = "duplicate_submission"
	KindStoreError          = "store_error"
)

// Kind maps an error returned by Service.Submit to its taxonomy name.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrMissingFields):
		return KindMissingFields
	case errors.Is(err, ErrInvalidFields):
		return KindInvalidFields
	case errors.Is(err, ErrNotConfigured):
		return KindServerMisconfigured
	case errors.Is(err, ErrStoreNotProvisioned):
		return KindStoreNotProvisioned
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	default:
		return KindStoreError
	}
}

// MissingFieldsError lists the required fields that were empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

// ValidationError maps field names to the message the form would show.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidFields }

// StoreError is returned by repositories when an insert fails. Kind is one
// of ErrStoreNotProvisioned, ErrDuplicate or ErrStore; Code carries the
// driver's error code (a Postgres SQLSTATE) when there is one.
type StoreError struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%v (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// AsStoreError normalizes any repository error into a *StoreError.
func AsStoreError(err error) *StoreError {
	var se *StoreError
	if errors.As(err, &se) {
		if se.Kind == nil {
			se.Kind = ErrStore
		}
		return se
	}
	return &StoreError{Kind: ErrStore, Message: err.Error(), Err: err}
}
