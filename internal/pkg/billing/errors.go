package billing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("billing: not found")
	ErrAlreadyCanceled  = errors.New("billing: subscription already canceled")
	ErrInvalidAccount   = errors.New("billing: invalid account update")
	ErrDuplicateAccount = errors.New("billing: email already used by another portal account")

	errRemoteActive = errors.New("gateway reports the subscription as ACTIVE while it is canceled locally")
)

// ValidationError lists rejected fields by their JSON path.
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
	return "validation failed: " + strings.Join(parts, "; ")
}

// First returns the message of the alphabetically first field.
func (e *ValidationError) First() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return e.Fields[keys[0]]
}

// Persistence steps.
const (
	StepCustomer     = "persist_customer"
	StepSubscription = "persist_subscription"
	StepCancel       = "persist_cancel"
)

// PersistenceError is a local write failure after the gateway already
// accepted the change. The remote entity is recorded in the orphan ledger.
type PersistenceError struct {
	Step       string
	ExternalID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("billing %s (%s): %v", e.Step, e.ExternalID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
