package store

import (
	"errors"
	"fmt"
)

var (
	// ErrMobsUnsupported is returned when a mob is supplied but no mob column is configured.
	ErrMobsUnsupported = errors.New("identity: mobs are unsupported under current configuration")

	// ErrNonUniqueIdentity is returned when the identity already exists in storage.
	ErrNonUniqueIdentity = errors.New("identity: identity is not unique")

	// ErrDataStore is returned for any other storage failure.
	ErrDataStore = errors.New("identity: data store failure")
)

// Kind classifies a failed store attempt.
type Kind int

const (
	// KindDataStore is an unexpected storage failure; the cause is wrapped.
	KindDataStore Kind = iota

	// KindMobsUnsupported means a mob was given to a store without a mob column.
	KindMobsUnsupported

	// KindNonUniqueIdentity means the identity violated the uniqueness constraint.
	KindNonUniqueIdentity
)

func (k Kind) String() string {
	switch k {
	case KindMobsUnsupported:
		return "mobs_unsupported"
	case KindNonUniqueIdentity:
		return "non_unique_identity"
	default:
		return "data_store"
	}
}

// Error is returned by every failed store attempt. It always carries the
// identity and mob that were attempted.
//
// Match on the kind with errors.Is against the package sentinels, or
// extract it with errors.As and switch on Kind.
type Error struct {
	Kind     Kind
	Identity string

	// Mob is the attempted mob; only meaningful when HasMob is set.
	Mob    string
	HasMob bool

	// Reason explains a KindMobsUnsupported failure.
	Reason string

	// Err is the underlying connection failure, nil for KindMobsUnsupported.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMobsUnsupported:
		return fmt.Sprintf("identity: mobs are unsupported under current configuration. %s. %s (with mob %s)",
			e.Reason, e.Identity, e.Mob)
	case KindNonUniqueIdentity:
		return "identity: could not store generated identity as it is not unique: " + e.subject()
	default:
		if e.Err == nil {
			return "identity: could not store generated identity " + e.subject()
		}
		return fmt.Sprintf("identity: could not store generated identity %s: %v", e.subject(), e.Err)
	}
}

// Unwrap returns the underlying connection failure.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrMobsUnsupported:
		return e.Kind == KindMobsUnsupported
	case ErrNonUniqueIdentity:
		return e.Kind == KindNonUniqueIdentity
	case ErrDataStore:
		return e.Kind == KindDataStore
	}
	return false
}

func (e *Error) subject() string {
	if !e.HasMob {
		return e.Identity
	}
	return fmt.Sprintf("%s (with mob %s)", e.Identity, e.Mob)
}
