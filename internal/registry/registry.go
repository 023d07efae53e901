// Package registry is the digest registry: the on-disk record of which
// call digests the admin has approved, per vault scope. It is the only
// state the authorization engine consults at execution time.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ppiankov/vaultgate/internal/model"
)

var (
	// ErrNotFound is returned when no record exists for a
	// (scope, digest) pair.
	ErrNotFound = errors.New("approval record not found")

	// ErrInvalidMode rejects unknown lifecycle modes.
	ErrInvalidMode = errors.New("invalid registry mode")
)

// Mode selects the approval lifecycle. Both lifecycles run on the same
// registry; the mode is configuration, not a separate engine.
type Mode string

const (
	// ModePersistent keeps a record across executions; revoke flips
	// its validity. For recurring calls with fully pinned templates.
	ModePersistent Mode = "persistent"

	// ModeSingleUse deletes a record after one successful execution,
	// forcing explicit re-approval. The default for new scopes: it
	// minimizes standing attack surface when templates retain
	// variable fields.
	ModeSingleUse Mode = "single_use"
)

func (m Mode) validate() error {
	switch m {
	case ModePersistent, ModeSingleUse:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, string(m))
	}
}

// Record is one admin-approved call template. The digest is write-once;
// only validity (persistent) or existence (single-use) changes after
// Register.
type Record struct {
	Scope     model.Scope  `json:"scope"`
	Digest    model.Digest `json:"digest"`
	Mode      Mode         `json:"mode"`
	Valid     bool         `json:"valid"`
	CreatedAt time.Time    `json:"created_at"`
	RevokedAt *time.Time   `json:"revoked_at,omitempty"`
}

// Store is the persistence backend. Implementations: FileStore (one
// JSON file per record) and SQLStore (sqlite).
type Store interface {
	Put(rec Record) error
	Get(scope model.Scope, digest model.Digest) (*Record, error)
	Delete(scope model.Scope, digest model.Digest) error
	List() ([]Record, error)
	Close() error
}

// Registry applies the lifecycle rules on top of a Store.
type Registry struct {
	store Store
	mode  Mode
	mu    sync.Mutex
}

// New creates a registry with the given backend and lifecycle mode.
func New(store Store, mode Mode) (*Registry, error) {
	if err := mode.validate(); err != nil {
		return nil, err
	}
	return &Registry{store: store, mode: mode}, nil
}

// Mode returns the configured lifecycle mode.
func (r *Registry) Mode() Mode {
	return r.mode
}

// Register creates or refreshes the approval for (scope, digest).
// Re-registering an existing pair is not an error; it revalidates a
// previously revoked persistent record.
func (r *Registry) Register(scope model.Scope, digest model.Digest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := Record{
		Scope:     scope,
		Digest:    digest,
		Mode:      r.mode,
		Valid:     true,
		CreatedAt: time.Now().UTC(),
	}
	if existing, err := r.store.Get(scope, digest); err == nil {
		rec.CreatedAt = existing.CreatedAt
	}

	if err := r.store.Put(rec); err != nil {
		return fmt.Errorf("register %s for %s: %w", digest, scope, err)
	}
	return nil
}

// Revoke invalidates the approval: persistent records are marked
// invalid, single-use records are deleted outright. ErrNotFound if no
// record exists. Revocation has no effect on an execution already in
// flight; it only gates the next lookup.
func (r *Registry) Revoke(scope model.Scope, digest model.Digest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.store.Get(scope, digest)
	if err != nil {
		return fmt.Errorf("revoke %s for %s: %w", digest, scope, err)
	}

	if rec.Mode == ModeSingleUse {
		return r.store.Delete(scope, digest)
	}

	now := time.Now().UTC()
	rec.Valid = false
	rec.RevokedAt = &now
	return r.store.Put(*rec)
}

// Lookup reports whether (scope, digest) is currently approved.
// ErrNotFound when no record exists.
func (r *Registry) Lookup(scope model.Scope, digest model.Digest) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.store.Get(scope, digest)
	if err != nil {
		return false, err
	}
	return rec.Valid, nil
}

// Consume spends the approval after a successful execution. Single-use
// records are deleted; persistent records are left standing.
func (r *Registry) Consume(scope model.Scope, digest model.Digest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.store.Get(scope, digest)
	if err != nil {
		return err
	}
	if rec.Mode != ModeSingleUse {
		return nil
	}
	return r.store.Delete(scope, digest)
}

// List returns all records in the registry.
func (r *Registry) List() ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.List()
}

// Close releases the backend.
func (r *Registry) Close() error {
	return r.store.Close()
}
