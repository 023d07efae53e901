package gateway

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Authorization errors.
var (
	// ErrUnauthorized is returned when the actor is not the role the
	// operation requires (admin for register/revoke, strategist for
	// manage).
	ErrUnauthorized = errors.New("actor is not authorized for this operation")

	// ErrDigestNotApproved is returned when the evaluated digest has
	// no valid approval record.
	ErrDigestNotApproved = errors.New("digest is not approved")

	// ErrVaultPaused is returned while the vault's pause flag is set.
	ErrVaultPaused = errors.New("vault is paused")

	// ErrUnknownVault is returned for a scope whose vault is not in
	// the configuration.
	ErrUnknownVault = errors.New("vault not configured")
)

// ExternalCallError wraps a rejection from the invoked program itself.
// The authorization checks all passed; the target call failed.
type ExternalCallError struct {
	Target solana.PublicKey
	Err    error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("external call to %s failed: %v", e.Target, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}
