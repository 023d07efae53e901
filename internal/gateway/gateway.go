// Package gateway orchestrates the manage flow: interpreter
// verification, registry lookup, signer derivation, and the external
// invocation. It is the only path through which vault assets move.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/ppiankov/vaultgate/internal/audit"
	"github.com/ppiankov/vaultgate/internal/authority"
	"github.com/ppiankov/vaultgate/internal/config"
	"github.com/ppiankov/vaultgate/internal/model"
	"github.com/ppiankov/vaultgate/internal/operator"
	"github.com/ppiankov/vaultgate/internal/registry"
)

// Gateway wires the interpreter, registry, and invoker together under
// one explicit configuration handle.
type Gateway struct {
	cfg *config.Config
	reg *registry.Registry
	inv Invoker
	log *audit.Log // nil disables auditing
}

// New creates a Gateway. The audit log may be nil.
func New(cfg *config.Config, reg *registry.Registry, inv Invoker, log *audit.Log) *Gateway {
	return &Gateway{cfg: cfg, reg: reg, inv: inv, log: log}
}

// Preview evaluates the program against an intended call and returns
// the digest the admin would register. It touches no state.
func (g *Gateway) Preview(call model.CandidateCall, p operator.Program) (model.Digest, error) {
	return operator.Evaluate(p, call)
}

// Register records an approval for (scope, digest). Admin only.
func (g *Gateway) Register(actor solana.PublicKey, scope model.Scope, digest model.Digest) error {
	vault, ok := g.cfg.Vault(scope.VaultID)
	if !ok {
		return fmt.Errorf("%w: vault %d", ErrUnknownVault, scope.VaultID)
	}
	if !actor.Equals(vault.Admin) {
		g.record(audit.OpRegister, actor, scope, &digest, nil, ErrUnauthorized)
		return fmt.Errorf("%w: only the admin may register", ErrUnauthorized)
	}

	err := g.reg.Register(scope, digest)
	g.record(audit.OpRegister, actor, scope, &digest, nil, err)
	return err
}

// Revoke invalidates an approval. Admin only. It does not affect an
// execution already in flight, only the next lookup.
func (g *Gateway) Revoke(actor solana.PublicKey, scope model.Scope, digest model.Digest) error {
	vault, ok := g.cfg.Vault(scope.VaultID)
	if !ok {
		return fmt.Errorf("%w: vault %d", ErrUnknownVault, scope.VaultID)
	}
	if !actor.Equals(vault.Admin) {
		g.record(audit.OpRevoke, actor, scope, &digest, nil, ErrUnauthorized)
		return fmt.Errorf("%w: only the admin may revoke", ErrUnauthorized)
	}

	err := g.reg.Revoke(scope, digest)
	g.record(audit.OpRevoke, actor, scope, &digest, nil, err)
	return err
}

// Manage verifies and executes one external call on the vault's
// behalf. Strategist only. The call executes with exactly the bytes
// and accounts that reproduce a registered digest, or it fails before
// anything moves:
//
//  1. evaluate the operator program over the live call
//  2. look the digest up in the registry
//  3. derive the signer authority for the scope
//  4. invoke the target, substituting the derived signer
//  5. consume the approval (single-use mode)
//
// The returned digest identifies which approval the call ran under.
func (g *Gateway) Manage(ctx context.Context, actor solana.PublicKey, scope model.Scope, call model.CandidateCall, p operator.Program) (model.Digest, error) {
	var zero model.Digest

	vault, ok := g.cfg.Vault(scope.VaultID)
	if !ok {
		return zero, fmt.Errorf("%w: vault %d", ErrUnknownVault, scope.VaultID)
	}
	if vault.Paused {
		g.recordManage(actor, scope, nil, call, ErrVaultPaused)
		return zero, ErrVaultPaused
	}
	if !actor.Equals(vault.Strategist) {
		g.recordManage(actor, scope, nil, call, ErrUnauthorized)
		return zero, fmt.Errorf("%w: only the strategist may manage", ErrUnauthorized)
	}

	digest, err := operator.Evaluate(p, call)
	if err != nil {
		g.recordManage(actor, scope, nil, call, err)
		return zero, err
	}

	valid, err := g.reg.Lookup(scope, digest)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			err = fmt.Errorf("%w: %s", ErrDigestNotApproved, digest)
		}
		g.recordManage(actor, scope, &digest, call, err)
		return zero, err
	}
	if !valid {
		err = fmt.Errorf("%w: %s has been revoked", ErrDigestNotApproved, digest)
		g.recordManage(actor, scope, &digest, call, err)
		return zero, err
	}

	signer, err := authority.DeriveSigner(g.cfg.ProgramID, scope)
	if err != nil {
		g.recordManage(actor, scope, &digest, call, err)
		return zero, err
	}

	inv := Invocation{
		ProgramID: call.ProgramID,
		Data:      call.Data,
		Accounts:  substituteSigner(call.Accounts, signer.Address),
		Signer:    signer,
	}
	if err := g.inv.Invoke(ctx, inv); err != nil {
		wrapped := &ExternalCallError{Target: call.ProgramID, Err: err}
		g.recordManage(actor, scope, &digest, call, wrapped)
		return zero, wrapped
	}

	if err := g.reg.Consume(scope, digest); err != nil {
		// The invocation already happened; surface the registry
		// inconsistency rather than pretending the call failed.
		err = fmt.Errorf("call executed but approval not consumed: %w", err)
		g.recordManage(actor, scope, &digest, call, err)
		return digest, err
	}

	g.recordManage(actor, scope, &digest, call, nil)
	return digest, nil
}

// substituteSigner marks the derived authority as signer wherever the
// account list designates it. Authorization is granted by derivation,
// not by a key: no other account's signer flag is touched.
func substituteSigner(accounts []model.CallAccount, signer solana.PublicKey) []model.CallAccount {
	out := make([]model.CallAccount, len(accounts))
	copy(out, accounts)
	for i := range out {
		if out[i].Pubkey.Equals(signer) {
			out[i].IsSigner = true
		}
	}
	return out
}

func (g *Gateway) record(op string, actor solana.PublicKey, scope model.Scope, digest *model.Digest, target *solana.PublicKey, err error) {
	if g.log == nil {
		return
	}
	e := audit.Entry{
		Op:         op,
		Actor:      actor.String(),
		VaultID:    scope.VaultID,
		SubAccount: scope.SubAccount,
		Outcome:    "ok",
	}
	if digest != nil {
		e.Digest = digest.Hex()
	}
	if target != nil {
		e.Target = target.String()
	}
	if err != nil {
		e.Outcome = classify(err)
		e.Reason = err.Error()
	}
	if recErr := g.log.Record(e); recErr != nil {
		fmt.Fprintf(os.Stderr, "audit record failed: %v\n", recErr)
	}
}

func (g *Gateway) recordManage(actor solana.PublicKey, scope model.Scope, digest *model.Digest, call model.CandidateCall, err error) {
	g.record(audit.OpManage, actor, scope, digest, &call.ProgramID, err)
}

// classify maps an error to its audit outcome class.
func classify(err error) string {
	var ext *ExternalCallError
	switch {
	case errors.Is(err, operator.ErrAssertionFailed), errors.Is(err, operator.ErrSizeMismatch):
		return "assertion_failed"
	case errors.Is(err, operator.ErrDataOutOfBounds),
		errors.Is(err, operator.ErrAccountIndexOutOfBounds),
		errors.Is(err, operator.ErrProgramTooLong),
		errors.Is(err, operator.ErrDataTooLarge),
		errors.Is(err, operator.ErrUnknownOperator),
		errors.Is(err, operator.ErrTruncatedProgram),
		errors.Is(err, operator.ErrBadAssertWidth):
		return "validation_failed"
	case errors.Is(err, ErrDigestNotApproved):
		return "digest_not_approved"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrVaultPaused):
		return "vault_paused"
	case errors.As(err, &ext):
		return "external_call_failed"
	default:
		return "error"
	}
}
