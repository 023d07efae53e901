// Package authority derives the vault's program-owned signing
// identities. A derived address is referentially stable for its scope
// and never corresponds to a private key: the runtime grants it signing
// power only inside an invocation signed with the matching seeds.
package authority

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ppiankov/vaultgate/internal/model"
)

// PDA seed prefixes. Stable identifiers: changing any of these orphans
// every derived account.
const (
	seedVault      = "boring-vault"
	seedVaultState = "boring-vault-state"
	seedDigest     = "cpi-digest"
)

// Signer is a derived signing identity together with the seeds that
// prove the derivation to the runtime.
type Signer struct {
	Address solana.PublicKey
	Bump    uint8
	seeds   [][]byte
}

// Seeds returns the full seed set including the bump, in the order the
// runtime expects for signature verification.
func (s Signer) Seeds() [][]byte {
	out := make([][]byte, 0, len(s.seeds)+1)
	out = append(out, s.seeds...)
	out = append(out, []byte{s.Bump})
	return out
}

// DeriveSigner derives the signer authority for one vault sub-account.
func DeriveSigner(programID solana.PublicKey, scope model.Scope) (Signer, error) {
	seeds := [][]byte{
		[]byte(seedVault),
		vaultIDBytes(scope.VaultID),
		{scope.SubAccount},
	}
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return Signer{}, fmt.Errorf("derive signer for %s: %w", scope, err)
	}
	return Signer{Address: addr, Bump: bump, seeds: seeds}, nil
}

// DeriveVaultState derives the address of the vault's state record.
func DeriveVaultState(programID solana.PublicKey, vaultID uint64) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte(seedVaultState),
		vaultIDBytes(vaultID),
	}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive vault state for vault %d: %w", vaultID, err)
	}
	return addr, nil
}

// DeriveDigestRecord derives the deterministic address of an approval
// record, binding it to both the vault state and the digest value.
func DeriveDigestRecord(programID solana.PublicKey, vaultID uint64, digest model.Digest) (solana.PublicKey, error) {
	state, err := DeriveVaultState(programID, vaultID)
	if err != nil {
		return solana.PublicKey{}, err
	}
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte(seedDigest),
		state.Bytes(),
		digest[:],
	}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive digest record for vault %d: %w", vaultID, err)
	}
	return addr, nil
}

func vaultIDBytes(vaultID uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, vaultID)
	return b
}
