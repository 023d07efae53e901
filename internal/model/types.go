package model

import (
	"encoding/hex"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DigestLen is the byte length of a call digest (SHA-256 output).
const DigestLen = 32

// Digest is the content fingerprint of one approved call shape.
// It is produced by the operator interpreter and never constructed
// by hand outside of tests.
type Digest [DigestLen]byte

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) String() string {
	return d.Hex()
}

// MarshalText encodes the digest as hex for JSON and YAML.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

// UnmarshalText decodes a hex-encoded digest.
func (d *Digest) UnmarshalText(b []byte) error {
	parsed, err := ParseDigest(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDigest decodes a hex-encoded digest.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("invalid digest encoding: %w", err)
	}
	if len(b) != DigestLen {
		return d, fmt.Errorf("invalid digest length: expected %d bytes, got %d", DigestLen, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// Scope binds an approval and a signer authority to one vault
// sub-account. Sub-accounts isolate external positions from each
// other: revoking one sub-account's approvals leaves the others
// untouched.
type Scope struct {
	VaultID    uint64 `json:"vault_id" yaml:"vault_id"`
	SubAccount uint8  `json:"sub_account" yaml:"sub_account"`
}

func (s Scope) String() string {
	return fmt.Sprintf("vault %d sub %d", s.VaultID, s.SubAccount)
}

// Key returns a filesystem- and SQL-safe identifier for the scope.
func (s Scope) Key() string {
	return fmt.Sprintf("%d.%d", s.VaultID, s.SubAccount)
}

// CallAccount is one entry of a candidate call's account list, in the
// order the external program expects them.
type CallAccount struct {
	Pubkey     solana.PublicKey `json:"pubkey"`
	IsSigner   bool             `json:"is_signer"`
	IsWritable bool             `json:"is_writable"`
}

// CandidateCall is one proposed cross-program invocation: the target
// program, its raw instruction data, and the ordered account list.
// It is built fresh per transaction and never persisted.
type CandidateCall struct {
	ProgramID solana.PublicKey `json:"program_id"`
	Data      []byte           `json:"data"`
	Accounts  []CallAccount    `json:"accounts"`
}
