package gateway

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/ppiankov/vaultgate/internal/authority"
	"github.com/ppiankov/vaultgate/internal/model"
)

// Invocation is one fully authorized external call, after signer
// substitution. The Signer carries the derivation seeds the runtime
// verifies in place of a signature.
type Invocation struct {
	ProgramID solana.PublicKey
	Data      []byte
	Accounts  []model.CallAccount
	Signer    authority.Signer
}

// Invoker executes an authorized invocation. The production
// implementation submits through RPC; tests substitute an in-memory
// one.
type Invoker interface {
	Invoke(ctx context.Context, inv Invocation) error
}

// RPCInvoker submits invocations to a Solana RPC node. The payer funds
// the transaction fee; it never holds vault assets and is not the
// vault's signer authority.
type RPCInvoker struct {
	client *rpc.Client
	payer  solana.PrivateKey
}

// NewRPCInvoker connects an invoker to the given RPC endpoint.
func NewRPCInvoker(url string, payer solana.PrivateKey) *RPCInvoker {
	return &RPCInvoker{client: rpc.New(url), payer: payer}
}

func (r *RPCInvoker) Invoke(ctx context.Context, inv Invocation) error {
	recent, err := r.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return fmt.Errorf("fetch blockhash: %w", err)
	}

	metas := make(solana.AccountMetaSlice, 0, len(inv.Accounts))
	for _, a := range inv.Accounts {
		metas = append(metas, &solana.AccountMeta{
			PublicKey:  a.Pubkey,
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		})
	}
	ix := solana.NewInstruction(inv.ProgramID, metas, inv.Data)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recent.Value.Blockhash,
		solana.TransactionPayer(r.payer.PublicKey()),
	)
	if err != nil {
		return fmt.Errorf("build transaction: %w", err)
	}

	// Only the fee payer signs client-side. The derived authority's
	// signer flag is satisfied by the runtime from the derivation
	// seeds; no private key exists for it.
	_, err = tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(r.payer.PublicKey()) {
			return &r.payer
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}

	if _, err := r.client.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}
	return nil
}
