package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ppiankov/vaultgate/internal/model"
)

var (
	revokeVault  uint64
	revokeSub    uint8
	revokeDigest string
	revokeActor  string
)

func init() {
	rootCmd.AddCommand(revokeCmd)
	revokeCmd.Flags().Uint64Var(&revokeVault, "vault", 0, "Vault id (required)")
	revokeCmd.Flags().Uint8Var(&revokeSub, "sub", 0, "Sub-account index")
	revokeCmd.Flags().StringVar(&revokeDigest, "digest", "", "Digest to revoke, hex (required)")
	revokeCmd.Flags().StringVar(&revokeActor, "actor", "", "Admin pubkey (required)")
	revokeCmd.MarkFlagRequired("vault")
	revokeCmd.MarkFlagRequired("digest")
	revokeCmd.MarkFlagRequired("actor")
}

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke an approved call digest",
	Long: "Invalidates an approval: persistent records are marked invalid,\n" +
		"single-use records are deleted. Has no effect on an execution already\n" +
		"in flight. Admin only.",
	RunE: runRevoke,
}

func runRevoke(cmd *cobra.Command, args []string) error {
	actor, err := solana.PublicKeyFromBase58(revokeActor)
	if err != nil {
		return fmt.Errorf("invalid actor: %w", err)
	}
	digest, err := model.ParseDigest(revokeDigest)
	if err != nil {
		return err
	}

	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.close()

	scope := model.Scope{VaultID: revokeVault, SubAccount: revokeSub}
	if err := e.gateway(nil).Revoke(actor, scope, digest); err != nil {
		return err
	}

	fmt.Printf("revoked %s for %s\n", digest, scope)
	return nil
}
