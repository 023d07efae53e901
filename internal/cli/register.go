package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ppiankov/vaultgate/internal/model"
)

var (
	registerVault  uint64
	registerSub    uint8
	registerDigest string
	registerActor  string
)

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().Uint64Var(&registerVault, "vault", 0, "Vault id (required)")
	registerCmd.Flags().Uint8Var(&registerSub, "sub", 0, "Sub-account index")
	registerCmd.Flags().StringVar(&registerDigest, "digest", "", "Digest to approve, hex (required)")
	registerCmd.Flags().StringVar(&registerActor, "actor", "", "Admin pubkey (required)")
	registerCmd.MarkFlagRequired("vault")
	registerCmd.MarkFlagRequired("digest")
	registerCmd.MarkFlagRequired("actor")
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Approve a call digest for a vault scope",
	Long: "Records an approval for (scope, digest) in the registry. Idempotent:\n" +
		"re-registering an existing pair revalidates it. Admin only.",
	RunE: runRegister,
}

func runRegister(cmd *cobra.Command, args []string) error {
	actor, err := solana.PublicKeyFromBase58(registerActor)
	if err != nil {
		return fmt.Errorf("invalid actor: %w", err)
	}
	digest, err := model.ParseDigest(registerDigest)
	if err != nil {
		return err
	}

	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.close()

	scope := model.Scope{VaultID: registerVault, SubAccount: registerSub}
	if err := e.gateway(nil).Register(actor, scope, digest); err != nil {
		return err
	}

	fmt.Printf("registered %s for %s (%s)\n", digest, scope, e.reg.Mode())
	return nil
}
