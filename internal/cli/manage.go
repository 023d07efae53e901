package cli

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ppiankov/vaultgate/internal/gateway"
	"github.com/ppiankov/vaultgate/internal/model"
)

var (
	manageVault    uint64
	manageSub      uint8
	manageTemplate string
	manageTarget   string
	manageData     string
	manageAccounts []string
	managePayer    string
	manageDryRun   bool
)

func init() {
	rootCmd.AddCommand(manageCmd)
	manageCmd.Flags().Uint64Var(&manageVault, "vault", 0, "Vault id (required)")
	manageCmd.Flags().Uint8Var(&manageSub, "sub", 0, "Sub-account index")
	manageCmd.Flags().StringVar(&manageTemplate, "template", "", "Operator template YAML (required)")
	manageCmd.Flags().StringVar(&manageTarget, "target", "", "Target program id (required)")
	manageCmd.Flags().StringVar(&manageData, "data", "", "Instruction data, hex")
	manageCmd.Flags().StringArrayVar(&manageAccounts, "account", nil, "Account as pubkey[:flags], repeatable, in call order (flags: s, w)")
	manageCmd.Flags().StringVar(&managePayer, "payer", "", "Strategist keypair file; signs and pays for the transaction")
	manageCmd.Flags().BoolVar(&manageDryRun, "dry-run", false, "Verify approval without submitting or consuming")
	manageCmd.MarkFlagRequired("vault")
	manageCmd.MarkFlagRequired("template")
	manageCmd.MarkFlagRequired("target")
}

var manageCmd = &cobra.Command{
	Use:   "manage",
	Short: "Execute an approved call on the vault's behalf",
	Long: "Re-evaluates the operator template over the live call, checks the\n" +
		"digest against the registry, and on a match invokes the target program\n" +
		"with the vault's derived signer authority. Strategist only.",
	RunE: runManage,
}

func runManage(cmd *cobra.Command, args []string) error {
	program, err := loadTemplate(manageTemplate)
	if err != nil {
		return err
	}
	call, err := parseCall(manageTarget, manageData, manageAccounts)
	if err != nil {
		return err
	}

	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.close()

	scope := model.Scope{VaultID: manageVault, SubAccount: manageSub}

	// Dry-run: evaluate and check approval without submitting, and
	// without consuming a single-use record.
	if manageDryRun {
		digest, err := e.gateway(nil).Preview(call, program)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
		valid, err := e.reg.Lookup(scope, digest)
		if err != nil {
			return fmt.Errorf("digest %s: %w", digest, err)
		}
		if !valid {
			return fmt.Errorf("digest %s is revoked", digest)
		}
		fmt.Printf("dry-run ok: %s is approved for %s\n", digest, scope)
		return nil
	}

	if managePayer == "" {
		return fmt.Errorf("--payer is required (or use --dry-run)")
	}
	payer, err := solana.PrivateKeyFromSolanaKeygenFile(managePayer)
	if err != nil {
		return fmt.Errorf("load payer keypair: %w", err)
	}
	if e.cfg.RPCURL == "" {
		return fmt.Errorf("config has no rpc_url")
	}
	inv := gateway.NewRPCInvoker(e.cfg.RPCURL, payer)

	digest, err := e.gateway(inv).Manage(context.Background(), payer.PublicKey(), scope, call, program)
	if err != nil {
		return err
	}
	fmt.Printf("executed %s under %s\n", digest, scope)
	return nil
}
