package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/vaultgate/internal/operator"
)

var (
	previewTemplate string
	previewTarget   string
	previewData     string
	previewAccounts []string
)

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVar(&previewTemplate, "template", "", "Operator template YAML (required)")
	previewCmd.Flags().StringVar(&previewTarget, "target", "", "Target program id (required)")
	previewCmd.Flags().StringVar(&previewData, "data", "", "Instruction data, hex")
	previewCmd.Flags().StringArrayVar(&previewAccounts, "account", nil, "Account as pubkey[:flags], repeatable, in call order (flags: s, w)")
	previewCmd.MarkFlagRequired("template")
	previewCmd.MarkFlagRequired("target")
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Compute the digest of an intended call",
	Long: "Evaluates an operator template against an intended call and prints the\n" +
		"digest to register. Pure computation: nothing is stored or submitted.",
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	program, err := loadTemplate(previewTemplate)
	if err != nil {
		return err
	}

	call, err := parseCall(previewTarget, previewData, previewAccounts)
	if err != nil {
		return err
	}

	digest, err := operator.Evaluate(program, call)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	fmt.Println(digest.Hex())
	return nil
}
