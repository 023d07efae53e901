package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "Output format (text|json)")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List approval records",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.close()

	records, err := e.reg.List()
	if err != nil {
		return err
	}

	if listFormat == "json" {
		out, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(records) == 0 {
		fmt.Println("no approvals registered")
		return nil
	}
	for _, r := range records {
		state := "valid"
		if !r.Valid {
			state = "revoked"
		}
		fmt.Printf("%-14s %-11s %-8s %s\n", r.Scope, r.Mode, state, r.Digest)
	}
	return nil
}
