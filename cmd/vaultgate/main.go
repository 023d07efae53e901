// vaultgate is a pre-approval gateway for cross-program calls on Solana.
// Operators describe which parts of a candidate call matter; the engine
// folds them into a digest, and only digests registered for a vault
// scope are allowed through to the chain.
package main

import "github.com/ppiankov/vaultgate/internal/cli"

func main() {
	cli.Execute()
}
