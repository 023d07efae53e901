package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/ppiankov/vaultgate/internal/audit"
	"github.com/ppiankov/vaultgate/internal/config"
	"github.com/ppiankov/vaultgate/internal/gateway"
	"github.com/ppiankov/vaultgate/internal/model"
	"github.com/ppiankov/vaultgate/internal/operator"
	"github.com/ppiankov/vaultgate/internal/registry"
)

// engine bundles everything a command needs, built from the config.
type engine struct {
	cfg *config.Config
	reg *registry.Registry
	log *audit.Log
}

func openEngine() (*engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	store, err := cfg.OpenStore()
	if err != nil {
		return nil, err
	}

	reg, err := registry.New(store, cfg.Registry.Mode)
	if err != nil {
		store.Close()
		return nil, err
	}

	log, err := audit.Open(cfg.AuditLog)
	if err != nil {
		reg.Close()
		return nil, err
	}

	return &engine{cfg: cfg, reg: reg, log: log}, nil
}

func (e *engine) close() {
	e.log.Close()
	e.reg.Close()
}

func (e *engine) gateway(inv gateway.Invoker) *gateway.Gateway {
	return gateway.New(e.cfg, e.reg, inv, e.log)
}

// parseCall builds a CandidateCall from command flags: target program,
// hex instruction data, and account specs.
func parseCall(target, dataHex string, accountSpecs []string) (model.CandidateCall, error) {
	var call model.CandidateCall

	programID, err := solana.PublicKeyFromBase58(target)
	if err != nil {
		return call, fmt.Errorf("invalid target program %q: %w", target, err)
	}
	call.ProgramID = programID

	if dataHex != "" {
		if call.Data, err = hex.DecodeString(dataHex); err != nil {
			return call, fmt.Errorf("instruction data is not hex: %w", err)
		}
	}

	for _, spec := range accountSpecs {
		acct, err := parseAccount(spec)
		if err != nil {
			return call, err
		}
		call.Accounts = append(call.Accounts, acct)
	}
	return call, nil
}

// parseAccount parses "pubkey[:flags]" where flags is any combination
// of 's' (signer) and 'w' (writable).
func parseAccount(spec string) (model.CallAccount, error) {
	var acct model.CallAccount

	key, flags, _ := strings.Cut(spec, ":")
	pubkey, err := solana.PublicKeyFromBase58(key)
	if err != nil {
		return acct, fmt.Errorf("invalid account %q: %w", key, err)
	}
	acct.Pubkey = pubkey

	for _, f := range flags {
		switch f {
		case 's':
			acct.IsSigner = true
		case 'w':
			acct.IsWritable = true
		default:
			return acct, fmt.Errorf("invalid account flag %q in %q (use s, w)", string(f), spec)
		}
	}
	return acct, nil
}

func loadTemplate(path string) (operator.Program, error) {
	if path == "" {
		return nil, fmt.Errorf("--template is required")
	}
	return operator.LoadTemplate(path)
}
