package config

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

const rotatedStrategist = "SysvarC1ock11111111111111111111111111111111"

func TestReloadRotatesStrategist(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rotated := strings.Replace(sampleConfig, "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T", rotatedStrategist, 1)
	if err := os.WriteFile(path, []byte(rotated), 0600); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Reload(path); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	v, ok := cfg.Vault(1)
	if !ok {
		t.Fatal("vault 1 missing after reload")
	}
	if v.Strategist.String() != rotatedStrategist {
		t.Errorf("strategist not rotated, got %s", v.Strategist)
	}
}

func TestReloadRejectsProgramIDChange(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	swapped := strings.Replace(sampleConfig,
		"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		"ComputeBudget111111111111111111111111111111", 1)
	if err := os.WriteFile(path, []byte(swapped), 0600); err != nil {
		t.Fatal(err)
	}

	if err := cfg.Reload(path); err == nil {
		t.Error("expected error for program_id change")
	}
	// The old vault set must survive a rejected reload.
	if _, ok := cfg.Vault(1); !ok {
		t.Error("vault 1 lost after rejected reload")
	}
}

func TestReloadKeepsVaultsOnInvalidFile(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("{{{"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Reload(path); err == nil {
		t.Error("expected error for invalid config")
	}
	if len(cfg.Vaults()) != 2 {
		t.Errorf("expected 2 vaults after failed reload, got %d", len(cfg.Vaults()))
	}
}

func TestReloaderPicksUpPause(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	r, err := NewReloader(cfg, path)
	if err != nil {
		t.Fatalf("NewReloader failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// Pause vault 1 out-of-band, as the admin would.
	paused := strings.Replace(sampleConfig,
		"strategist: \"4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T\"\n  - vault_id: 2",
		"strategist: \"4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T\"\n    paused: true\n  - vault_id: 2", 1)
	if err := os.WriteFile(path, []byte(paused), 0600); err != nil {
		t.Fatal(err)
	}

	// The 500ms debounce plus inotify delivery. Poll rather than
	// sleeping a fixed amount.
	deadline := time.After(5 * time.Second)
	for {
		v, ok := cfg.Vault(1)
		if ok && v.Paused {
			break
		}
		select {
		case <-deadline:
			t.Fatal("reloader never picked up the pause")
		case <-time.After(50 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Run did not stop after cancellation")
	}
}
