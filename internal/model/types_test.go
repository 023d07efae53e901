package model

import (
	"strings"
	"testing"
)

func TestParseDigestRoundTrip(t *testing.T) {
	var d Digest
	for i := range d {
		d[i] = byte(i)
	}

	parsed, err := ParseDigest(d.Hex())
	if err != nil {
		t.Fatalf("ParseDigest failed: %v", err)
	}
	if parsed != d {
		t.Errorf("round trip mismatch: %s != %s", parsed, d)
	}
}

func TestParseDigestRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short", "deadbeef"},
		{"long", strings.Repeat("ab", 33)},
		{"not_hex", strings.Repeat("zz", 32)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseDigest(tc.input); err == nil {
				t.Errorf("expected error for %q", tc.input)
			}
		})
	}
}

func TestScopeKey(t *testing.T) {
	s := Scope{VaultID: 42, SubAccount: 3}
	if s.Key() != "42.3" {
		t.Errorf("expected key 42.3, got %s", s.Key())
	}
	if s.String() != "vault 42 sub 3" {
		t.Errorf("unexpected String: %s", s.String())
	}
}
