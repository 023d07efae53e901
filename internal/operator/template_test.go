package operator

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const sampleTemplate = `
operators:
  - op: assert_size
    size: 10
  - op: assert_bytes
    start: 0
    expected: "0e"
  - op: ingest_instruction
    start: 0
    len: 1
  - op: ingest_account
    index: 0
  - op: noop
`

func TestParseTemplate(t *testing.T) {
	p, err := ParseTemplate([]byte(sampleTemplate))
	if err != nil {
		t.Fatalf("ParseTemplate failed: %v", err)
	}
	if len(p) != 5 {
		t.Fatalf("expected 5 operators, got %d", len(p))
	}

	if op, ok := p[0].(AssertSize); !ok || op.Expected != 10 {
		t.Errorf("operator 0: expected AssertSize{10}, got %#v", p[0])
	}
	if op, ok := p[1].(AssertBytes); !ok || op.Start != 0 || !bytes.Equal(op.Expected, []byte{0x0E}) {
		t.Errorf("operator 1: expected AssertBytes{0, 0e}, got %#v", p[1])
	}
	if op, ok := p[2].(IngestInstruction); !ok || op.Start != 0 || op.Len != 1 {
		t.Errorf("operator 2: expected IngestInstruction{0,1}, got %#v", p[2])
	}
	if op, ok := p[3].(IngestAccount); !ok || op.Index != 0 {
		t.Errorf("operator 3: expected IngestAccount{0}, got %#v", p[3])
	}
	if _, ok := p[4].(Noop); !ok {
		t.Errorf("operator 4: expected Noop, got %#v", p[4])
	}
}

func TestParseTemplateRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown_op", "operators:\n  - op: ingest_everything\n"},
		{"bad_hex", "operators:\n  - op: assert_bytes\n    expected: xyz\n"},
		{"bad_width", "operators:\n  - op: assert_bytes\n    expected: \"010203\"\n"},
		{"not_yaml", "{{{"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseTemplate([]byte(tc.body)); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	p, err := ParseTemplate([]byte(sampleTemplate))
	if err != nil {
		t.Fatalf("ParseTemplate failed: %v", err)
	}

	out, err := MarshalTemplate(p)
	if err != nil {
		t.Fatalf("MarshalTemplate failed: %v", err)
	}

	again, err := ParseTemplate(out)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if !bytes.Equal(again.Encode(), p.Encode()) {
		t.Error("round trip changed the canonical encoding")
	}
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.yaml")
	if err := os.WriteFile(path, []byte(sampleTemplate), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate failed: %v", err)
	}
	if len(p) != 5 {
		t.Errorf("expected 5 operators, got %d", len(p))
	}

	if _, err := LoadTemplate(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
