package audit

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testEntry(op, outcome string) Entry {
	return Entry{
		Op:         op,
		Actor:      "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		VaultID:    1,
		SubAccount: 0,
		Digest:     strings.Repeat("ab", 32),
		Outcome:    outcome,
	}
}

func TestRecordAndVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	entries := []Entry{
		testEntry(OpRegister, "ok"),
		testEntry(OpManage, "ok"),
		testEntry(OpManage, "digest_not_approved"),
		testEntry(OpRevoke, "ok"),
	}
	for _, e := range entries {
		if err := l.Record(e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	l.Close()

	res := Verify(path)
	if !res.Valid {
		t.Errorf("chain invalid: %s (line %d)", res.Error, res.ErrorLine)
	}
	if res.Lines != len(entries) {
		t.Errorf("expected %d lines, got %d", len(entries), res.Lines)
	}
}

func TestReopenContinuesChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	l.Record(testEntry(OpRegister, "ok"))
	l.Close()

	l, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	l.Record(testEntry(OpManage, "ok"))
	l.Close()

	res := Verify(path)
	if !res.Valid {
		t.Errorf("chain broken across reopen: %s (line %d)", res.Error, res.ErrorLine)
	}
	if res.Lines != 2 {
		t.Errorf("expected 2 lines, got %d", res.Lines)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	l.Record(testEntry(OpRegister, "ok"))
	l.Record(testEntry(OpManage, "ok"))
	l.Record(testEntry(OpRevoke, "ok"))
	l.Close()

	// Rewrite the middle line.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	lines[1] = strings.Replace(lines[1], `"outcome":"ok"`, `"outcome":"denied"`, 1)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	res := Verify(path)
	if res.Valid {
		t.Fatal("tampered chain reported valid")
	}
	if res.ErrorLine != 3 {
		t.Errorf("expected break at line 3, got line %d (%s)", res.ErrorLine, res.Error)
	}
}

func TestVerifyRejectsBadGenesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	line := `{"ts":"2026-01-01T00:00:00.000Z","id":"a-1","op":"register","actor":"x","vault_id":1,"sub_account":0,"outcome":"ok","prev_hash":"sha256:beef"}`
	if err := os.WriteFile(path, []byte(line+"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	res := Verify(path)
	if res.Valid || res.ErrorLine != 1 {
		t.Errorf("expected genesis failure at line 1, got %+v", res)
	}
}

func TestRecordFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Record(testEntry(OpPreview, "ok")); err != nil {
		t.Fatal(err)
	}
	l.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("empty log")
	}
	line := scanner.Text()
	if !strings.Contains(line, `"id":"a-`) {
		t.Errorf("entry id not filled: %s", line)
	}
	if !strings.Contains(line, `"ts":"`) {
		t.Errorf("timestamp not filled: %s", line)
	}
}
