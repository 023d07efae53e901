package audit

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Operations recorded in the audit log.
const (
	OpRegister = "register"
	OpRevoke   = "revoke"
	OpPreview  = "preview"
	OpManage   = "manage"
)

// Entry is one line in the hash-chained JSONL audit log. All fields
// are flat strings and integers (no map[string]any) to guarantee
// deterministic json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp  string `json:"ts"`
	ID         string `json:"id"`
	Op         string `json:"op"`
	Actor      string `json:"actor"`
	VaultID    uint64 `json:"vault_id"`
	SubAccount uint8  `json:"sub_account"`
	Digest     string `json:"digest,omitempty"`
	Target     string `json:"target,omitempty"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	PrevHash   string `json:"prev_hash"`
}

// NewEntryID generates a random audit entry id.
func NewEntryID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based ID if crypto/rand fails
		return fmt.Sprintf("a-%x", time.Now().UnixNano())
	}
	return "a-" + hex.EncodeToString(b)
}
