package operator

import (
	"crypto/sha256"
	"hash"

	"github.com/ppiankov/vaultgate/internal/model"
)

// Hasher folds ingested bytes into a running digest. The interpreter
// takes it as a parameter so tests can substitute a recording stub and
// assert exactly which bytes were folded in which order.
type Hasher interface {
	Write(p []byte)
	Sum() model.Digest
}

type sha256Hasher struct {
	h hash.Hash
}

// NewSHA256 returns the production hasher.
func NewSHA256() Hasher {
	return &sha256Hasher{h: sha256.New()}
}

func (s *sha256Hasher) Write(p []byte) {
	s.h.Write(p)
}

func (s *sha256Hasher) Sum() model.Digest {
	var d model.Digest
	copy(d[:], s.h.Sum(nil))
	return d
}
