package operator

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/ppiankov/vaultgate/internal/model"
)

// FuzzDecodeEvaluate feeds arbitrary bytes through Decode and, when a
// program survives decoding, evaluates it against arbitrary data. The
// interpreter must reject out-of-range access with an error, never a
// panic or an out-of-bounds read.
func FuzzDecodeEvaluate(f *testing.F) {
	f.Add([]byte{tagIngestInstruction, 0, 0, 4, 0}, []byte{1, 2, 3, 4})
	f.Add([]byte{tagIngestAccount, 0}, []byte{})
	f.Add([]byte{tagAssertSize, 10, 0}, []byte{0x0E})
	f.Add([]byte{0xFF, 0x00}, []byte{0x01})

	f.Fuzz(func(t *testing.T, encoded []byte, data []byte) {
		p, err := Decode(encoded)
		if err != nil {
			return
		}
		if len(data) > MaxDataLen {
			data = data[:MaxDataLen]
		}

		call := model.CandidateCall{
			ProgramID: solana.SystemProgramID,
			Data:      data,
			Accounts: []model.CallAccount{
				{Pubkey: solana.SysVarClockPubkey},
			},
		}

		d1, err1 := Evaluate(p, call)
		d2, err2 := Evaluate(p, call)
		if (err1 == nil) != (err2 == nil) {
			t.Fatalf("non-deterministic outcome: %v vs %v", err1, err2)
		}
		if err1 == nil && d1 != d2 {
			t.Fatalf("non-deterministic digest: %s vs %s", d1, d2)
		}
	})
}
