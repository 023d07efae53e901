package operator

import (
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/ppiankov/vaultgate/internal/model"
)

func BenchmarkEvaluate(b *testing.B) {
	p := Program{
		AssertSize{Expected: 64},
		AssertBytes{Start: 0, Expected: []byte{0x0E, 0x01, 0x02, 0x03}},
		IngestInstruction{Start: 0, Len: 32},
		IngestAccount{Index: 0},
		IngestAccount{Index: 1},
	}
	data := make([]byte, 64)
	data[0], data[1], data[2], data[3] = 0x0E, 0x01, 0x02, 0x03

	call := model.CandidateCall{
		ProgramID: solana.TokenProgramID,
		Data:      data,
		Accounts: []model.CallAccount{
			{Pubkey: solana.SystemProgramID, IsWritable: true},
			{Pubkey: solana.SysVarRentPubkey},
		},
	}

	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(p, call); err != nil {
			b.Fatal(err)
		}
	}
}
