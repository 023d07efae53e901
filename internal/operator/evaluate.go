package operator

import (
	"bytes"
	"fmt"

	"github.com/ppiankov/vaultgate/internal/model"
)

type evalState struct {
	call model.CandidateCall
	h    Hasher
}

// Evaluate runs the program against the candidate call and returns the
// resulting digest, or the first error in program order. Evaluation is
// pure: identical inputs always yield an identical digest.
func Evaluate(p Program, call model.CandidateCall) (model.Digest, error) {
	return EvaluateWith(NewSHA256(), p, call)
}

// EvaluateWith is Evaluate with an explicit hash strategy.
//
// Fold order: target program id, then each operator's contribution in
// program order, then the canonical encoding of the program itself.
// Binding the program means a registered digest pins not just the call
// bytes but the exact checks that were approved against them.
func EvaluateWith(h Hasher, p Program, call model.CandidateCall) (model.Digest, error) {
	var zero model.Digest

	if err := p.Validate(); err != nil {
		return zero, err
	}
	if len(call.Data) > MaxDataLen {
		return zero, fmt.Errorf("%w: %d bytes, max %d", ErrDataTooLarge, len(call.Data), MaxDataLen)
	}

	h.Write(call.ProgramID.Bytes())

	st := &evalState{call: call, h: h}
	for i, op := range p {
		if err := op.apply(st); err != nil {
			return zero, fmt.Errorf("operator %d: %w", i, err)
		}
	}

	h.Write(p.Encode())
	return h.Sum(), nil
}

func (Noop) apply(*evalState) error {
	return nil
}

func (o IngestInstruction) apply(st *evalState) error {
	from, to := int(o.Start), int(o.Start)+int(o.Len)
	if to > len(st.call.Data) {
		return fmt.Errorf("%w: [%d:%d] of %d", ErrDataOutOfBounds, from, to, len(st.call.Data))
	}
	st.h.Write(st.call.Data[from:to])
	return nil
}

func (o IngestAccount) apply(st *evalState) error {
	if int(o.Index) >= len(st.call.Accounts) {
		return fmt.Errorf("%w: index %d of %d accounts", ErrAccountIndexOutOfBounds, o.Index, len(st.call.Accounts))
	}
	acct := st.call.Accounts[o.Index]
	st.h.Write(acct.Pubkey.Bytes())
	st.h.Write([]byte{boolByte(acct.IsSigner), boolByte(acct.IsWritable)})
	return nil
}

func (o AssertBytes) apply(st *evalState) error {
	from, to := int(o.Start), int(o.Start)+len(o.Expected)
	if to > len(st.call.Data) {
		return fmt.Errorf("%w: [%d:%d] of %d", ErrDataOutOfBounds, from, to, len(st.call.Data))
	}
	if !bytes.Equal(st.call.Data[from:to], o.Expected) {
		return fmt.Errorf("%w: at offset %d", ErrAssertionFailed, o.Start)
	}
	return nil
}

func (o AssertSize) apply(st *evalState) error {
	if len(st.call.Data) != int(o.Expected) {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrSizeMismatch, o.Expected, len(st.call.Data))
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
