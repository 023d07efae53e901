package operator

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Wire tags for the canonical operator encoding. The encoding is part
// of the digest: the same call under a different operator program must
// produce a different digest.
const (
	tagNoop byte = iota
	tagIngestInstruction
	tagIngestAccount
	tagAssertBytes1
	tagAssertBytes2
	tagAssertBytes4
	tagAssertBytes8
	tagAssertBytes32
	tagAssertSize
)

const (
	// MaxOperators bounds the program length so evaluation stays
	// inside a fixed compute budget.
	MaxOperators = 64

	// MaxDataLen bounds candidate instruction data.
	MaxDataLen = 4096
)

// assertWidths are the only accepted AssertBytes expected-value sizes.
var assertWidths = map[int]byte{
	1:  tagAssertBytes1,
	2:  tagAssertBytes2,
	4:  tagAssertBytes4,
	8:  tagAssertBytes8,
	32: tagAssertBytes32,
}

// Operator is one step of the authorization program: either it folds
// bytes of the candidate call into the digest (Ingest*) or it performs
// an immediate equality check (Assert*). The set is closed; every
// variant lives in this file and implements both encodeTo and apply.
type Operator interface {
	encodeTo(buf *bytes.Buffer)
	apply(st *evalState) error
}

// Noop does nothing. It documents a field the admin intentionally left
// unchecked and unhashed.
type Noop struct{}

// IngestInstruction folds Data[Start:Start+Len] into the digest.
type IngestInstruction struct {
	Start uint16
	Len   uint16
}

// IngestAccount folds the account at Index into the digest: its pubkey
// followed by the signer and writable flags.
type IngestAccount struct {
	Index uint8
}

// AssertBytes compares Data[Start:Start+len(Expected)] against
// Expected. It contributes nothing to the digest. The expected value
// must be exactly 1, 2, 4, 8, or 32 bytes long.
type AssertBytes struct {
	Start    uint16
	Expected []byte
}

// AssertSize pins the total instruction data length. It closes the
// append/truncate bypass: fixed-range operators alone cannot detect
// extra trailing bytes.
type AssertSize struct {
	Expected uint16
}

func (Noop) encodeTo(buf *bytes.Buffer) {
	buf.WriteByte(tagNoop)
}

func (o IngestInstruction) encodeTo(buf *bytes.Buffer) {
	buf.WriteByte(tagIngestInstruction)
	var u [2]byte
	binary.LittleEndian.PutUint16(u[:], o.Start)
	buf.Write(u[:])
	binary.LittleEndian.PutUint16(u[:], o.Len)
	buf.Write(u[:])
}

func (o IngestAccount) encodeTo(buf *bytes.Buffer) {
	buf.WriteByte(tagIngestAccount)
	buf.WriteByte(o.Index)
}

func (o AssertBytes) encodeTo(buf *bytes.Buffer) {
	buf.WriteByte(assertWidths[len(o.Expected)])
	var u [2]byte
	binary.LittleEndian.PutUint16(u[:], o.Start)
	buf.Write(u[:])
	buf.Write(o.Expected)
}

func (o AssertSize) encodeTo(buf *bytes.Buffer) {
	buf.WriteByte(tagAssertSize)
	var u [2]byte
	binary.LittleEndian.PutUint16(u[:], o.Expected)
	buf.Write(u[:])
}

// Program is an ordered operator list, supplied identically at preview
// and at execution.
type Program []Operator

// Validate rejects programs that cannot be evaluated: too long, or
// containing an AssertBytes with an unsupported width.
func (p Program) Validate() error {
	if len(p) > MaxOperators {
		return fmt.Errorf("%w: %d operators, max %d", ErrProgramTooLong, len(p), MaxOperators)
	}
	for i, op := range p {
		if ab, ok := op.(AssertBytes); ok {
			if _, ok := assertWidths[len(ab.Expected)]; !ok {
				return fmt.Errorf("operator %d: %w: %d bytes", i, ErrBadAssertWidth, len(ab.Expected))
			}
		}
	}
	return nil
}

// Encode returns the canonical binary encoding of the program.
func (p Program) Encode() []byte {
	var buf bytes.Buffer
	for _, op := range p {
		op.encodeTo(&buf)
	}
	return buf.Bytes()
}

// Decode parses a canonical encoding back into a Program. Unknown tags
// and truncated payloads are rejected, never skipped.
func Decode(b []byte) (Program, error) {
	var p Program
	r := bytes.NewReader(b)
	for r.Len() > 0 {
		tag, _ := r.ReadByte()
		op, err := decodeOne(tag, r)
		if err != nil {
			return nil, fmt.Errorf("operator %d: %w", len(p), err)
		}
		p = append(p, op)
		if len(p) > MaxOperators {
			return nil, ErrProgramTooLong
		}
	}
	return p, nil
}

func decodeOne(tag byte, r *bytes.Reader) (Operator, error) {
	switch tag {
	case tagNoop:
		return Noop{}, nil
	case tagIngestInstruction:
		start, err := readU16(r)
		if err != nil {
			return nil, err
		}
		length, err := readU16(r)
		if err != nil {
			return nil, err
		}
		return IngestInstruction{Start: start, Len: length}, nil
	case tagIngestAccount:
		idx, err := r.ReadByte()
		if err != nil {
			return nil, ErrTruncatedProgram
		}
		return IngestAccount{Index: idx}, nil
	case tagAssertBytes1, tagAssertBytes2, tagAssertBytes4, tagAssertBytes8, tagAssertBytes32:
		start, err := readU16(r)
		if err != nil {
			return nil, err
		}
		width := assertTagWidth(tag)
		expected := make([]byte, width)
		if _, err := io.ReadFull(r, expected); err != nil {
			return nil, ErrTruncatedProgram
		}
		return AssertBytes{Start: start, Expected: expected}, nil
	case tagAssertSize:
		expected, err := readU16(r)
		if err != nil {
			return nil, err
		}
		return AssertSize{Expected: expected}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownOperator, tag)
	}
}

func assertTagWidth(tag byte) int {
	for w, t := range assertWidths {
		if t == tag {
			return w
		}
	}
	return 0
}

func readU16(r *bytes.Reader) (uint16, error) {
	var u [2]byte
	if n, _ := r.Read(u[:]); n != 2 {
		return 0, ErrTruncatedProgram
	}
	return binary.LittleEndian.Uint16(u[:]), nil
}
