package operator

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// templateOp is the YAML form of one operator. Admins author templates
// by hand, so the format favors readability over compactness.
type templateOp struct {
	Op       string `yaml:"op"`
	Start    uint16 `yaml:"start,omitempty"`
	Len      uint16 `yaml:"len,omitempty"`
	Index    uint8  `yaml:"index,omitempty"`
	Expected string `yaml:"expected,omitempty"` // hex
	Size     uint16 `yaml:"size,omitempty"`
}

type templateFile struct {
	Operators []templateOp `yaml:"operators"`
}

// ParseTemplate decodes a YAML operator template into a Program.
func ParseTemplate(data []byte) (Program, error) {
	var tf templateFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	var p Program
	for i, op := range tf.Operators {
		parsed, err := parseTemplateOp(op)
		if err != nil {
			return nil, fmt.Errorf("template operator %d: %w", i, err)
		}
		p = append(p, parsed)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadTemplate reads and parses a template file.
func LoadTemplate(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return ParseTemplate(data)
}

// MarshalTemplate renders a Program back to its YAML template form.
func MarshalTemplate(p Program) ([]byte, error) {
	tf := templateFile{}
	for _, op := range p {
		tf.Operators = append(tf.Operators, templateOpFrom(op))
	}
	return yaml.Marshal(tf)
}

func parseTemplateOp(op templateOp) (Operator, error) {
	switch op.Op {
	case "noop":
		return Noop{}, nil
	case "ingest_instruction":
		return IngestInstruction{Start: op.Start, Len: op.Len}, nil
	case "ingest_account":
		return IngestAccount{Index: op.Index}, nil
	case "assert_bytes":
		expected, err := hex.DecodeString(op.Expected)
		if err != nil {
			return nil, fmt.Errorf("expected value is not hex: %w", err)
		}
		if _, ok := assertWidths[len(expected)]; !ok {
			return nil, fmt.Errorf("%w: %d bytes", ErrBadAssertWidth, len(expected))
		}
		return AssertBytes{Start: op.Start, Expected: expected}, nil
	case "assert_size":
		return AssertSize{Expected: op.Size}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", op.Op)
	}
}

func templateOpFrom(op Operator) templateOp {
	switch o := op.(type) {
	case Noop:
		return templateOp{Op: "noop"}
	case IngestInstruction:
		return templateOp{Op: "ingest_instruction", Start: o.Start, Len: o.Len}
	case IngestAccount:
		return templateOp{Op: "ingest_account", Index: o.Index}
	case AssertBytes:
		return templateOp{Op: "assert_bytes", Start: o.Start, Expected: hex.EncodeToString(o.Expected)}
	case AssertSize:
		return templateOp{Op: "assert_size", Size: o.Expected}
	default:
		// Unreachable while the operator set stays closed.
		return templateOp{Op: "noop"}
	}
}
