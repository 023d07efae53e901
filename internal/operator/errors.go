package operator

import "errors"

// Validation errors: the program or call shape is malformed.
var (
	ErrDataOutOfBounds         = errors.New("instruction data range out of bounds")
	ErrAccountIndexOutOfBounds = errors.New("account index out of bounds")
	ErrProgramTooLong          = errors.New("operator program too long")
	ErrDataTooLarge            = errors.New("instruction data exceeds size limit")
	ErrUnknownOperator         = errors.New("unknown operator tag")
	ErrTruncatedProgram        = errors.New("truncated operator encoding")
	ErrBadAssertWidth          = errors.New("unsupported assert width")
)

// Assertion errors: a pinned value did not match the live call.
var (
	ErrAssertionFailed = errors.New("pinned bytes do not match")
	ErrSizeMismatch    = errors.New("instruction data size mismatch")
)
