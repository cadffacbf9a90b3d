package assembler

import "errors"

// Assembly failure categories. Every error is fatal; the first one aborts
// the run and no output is produced.
var (
	// ErrUnexpectedChar is returned by the lexer for a character it
	// cannot classify.
	ErrUnexpectedChar = errors.New("unexpected character")
	// ErrDuplicateLabel is returned when a label is defined twice.
	ErrDuplicateLabel = errors.New("duplicate label")
	// ErrUnknownInstruction is returned for a mnemonic missing from the
	// ISA table.
	ErrUnknownInstruction = errors.New("unknown instruction")
	// ErrUndefinedLabel is returned when a branch or jump names a label
	// that was never defined.
	ErrUndefinedLabel = errors.New("undefined label")
	// ErrMisalignedOffset is returned when a branch or jump distance is
	// an odd number of bytes.
	ErrMisalignedOffset = errors.New("misaligned offset")
	// ErrUnexpectedEOF is returned when an instruction's operands run
	// past the end of the source.
	ErrUnexpectedEOF = errors.New("unexpected end of input")
	// ErrBadOperand is returned when a token fails register or immediate
	// resolution.
	ErrBadOperand = errors.New("bad operand")
	// ErrImmediateRange is returned when an immediate does not fit the
	// instruction's field.
	ErrImmediateRange = errors.New("immediate out of range")
)
