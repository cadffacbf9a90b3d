package assembler

import (
	"fmt"
	"io"
)

// WriteHex serializes machine words as lower-case hex, zero-padded to
// eight digits, one word per line, in program order. Downstream loaders
// depend on this exact format.
func WriteHex(w io.Writer, words []uint32) error {
	for _, word := range words {
		if _, err := fmt.Fprintf(w, "%08x\n", word); err != nil {
			return err
		}
	}
	return nil
}
