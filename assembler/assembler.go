package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"rv32asm/isa"
)

// Assembler holds the state for one assembly run.
type Assembler struct {
	tokens  []Token
	symbols map[string]uint32
	words   []uint32
	pc      uint32
}

// New creates a new Assembler instance.
func New() *Assembler {
	return &Assembler{
		symbols: make(map[string]uint32),
	}
}

// Assemble translates RV32 assembly source into machine words, one per
// emitted instruction, in program order.
func (asm *Assembler) Assemble(src string) ([]uint32, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	asm.tokens = tokens

	if err := asm.pass1(); err != nil {
		return nil, err
	}
	if err := asm.pass2(); err != nil {
		return nil, err
	}
	return asm.words, nil
}

// Symbols returns the label table built by the first pass.
func (asm *Assembler) Symbols() map[string]uint32 {
	return asm.symbols
}

// pass1 walks the token sequence once to record every label's address.
// No instructions are emitted.
func (asm *Assembler) pass1() error {
	glog.V(1).Info("pass 1: symbol resolution")
	asm.pc = 0

	for i := 0; i < len(asm.tokens); i++ {
		tok := asm.tokens[i]
		switch tok.Kind {
		case TokenLabel:
			if _, ok := asm.symbols[tok.Text]; ok {
				return fmt.Errorf("%w: %s on line %d", ErrDuplicateLabel, tok.Text, tok.Line)
			}
			asm.symbols[tok.Text] = asm.pc
			glog.V(2).Infof("label %s = %08x", tok.Text, asm.pc)

		case TokenMnemonic:
			asm.pc += 4
			// Operand shape only matters in pass 2; skip to the next statement.
			for i+1 < len(asm.tokens) && !startsStatement(asm.tokens[i+1].Kind) {
				i++
			}
			// A branch or jump ends in a label reference, which lexes as a
			// mnemonic. Consume it here or it would count as an instruction
			// and break the PC agreement between the passes.
			if def, ok := isa.Lookup(tok.Text); ok && takesTarget(def.Format) {
				if i+1 < len(asm.tokens) && asm.tokens[i+1].Kind == TokenMnemonic {
					i++
				}
			}

		case TokenDirective:
			n, err := asm.applyDirective(i)
			if err != nil {
				return err
			}
			i = n
		}
	}
	return nil
}

// pass2 re-walks the token sequence and encodes each instruction. The PC
// must follow the exact trajectory pass 1 saw, or label offsets recorded
// there would be wrong here.
func (asm *Assembler) pass2() error {
	glog.V(1).Info("pass 2: binary generation")
	asm.pc = 0
	asm.words = asm.words[:0]

	for i := 0; i < len(asm.tokens); i++ {
		tok := asm.tokens[i]
		switch tok.Kind {
		case TokenLabel:
			// Already resolved in pass 1.

		case TokenDirective:
			n, err := asm.applyDirective(i)
			if err != nil {
				return err
			}
			i = n

		case TokenMnemonic:
			n, word, err := asm.encode(i)
			if err != nil {
				return err
			}
			i = n
			asm.words = append(asm.words, word)
			glog.V(2).Infof("emit %08x at %08x", word, asm.pc)
			asm.pc += 4

		default:
			// Operands of reserved directives; nothing to emit.
		}
	}
	return nil
}

// applyDirective handles the directive at index i in both passes and
// returns the index of the last token it consumed. .org overwrites the PC;
// anything else is reserved and leaves it alone.
func (asm *Assembler) applyDirective(i int) (int, error) {
	tok := asm.tokens[i]
	if !strings.EqualFold(tok.Text, ".org") {
		return i, nil
	}
	if i+1 >= len(asm.tokens) || asm.tokens[i+1].Kind != TokenImmediate {
		return i, fmt.Errorf("%w: .org needs an address on line %d", ErrBadOperand, tok.Line)
	}
	val, err := parseImmediate(asm.tokens[i+1].Text)
	if err != nil {
		return i, fmt.Errorf("%w: %q on line %d", ErrBadOperand, asm.tokens[i+1].Text, tok.Line)
	}
	asm.pc = uint32(val)
	return i + 1, nil
}

// startsStatement reports whether a token kind begins a new statement
// rather than continuing the current instruction's operands.
func startsStatement(k TokenKind) bool {
	return k == TokenMnemonic || k == TokenLabel || k == TokenDirective
}

// takesTarget reports whether a format's last operand is a label reference.
func takesTarget(f isa.Format) bool {
	return f == isa.FormatB || f == isa.FormatJ
}

// parseImmediate accepts an optional sign and a decimal or 0x-prefixed
// hexadecimal literal.
func parseImmediate(s string) (int64, error) {
	return strconv.ParseInt(s, 0, 64)
}
