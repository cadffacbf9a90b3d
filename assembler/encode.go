package assembler

import (
	"fmt"

	"rv32asm/isa"
)

// pack masks val to width bits, zero-extending, and shifts it to offset.
// Instruction words are built by OR-ing packed fields together.
func pack(val uint32, offset, width uint) uint32 {
	if width >= 32 {
		return val << offset
	}
	return (val & (1<<width - 1)) << offset
}

// fitsSigned reports whether v fits in a signed field of the given width.
func fitsSigned(v int64, width uint) bool {
	min := -(int64(1) << (width - 1))
	max := int64(1)<<(width-1) - 1
	return v >= min && v <= max
}

// cursor consumes operand tokens following a mnemonic.
type cursor struct {
	tokens []Token
	idx    int
}

func (c *cursor) next() (Token, error) {
	if c.idx+1 >= len(c.tokens) {
		last := c.tokens[c.idx]
		return Token{}, fmt.Errorf("%w after %q on line %d", ErrUnexpectedEOF, last.Text, last.Line)
	}
	c.idx++
	return c.tokens[c.idx], nil
}

func (c *cursor) register() (uint32, error) {
	tok, err := c.next()
	if err != nil {
		return 0, err
	}
	reg, ok := isa.LookupRegister(tok.Text)
	if !ok {
		return 0, fmt.Errorf("%w: expected register, got %q on line %d", ErrBadOperand, tok.Text, tok.Line)
	}
	return reg, nil
}

func (c *cursor) immediate() (int64, error) {
	tok, err := c.next()
	if err != nil {
		return 0, err
	}
	if tok.Kind != TokenImmediate {
		return 0, fmt.Errorf("%w: expected immediate, got %q on line %d", ErrBadOperand, tok.Text, tok.Line)
	}
	val, err := parseImmediate(tok.Text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q on line %d", ErrBadOperand, tok.Text, tok.Line)
	}
	return val, nil
}

// label returns the token naming a branch or jump target. Bare words lex
// as mnemonics, so that is the kind expected here.
func (c *cursor) label() (Token, error) {
	tok, err := c.next()
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != TokenMnemonic {
		return Token{}, fmt.Errorf("%w: expected label, got %q on line %d", ErrBadOperand, tok.Text, tok.Line)
	}
	return tok, nil
}

func (c *cursor) expect(kind TokenKind, what string) error {
	tok, err := c.next()
	if err != nil {
		return err
	}
	if tok.Kind != kind {
		return fmt.Errorf("%w: expected %s, got %q on line %d", ErrBadOperand, what, tok.Text, tok.Line)
	}
	return nil
}

// encode assembles the instruction whose mnemonic sits at index i and
// returns the index of the last operand token consumed plus the word.
func (asm *Assembler) encode(i int) (int, uint32, error) {
	tok := asm.tokens[i]
	def, ok := isa.Lookup(tok.Text)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s on line %d", ErrUnknownInstruction, tok.Text, tok.Line)
	}

	cur := &cursor{tokens: asm.tokens, idx: i}
	var word uint32
	var err error
	switch def.Format {
	case isa.FormatPseudo:
		word, err = asm.encodePseudo(tok, cur)
	case isa.FormatR:
		word, err = asm.encodeR(def, cur)
	case isa.FormatI:
		word, err = asm.encodeI(tok, def, cur)
	case isa.FormatS:
		word, err = asm.encodeS(tok, def, cur)
	case isa.FormatB:
		word, err = asm.encodeB(def, cur)
	case isa.FormatU:
		word, err = asm.encodeU(tok, def, cur)
	case isa.FormatJ:
		word, err = asm.encodeJ(def, cur)
	}
	if err != nil {
		return 0, 0, err
	}
	return cur.idx, word, nil
}

// encodeR handles "op rd, rs1, rs2".
func (asm *Assembler) encodeR(def isa.InstructionDef, cur *cursor) (uint32, error) {
	rd, err := cur.register()
	if err != nil {
		return 0, err
	}
	if err = cur.expect(TokenComma, "','"); err != nil {
		return 0, err
	}
	rs1, err := cur.register()
	if err != nil {
		return 0, err
	}
	if err = cur.expect(TokenComma, "','"); err != nil {
		return 0, err
	}
	rs2, err := cur.register()
	if err != nil {
		return 0, err
	}
	return pack(def.Opcode, 0, 7) | pack(rd, 7, 5) | pack(def.Funct3, 12, 3) |
		pack(rs1, 15, 5) | pack(rs2, 20, 5) | pack(def.Funct7, 25, 7), nil
}

// encodeI handles both "op rd, rs1, imm" and the load form "op rd, imm(rs1)".
func (asm *Assembler) encodeI(tok Token, def isa.InstructionDef, cur *cursor) (uint32, error) {
	rd, err := cur.register()
	if err != nil {
		return 0, err
	}
	if err = cur.expect(TokenComma, "','"); err != nil {
		return 0, err
	}

	var rs1 uint32
	var imm int64
	if def.Opcode == isa.OpcodeLoad {
		imm, err = cur.immediate()
		if err != nil {
			return 0, err
		}
		if err = cur.expect(TokenLParen, "'('"); err != nil {
			return 0, err
		}
		rs1, err = cur.register()
		if err != nil {
			return 0, err
		}
		if err = cur.expect(TokenRParen, "')'"); err != nil {
			return 0, err
		}
	} else {
		rs1, err = cur.register()
		if err != nil {
			return 0, err
		}
		if err = cur.expect(TokenComma, "','"); err != nil {
			return 0, err
		}
		imm, err = cur.immediate()
		if err != nil {
			return 0, err
		}
	}

	if !fitsSigned(imm, 12) {
		return 0, fmt.Errorf("%w: %d does not fit in 12 bits on line %d", ErrImmediateRange, imm, tok.Line)
	}
	return pack(def.Opcode, 0, 7) | pack(rd, 7, 5) | pack(def.Funct3, 12, 3) |
		pack(rs1, 15, 5) | pack(uint32(imm), 20, 12), nil
}

// encodeS handles "op rs2, imm(rs1)". The immediate is split across the
// two discontiguous S-format fields.
func (asm *Assembler) encodeS(tok Token, def isa.InstructionDef, cur *cursor) (uint32, error) {
	rs2, err := cur.register()
	if err != nil {
		return 0, err
	}
	if err = cur.expect(TokenComma, "','"); err != nil {
		return 0, err
	}
	imm, err := cur.immediate()
	if err != nil {
		return 0, err
	}
	if err = cur.expect(TokenLParen, "'('"); err != nil {
		return 0, err
	}
	rs1, err := cur.register()
	if err != nil {
		return 0, err
	}
	if err = cur.expect(TokenRParen, "')'"); err != nil {
		return 0, err
	}

	if !fitsSigned(imm, 12) {
		return 0, fmt.Errorf("%w: %d does not fit in 12 bits on line %d", ErrImmediateRange, imm, tok.Line)
	}
	immLow := uint32(imm) & 0x1F
	immHigh := (uint32(imm) >> 5) & 0x7F
	return pack(def.Opcode, 0, 7) | pack(immLow, 7, 5) | pack(def.Funct3, 12, 3) |
		pack(rs1, 15, 5) | pack(rs2, 20, 5) | pack(immHigh, 25, 7), nil
}

// encodeB handles "op rs1, rs2, label". The half-word-granular offset is
// split across the discontinuous B-format immediate slots.
func (asm *Assembler) encodeB(def isa.InstructionDef, cur *cursor) (uint32, error) {
	rs1, err := cur.register()
	if err != nil {
		return 0, err
	}
	if err = cur.expect(TokenComma, "','"); err != nil {
		return 0, err
	}
	rs2, err := cur.register()
	if err != nil {
		return 0, err
	}
	if err = cur.expect(TokenComma, "','"); err != nil {
		return 0, err
	}
	target, err := cur.label()
	if err != nil {
		return 0, err
	}

	offset, err := asm.resolveOffset(target)
	if err != nil {
		return 0, err
	}
	if !fitsSigned(offset, 13) {
		return 0, fmt.Errorf("%w: branch of %d bytes on line %d", ErrImmediateRange, offset, target.Line)
	}

	imm := uint32(offset>>1) & 0xFFF
	imm12 := (imm >> 11) & 0x1
	imm11 := (imm >> 10) & 0x1
	imm10_5 := (imm >> 5) & 0x3F
	imm4_1 := (imm >> 1) & 0xF

	return pack(def.Opcode, 0, 7) | pack(imm11, 7, 1) | pack(imm4_1, 8, 4) |
		pack(def.Funct3, 12, 3) | pack(rs1, 15, 5) | pack(rs2, 20, 5) |
		pack(imm10_5, 25, 6) | pack(imm12, 31, 1), nil
}

// encodeU handles "op rd, imm" with a 20-bit upper immediate.
func (asm *Assembler) encodeU(tok Token, def isa.InstructionDef, cur *cursor) (uint32, error) {
	rd, err := cur.register()
	if err != nil {
		return 0, err
	}
	if err = cur.expect(TokenComma, "','"); err != nil {
		return 0, err
	}
	imm, err := cur.immediate()
	if err != nil {
		return 0, err
	}

	if imm < 0 || imm > 0xFFFFF {
		return 0, fmt.Errorf("%w: %d does not fit in 20 bits on line %d", ErrImmediateRange, imm, tok.Line)
	}
	return pack(def.Opcode, 0, 7) | pack(rd, 7, 5) | pack(uint32(imm), 12, 20), nil
}

// encodeJ handles "op rd, label", split like B but over 20 bits.
func (asm *Assembler) encodeJ(def isa.InstructionDef, cur *cursor) (uint32, error) {
	rd, err := cur.register()
	if err != nil {
		return 0, err
	}
	if err = cur.expect(TokenComma, "','"); err != nil {
		return 0, err
	}
	target, err := cur.label()
	if err != nil {
		return 0, err
	}

	offset, err := asm.resolveOffset(target)
	if err != nil {
		return 0, err
	}
	if !fitsSigned(offset, 21) {
		return 0, fmt.Errorf("%w: jump of %d bytes on line %d", ErrImmediateRange, offset, target.Line)
	}

	imm := uint32(offset>>1) & 0xFFFFF
	imm20 := (imm >> 19) & 0x1
	imm19_12 := (imm >> 11) & 0xFF
	imm11 := (imm >> 10) & 0x1
	imm10_1 := imm & 0x3FF

	return pack(def.Opcode, 0, 7) | pack(rd, 7, 5) | pack(imm19_12, 12, 8) |
		pack(imm11, 20, 1) | pack(imm10_1, 21, 10) | pack(imm20, 31, 1), nil
}

// encodePseudo expands a pseudo-instruction through its table entry and
// encodes the base instruction with the fixed immediate.
func (asm *Assembler) encodePseudo(tok Token, cur *cursor) (uint32, error) {
	pseudo, ok := isa.LookupPseudo(tok.Text)
	if !ok {
		return 0, fmt.Errorf("%w: %s on line %d", ErrUnknownInstruction, tok.Text, tok.Line)
	}
	base, ok := isa.Lookup(pseudo.Base)
	if !ok {
		return 0, fmt.Errorf("%w: %s expands to %s on line %d", ErrUnknownInstruction, tok.Text, pseudo.Base, tok.Line)
	}

	var rd, rs1 uint32
	if pseudo.Regs == 2 {
		var err error
		rd, err = cur.register()
		if err != nil {
			return 0, err
		}
		if err = cur.expect(TokenComma, "','"); err != nil {
			return 0, err
		}
		rs1, err = cur.register()
		if err != nil {
			return 0, err
		}
	}

	return pack(base.Opcode, 0, 7) | pack(rd, 7, 5) | pack(base.Funct3, 12, 3) |
		pack(rs1, 15, 5) | pack(uint32(pseudo.Imm), 20, 12), nil
}

// resolveOffset looks up a branch/jump target and returns the signed byte
// distance from the instruction being encoded. Odd distances are fatal.
func (asm *Assembler) resolveOffset(target Token) (int64, error) {
	addr, ok := asm.symbols[target.Text]
	if !ok {
		return 0, fmt.Errorf("%w: %s on line %d", ErrUndefinedLabel, target.Text, target.Line)
	}
	offset := int64(int32(addr - asm.pc))
	if offset%2 != 0 {
		return 0, fmt.Errorf("%w: %d bytes to %s on line %d", ErrMisalignedOffset, offset, target.Text, target.Line)
	}
	return offset, nil
}
