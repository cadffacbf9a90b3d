package isa

import (
	"fmt"
	"strings"
)

// Format identifies the bit layout of an instruction word.
type Format int

const (
	// FormatR is register-register arithmetic.
	FormatR Format = iota
	// FormatI is register-immediate arithmetic, loads and jalr.
	FormatI
	// FormatS is stores.
	FormatS
	// FormatB is conditional branches.
	FormatB
	// FormatU is upper-immediate instructions.
	FormatU
	// FormatJ is jal.
	FormatJ
	// FormatPseudo marks a mnemonic that expands to one real instruction.
	FormatPseudo
)

// Base opcodes referenced outside the table.
const (
	// OpcodeLoad instructions use the imm(rs1) operand syntax instead of
	// the plain rd, rs1, imm form.
	OpcodeLoad = 0x03
)

// InstructionDef describes how one mnemonic is encoded.
type InstructionDef struct {
	Format Format
	Opcode uint32 // 7 bits
	Funct3 uint32 // 3 bits
	Funct7 uint32 // 7 bits
}

// PseudoDef describes how a pseudo-instruction expands to a real one.
type PseudoDef struct {
	// Base is the real mnemonic encoded in the pseudo's place.
	Base string
	// Regs is the number of register operands read from the source.
	// The registers left unread stay x0.
	Regs int
	// Imm is the fixed immediate supplied by the expansion.
	Imm int32
}

var instructions = map[string]InstructionDef{
	// R-type
	"add":  {FormatR, 0x33, 0x0, 0x00},
	"sub":  {FormatR, 0x33, 0x0, 0x20},
	"xor":  {FormatR, 0x33, 0x4, 0x00},
	"or":   {FormatR, 0x33, 0x6, 0x00},
	"and":  {FormatR, 0x33, 0x7, 0x00},
	"sll":  {FormatR, 0x33, 0x1, 0x00},
	"srl":  {FormatR, 0x33, 0x5, 0x00},
	"sra":  {FormatR, 0x33, 0x5, 0x20},
	"slt":  {FormatR, 0x33, 0x2, 0x00},
	"sltu": {FormatR, 0x33, 0x3, 0x00},

	// I-type
	"addi":  {FormatI, 0x13, 0x0, 0x00},
	"xori":  {FormatI, 0x13, 0x4, 0x00},
	"ori":   {FormatI, 0x13, 0x6, 0x00},
	"andi":  {FormatI, 0x13, 0x7, 0x00},
	"slli":  {FormatI, 0x13, 0x1, 0x00},
	"srli":  {FormatI, 0x13, 0x5, 0x00},
	"srai":  {FormatI, 0x13, 0x5, 0x20},
	"slti":  {FormatI, 0x13, 0x2, 0x00},
	"sltiu": {FormatI, 0x13, 0x3, 0x00},
	"lb":    {FormatI, OpcodeLoad, 0x0, 0x00},
	"lh":    {FormatI, OpcodeLoad, 0x1, 0x00},
	"lw":    {FormatI, OpcodeLoad, 0x2, 0x00},
	"lbu":   {FormatI, OpcodeLoad, 0x4, 0x00},
	"lhu":   {FormatI, OpcodeLoad, 0x5, 0x00},
	"jalr":  {FormatI, 0x67, 0x0, 0x00},

	// S-type
	"sb": {FormatS, 0x23, 0x0, 0x00},
	"sh": {FormatS, 0x23, 0x1, 0x00},
	"sw": {FormatS, 0x23, 0x2, 0x00},

	// B-type
	"beq":  {FormatB, 0x63, 0x0, 0x00},
	"bne":  {FormatB, 0x63, 0x1, 0x00},
	"blt":  {FormatB, 0x63, 0x4, 0x00},
	"bge":  {FormatB, 0x63, 0x5, 0x00},
	"bltu": {FormatB, 0x63, 0x6, 0x00},
	"bgeu": {FormatB, 0x63, 0x7, 0x00},

	// U-type
	"lui":   {FormatU, 0x37, 0x0, 0x00},
	"auipc": {FormatU, 0x17, 0x0, 0x00},

	// J-type
	"jal": {FormatJ, 0x6F, 0x0, 0x00},

	// Pseudo-instructions; the expansion rules live in the pseudo table.
	"nop": {FormatPseudo, 0x13, 0x0, 0x00},
	"mv":  {FormatPseudo, 0x13, 0x0, 0x00},
	"not": {FormatPseudo, 0x13, 0x4, 0x00},
}

var pseudos = map[string]PseudoDef{
	"nop": {Base: "addi", Regs: 0, Imm: 0},  // addi x0, x0, 0
	"mv":  {Base: "addi", Regs: 2, Imm: 0},  // addi rd, rs, 0
	"not": {Base: "xori", Regs: 2, Imm: -1}, // xori rd, rs, -1
}

// ABI register names in numeric order. s0 also answers to fp.
var abiNames = []string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

var registers = make(map[string]uint32, len(abiNames)*2+1)

func init() {
	for i, name := range abiNames {
		registers[name] = uint32(i)
		registers[fmt.Sprintf("x%d", i)] = uint32(i)
	}
	registers["fp"] = registers["s0"]
}

// Lookup returns the encoding definition for a mnemonic.
// Matching is case-insensitive.
func Lookup(mnemonic string) (InstructionDef, bool) {
	def, ok := instructions[strings.ToLower(mnemonic)]
	return def, ok
}

// LookupPseudo returns the expansion rule for a pseudo-instruction.
func LookupPseudo(mnemonic string) (PseudoDef, bool) {
	def, ok := pseudos[strings.ToLower(mnemonic)]
	return def, ok
}

// LookupRegister returns the register number for a numeric name (x0-x31)
// or an ABI alias. Matching is case-insensitive.
func LookupRegister(name string) (uint32, bool) {
	reg, ok := registers[strings.ToLower(name)]
	return reg, ok
}
