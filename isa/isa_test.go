package isa

import (
	"strconv"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		mnemonic string
		format   Format
		opcode   uint32
		funct3   uint32
		funct7   uint32
	}{
		{"add", FormatR, 0x33, 0x0, 0x00},
		{"sub", FormatR, 0x33, 0x0, 0x20},
		{"sra", FormatR, 0x33, 0x5, 0x20},
		{"addi", FormatI, 0x13, 0x0, 0x00},
		{"lw", FormatI, 0x03, 0x2, 0x00},
		{"jalr", FormatI, 0x67, 0x0, 0x00},
		{"sw", FormatS, 0x23, 0x2, 0x00},
		{"beq", FormatB, 0x63, 0x0, 0x00},
		{"bgeu", FormatB, 0x63, 0x7, 0x00},
		{"lui", FormatU, 0x37, 0x0, 0x00},
		{"auipc", FormatU, 0x17, 0x0, 0x00},
		{"jal", FormatJ, 0x6F, 0x0, 0x00},
		{"nop", FormatPseudo, 0x13, 0x0, 0x00},
		// Case-insensitive matching.
		{"ADDI", FormatI, 0x13, 0x0, 0x00},
		{"Beq", FormatB, 0x63, 0x0, 0x00},
	}
	for _, tc := range tests {
		def, ok := Lookup(tc.mnemonic)
		if !ok {
			t.Errorf("Lookup(%q) not found", tc.mnemonic)
			continue
		}
		if def.Format != tc.format || def.Opcode != tc.opcode || def.Funct3 != tc.funct3 || def.Funct7 != tc.funct7 {
			t.Errorf("Lookup(%q) = %+v; want format %v opcode %#x funct3 %#x funct7 %#x",
				tc.mnemonic, def, tc.format, tc.opcode, tc.funct3, tc.funct7)
		}
	}

	if _, ok := Lookup("foobar"); ok {
		t.Error("Lookup(\"foobar\") should not be found")
	}
}

func TestLookupRegister(t *testing.T) {
	tests := []struct {
		name string
		reg  uint32
	}{
		{"x0", 0},
		{"zero", 0},
		{"ra", 1},
		{"sp", 2},
		{"gp", 3},
		{"tp", 4},
		{"t0", 5},
		{"s0", 8},
		{"fp", 8},
		{"s1", 9},
		{"a0", 10},
		{"a7", 17},
		{"s2", 18},
		{"s11", 27},
		{"t3", 28},
		{"t6", 31},
		{"x31", 31},
		{"X31", 31},
		{"SP", 2},
	}
	for _, tc := range tests {
		reg, ok := LookupRegister(tc.name)
		if !ok {
			t.Errorf("LookupRegister(%q) not found", tc.name)
			continue
		}
		if reg != tc.reg {
			t.Errorf("LookupRegister(%q) = %d; want %d", tc.name, reg, tc.reg)
		}
	}

	for _, bad := range []string{"x32", "q0", "", "x-1", "s12"} {
		if _, ok := LookupRegister(bad); ok {
			t.Errorf("LookupRegister(%q) should not be found", bad)
		}
	}
}

func TestAliasesMatchNumericNames(t *testing.T) {
	// Every ABI alias must map to the same number as its x-name.
	for i, name := range abiNames {
		alias, _ := LookupRegister(name)
		numeric, _ := LookupRegister("x" + strconv.Itoa(i))
		if alias != numeric {
			t.Errorf("alias %q = %d, x%d = %d", name, alias, i, numeric)
		}
	}
}

func TestLookupPseudo(t *testing.T) {
	tests := []struct {
		mnemonic string
		base     string
		regs     int
		imm      int32
	}{
		{"nop", "addi", 0, 0},
		{"mv", "addi", 2, 0},
		{"not", "xori", 2, -1},
		{"NOP", "addi", 0, 0},
	}
	for _, tc := range tests {
		def, ok := LookupPseudo(tc.mnemonic)
		if !ok {
			t.Errorf("LookupPseudo(%q) not found", tc.mnemonic)
			continue
		}
		if def.Base != tc.base || def.Regs != tc.regs || def.Imm != tc.imm {
			t.Errorf("LookupPseudo(%q) = %+v; want base %q regs %d imm %d",
				tc.mnemonic, def, tc.base, tc.regs, tc.imm)
		}
		if _, ok := Lookup(def.Base); !ok {
			t.Errorf("pseudo %q expands to unknown base %q", tc.mnemonic, def.Base)
		}
	}

	if _, ok := LookupPseudo("addi"); ok {
		t.Error("LookupPseudo(\"addi\") should not be found")
	}
}
