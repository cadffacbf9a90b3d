package assembler

import "testing"

func TestPack(t *testing.T) {
	tests := []struct {
		val    uint32
		offset uint
		width  uint
		want   uint32
	}{
		{0x13, 0, 7, 0x13},
		{5, 7, 5, 0x280},
		{0xFFF, 20, 12, 0xFFF00000},
		// Values wider than the field are masked down.
		{0xFFFFFFFF, 12, 3, 0x7000},
		{0x20, 25, 7, 0x40000000},
		{1, 31, 1, 0x80000000},
		{0xDEADBEEF, 0, 32, 0xDEADBEEF},
	}
	for _, tc := range tests {
		if got := pack(tc.val, tc.offset, tc.width); got != tc.want {
			t.Errorf("pack(%#x, %d, %d) = %#x, want %#x", tc.val, tc.offset, tc.width, got, tc.want)
		}
	}
}

func TestFitsSigned(t *testing.T) {
	tests := []struct {
		v     int64
		width uint
		want  bool
	}{
		{0, 12, true},
		{2047, 12, true},
		{2048, 12, false},
		{-2048, 12, true},
		{-2049, 12, false},
		{4094, 13, true},
		{4096, 13, false},
		{-1048576, 21, true},
		{1048576, 21, false},
	}
	for _, tc := range tests {
		if got := fitsSigned(tc.v, tc.width); got != tc.want {
			t.Errorf("fitsSigned(%d, %d) = %v, want %v", tc.v, tc.width, got, tc.want)
		}
	}
}

func TestParseImmediate(t *testing.T) {
	tests := []struct {
		s    string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"-1", -1},
		{"+7", 7},
		{"0x10", 16},
		{"0X10", 16},
		{"-0x2a", -42},
		{"0xFFF", 4095},
	}
	for _, tc := range tests {
		got, err := parseImmediate(tc.s)
		if err != nil {
			t.Errorf("parseImmediate(%q) error: %v", tc.s, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseImmediate(%q) = %d, want %d", tc.s, got, tc.want)
		}
	}

	for _, bad := range []string{"", "-", "0x", "abc"} {
		if _, err := parseImmediate(bad); err == nil {
			t.Errorf("parseImmediate(%q) should fail", bad)
		}
	}
}
