package analysis

import (
	"encoding/hex"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return b
}

func TestDisassemble(t *testing.T) {
	tests := []struct {
		name     string
		bytecode string
		want     []string // mnemonics in order
	}{
		{
			name:     "Empty",
			bytecode: "",
			want:     nil,
		},
		{
			name:     "SimplePrologue",
			bytecode: "6080604052", // PUSH1 80 PUSH1 40 MSTORE
			want:     []string{"PUSH1", "PUSH1", "MSTORE"},
		},
		{
			name:     "Push4Selector",
			bytecode: "63a9059cbb14",
			want:     []string{"PUSH4", "EQ"},
		},
		{
			name:     "UnknownOpcode",
			bytecode: "0c00", // 0x0c is unassigned
			want:     []string{"UNKNOWN_0C", "STOP"},
		},
		{
			name:     "TruncatedPush",
			bytecode: "61ff", // PUSH2 with only one operand byte
			want:     []string{"PUSH2"},
		},
		{
			name:     "PushAtVeryEnd",
			bytecode: "0060", // STOP then PUSH1 with nothing after
			want:     []string{"STOP", "PUSH1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := mustHex(t, tt.bytecode)
			ins := Disassemble(code)
			if len(ins) != len(tt.want) {
				t.Fatalf("got %d instructions, want %d: %+v", len(ins), len(tt.want), ins)
			}
			for i, m := range tt.want {
				if ins[i].Mnemonic != m {
					t.Errorf("instruction %d: got %s, want %s", i, ins[i].Mnemonic, m)
				}
			}
		})
	}
}

func TestDisassembleAccountsForEveryByte(t *testing.T) {
	fixtures := []string{
		"6080604052",
		"63a9059cbb1457fd",
		"7f360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc54",
		"61ff",     // truncated PUSH2
		"7fabcdef", // truncated PUSH32
		"0cfe00ff",
	}
	for _, fx := range fixtures {
		code := mustHex(t, fx)
		total := 0
		prev := -1
		for _, in := range Disassemble(code) {
			if int(in.Offset) <= prev {
				t.Errorf("%s: offsets not strictly increasing at %d", fx, in.Offset)
			}
			prev = int(in.Offset)
			total += in.Width()
		}
		if total != len(code) {
			t.Errorf("%s: widths sum to %d, want %d", fx, total, len(code))
		}
	}
}

func TestDisassembleTruncatedPush(t *testing.T) {
	ins := Disassemble(mustHex(t, "62aabb")) // PUSH3 with 2 operand bytes
	if len(ins) != 1 {
		t.Fatalf("got %d instructions, want 1", len(ins))
	}
	in := ins[0]
	if !in.Truncated {
		t.Error("expected Truncated to be set")
	}
	if len(in.Immediate) != 2 {
		t.Errorf("got %d immediate bytes, want 2", len(in.Immediate))
	}
	if in.Width() != 3 {
		t.Errorf("got width %d, want 3", in.Width())
	}
}

func TestParseBytecode(t *testing.T) {
	tests := []struct {
		in      string
		wantLen int
		wantErr bool
	}{
		{"0x6080", 2, false},
		{"6080", 2, false},
		{"  0x6080  ", 2, false},
		{"0x", 0, false},
		{"", 0, false},
		{"0xzz", 0, true},
		{"123", 0, true}, // odd length
	}
	for _, tt := range tests {
		got, err := ParseBytecode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseBytecode(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBytecode(%q): %v", tt.in, err)
			continue
		}
		if len(got) != tt.wantLen {
			t.Errorf("ParseBytecode(%q): got %d bytes, want %d", tt.in, len(got), tt.wantLen)
		}
	}
}
