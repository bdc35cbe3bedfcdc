package analysis

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Instruction is one decoded bytecode instruction. Immediate holds the bytes
// actually present in the code; when a PUSH operand runs past the end of the
// bytecode, Truncated is set and Immediate carries only the available bytes.
type Instruction struct {
	Offset    uint32
	Opcode    byte
	Mnemonic  string
	Immediate []byte
	Truncated bool
}

// Width is the number of input bytes this instruction accounts for.
func (in Instruction) Width() int {
	return 1 + len(in.Immediate)
}

// Disassemble walks the bytecode left to right and decodes every byte exactly
// once. It never fails: unknown opcodes decode as single-byte UNKNOWN_XX
// instructions, and a PUSH whose operand is cut off by the end of the code is
// recorded as truncated rather than dropped.
func Disassemble(code []byte) []Instruction {
	if len(code) == 0 {
		return nil
	}

	ins := make([]Instruction, 0, len(code))
	i := 0
	for i < len(code) {
		op := code[i]
		name, operand := OpcodeName(op)

		if operand > 0 {
			available := operand
			truncated := false
			if rest := len(code) - i - 1; rest < operand {
				available = rest
				truncated = true
			}
			var imm []byte
			if available > 0 {
				imm = code[i+1 : i+1+available]
			}
			ins = append(ins, Instruction{
				Offset:    uint32(i),
				Opcode:    op,
				Mnemonic:  name,
				Immediate: imm,
				Truncated: truncated,
			})
			i += 1 + available
			continue
		}

		ins = append(ins, Instruction{Offset: uint32(i), Opcode: op, Mnemonic: name})
		i++
	}
	return ins
}

// ParseBytecode decodes a hex bytecode string, tolerating an optional 0x
// prefix and surrounding whitespace.
func ParseBytecode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if s == "" {
		return nil, nil
	}
	code, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode hex: %w", err)
	}
	return code, nil
}
