package analysis

import "fmt"

// Opcode bytes the detectors and the disassembler refer to by name.
const (
	opStop         = 0x00
	opLT           = 0x10
	opGT           = 0x11
	opSLT          = 0x12
	opSGT          = 0x13
	opEQ           = 0x14
	opISZERO       = 0x15
	opSLOAD        = 0x54
	opSSTORE       = 0x55
	opJUMPI        = 0x57
	opJUMPDEST     = 0x5B
	opPUSH1        = 0x60
	opPUSH4        = 0x63
	opPUSH20       = 0x73
	opPUSH32       = 0x7F
	opCall         = 0xF1
	opCallCode     = 0xF2
	opReturn       = 0xF3
	opDelegateCall = 0xF4
	opStaticCall   = 0xFA
	opRevert       = 0xFD
	opInvalid      = 0xFE
	opSelfdestruct = 0xFF
)

// opInfo is one entry of the instruction-set table: mnemonic plus the number
// of immediate operand bytes. Only PUSH1..PUSH32 carry an immediate.
type opInfo struct {
	name    string
	operand int
}

var opTable = [256]opInfo{
	0x00: {"STOP", 0},
	0x01: {"ADD", 0},
	0x02: {"MUL", 0},
	0x03: {"SUB", 0},
	0x04: {"DIV", 0},
	0x05: {"SDIV", 0},
	0x06: {"MOD", 0},
	0x07: {"SMOD", 0},
	0x08: {"ADDMOD", 0},
	0x09: {"MULMOD", 0},
	0x0A: {"EXP", 0},
	0x0B: {"SIGNEXTEND", 0},
	0x10: {"LT", 0},
	0x11: {"GT", 0},
	0x12: {"SLT", 0},
	0x13: {"SGT", 0},
	0x14: {"EQ", 0},
	0x15: {"ISZERO", 0},
	0x16: {"AND", 0},
	0x17: {"OR", 0},
	0x18: {"XOR", 0},
	0x19: {"NOT", 0},
	0x1A: {"BYTE", 0},
	0x1B: {"SHL", 0},
	0x1C: {"SHR", 0},
	0x1D: {"SAR", 0},
	0x20: {"SHA3", 0},
	0x30: {"ADDRESS", 0},
	0x31: {"BALANCE", 0},
	0x32: {"ORIGIN", 0},
	0x33: {"CALLER", 0},
	0x34: {"CALLVALUE", 0},
	0x35: {"CALLDATALOAD", 0},
	0x36: {"CALLDATASIZE", 0},
	0x37: {"CALLDATACOPY", 0},
	0x38: {"CODESIZE", 0},
	0x39: {"CODECOPY", 0},
	0x3A: {"GASPRICE", 0},
	0x3B: {"EXTCODESIZE", 0},
	0x3C: {"EXTCODECOPY", 0},
	0x3D: {"RETURNDATASIZE", 0},
	0x3E: {"RETURNDATACOPY", 0},
	0x3F: {"EXTCODEHASH", 0},
	0x40: {"BLOCKHASH", 0},
	0x41: {"COINBASE", 0},
	0x42: {"TIMESTAMP", 0},
	0x43: {"NUMBER", 0},
	0x44: {"PREVRANDAO", 0},
	0x45: {"GASLIMIT", 0},
	0x46: {"CHAINID", 0},
	0x47: {"SELFBALANCE", 0},
	0x48: {"BASEFEE", 0},
	0x49: {"BLOBHASH", 0},
	0x4A: {"BLOBBASEFEE", 0},
	0x50: {"POP", 0},
	0x51: {"MLOAD", 0},
	0x52: {"MSTORE", 0},
	0x53: {"MSTORE8", 0},
	0x54: {"SLOAD", 0},
	0x55: {"SSTORE", 0},
	0x56: {"JUMP", 0},
	0x57: {"JUMPI", 0},
	0x58: {"PC", 0},
	0x59: {"MSIZE", 0},
	0x5A: {"GAS", 0},
	0x5B: {"JUMPDEST", 0},
	0x5C: {"TLOAD", 0},
	0x5D: {"TSTORE", 0},
	0x5E: {"MCOPY", 0},
	0x5F: {"PUSH0", 0},
	0xA0: {"LOG0", 0},
	0xA1: {"LOG1", 0},
	0xA2: {"LOG2", 0},
	0xA3: {"LOG3", 0},
	0xA4: {"LOG4", 0},
	0xF0: {"CREATE", 0},
	0xF1: {"CALL", 0},
	0xF2: {"CALLCODE", 0},
	0xF3: {"RETURN", 0},
	0xF4: {"DELEGATECALL", 0},
	0xF5: {"CREATE2", 0},
	0xFA: {"STATICCALL", 0},
	0xFD: {"REVERT", 0},
	0xFE: {"INVALID", 0},
	0xFF: {"SELFDESTRUCT", 0},
}

func init() {
	for i := 0; i < 32; i++ {
		opTable[0x60+i] = opInfo{fmt.Sprintf("PUSH%d", i+1), i + 1}
	}
	for i := 0; i < 16; i++ {
		opTable[0x80+i] = opInfo{fmt.Sprintf("DUP%d", i+1), 0}
		opTable[0x90+i] = opInfo{fmt.Sprintf("SWAP%d", i+1), 0}
	}
}

// OpcodeName returns the mnemonic for an opcode byte and the declared immediate
// length. Unassigned bytes map to "UNKNOWN_XX" with no immediate, so the
// disassembler never rejects input.
func OpcodeName(op byte) (string, int) {
	if info := opTable[op]; info.name != "" {
		return info.name, info.operand
	}
	return fmt.Sprintf("UNKNOWN_%02X", op), 0
}
