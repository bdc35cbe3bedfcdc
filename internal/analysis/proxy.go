package analysis

import (
	"github.com/ethereum/go-ethereum/common"
)

// Recognized proxy storage slots, pushed as PUSH32 constants by proxy
// dispatch code.
var (
	// keccak256("eip1967.proxy.implementation") - 1
	slotEIP1967Impl = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")
	// keccak256("eip1967.proxy.admin") - 1
	slotEIP1967Admin = common.HexToHash("0xb53127684a568b3173ae13b9f8a6016e243e63b6e8ee1178d6a717850b5d6103")
	// keccak256("PROXIABLE"), EIP-1822 UUPS
	slotEIP1822 = common.HexToHash("0xc5f16f0fcc639fa48a6947836d9850f504798523bf8c9a3a87d5876cf622bcf7")
	// keccak256("org.zeppelinos.proxy.implementation")
	slotZeppelinImpl = common.HexToHash("0x7050c9e0f4ca769c69bd3a8ef740bc37934f8e2c036e5a723fd8ee048ed3f8c3")
	// keccak256("org.zeppelinos.proxy.admin")
	slotZeppelinAdmin = common.HexToHash("0x10d6a54a4754c8869d6886b5f5d7fbfa5b4522237ea5c60d11bc4e7a1ff9390b")
)

// implementationSlots are the slots that hold an implementation address, in
// resolution preference order. Admin slots mark a proxy but are not read.
var implementationSlots = []common.Hash{
	slotEIP1967Impl,
	slotEIP1822,
	slotZeppelinImpl,
}

var knownProxySlots = map[common.Hash]struct{}{
	slotEIP1967Impl:   {},
	slotEIP1967Admin:  {},
	slotEIP1822:       {},
	slotZeppelinImpl:  {},
	slotZeppelinAdmin: {},
}

// hasProxySlots reports whether any complete PUSH32 operand matches a known
// proxy storage slot.
func hasProxySlots(ins []Instruction) bool {
	for _, in := range ins {
		if in.Opcode == opPUSH32 && len(in.Immediate) == 32 {
			if _, ok := knownProxySlots[common.BytesToHash(in.Immediate)]; ok {
				return true
			}
		}
	}
	return false
}

// implementationSlot returns the slot to read for the implementation address.
// Preference order is EIP-1967, then EIP-1822, then the legacy zeppelinos
// slot; admin-only matches fall back to the EIP-1967 implementation slot.
func implementationSlot(ins []Instruction) (common.Hash, bool) {
	found := make(map[common.Hash]struct{})
	for _, in := range ins {
		if in.Opcode == opPUSH32 && len(in.Immediate) == 32 {
			h := common.BytesToHash(in.Immediate)
			if _, ok := knownProxySlots[h]; ok {
				found[h] = struct{}{}
			}
		}
	}
	if len(found) == 0 {
		return common.Hash{}, false
	}
	for _, slot := range implementationSlots {
		if _, ok := found[slot]; ok {
			return slot, true
		}
	}
	return slotEIP1967Impl, true
}

// EIP-1167 minimal proxy runtime code, around the embedded target address:
//
//	363d3d373d3d3d363d <PUSHn addr> 5af43d82803e903d91602b57fd5bf3
//
// The push width varies because leading zero bytes of the address may be
// elided.
var (
	minimalProxyPrefix = []byte{0x36, 0x3d, 0x3d, 0x37, 0x3d, 0x3d, 0x3d, 0x36, 0x3d}
	minimalProxySuffix = []byte{0x5a, 0xf4, 0x3d, 0x82, 0x80, 0x3e, 0x90, 0x3d, 0x91, 0x60, 0x2b, 0x57, 0xfd, 0x5b, 0xf3}
)

// parseMinimalProxy recognizes EIP-1167 clone bytecode and extracts the
// embedded implementation address.
func parseMinimalProxy(code []byte) (common.Address, bool) {
	var addr common.Address
	if len(code) < len(minimalProxyPrefix)+1 {
		return addr, false
	}
	for i, b := range minimalProxyPrefix {
		if code[i] != b {
			return addr, false
		}
	}

	push := code[len(minimalProxyPrefix)]
	if push < opPUSH1 || push > opPUSH20 {
		return addr, false
	}
	addrLen := int(push-opPUSH1) + 1
	addrStart := len(minimalProxyPrefix) + 1
	suffixStart := addrStart + addrLen
	if len(code) < suffixStart+len(minimalProxySuffix) {
		return addr, false
	}
	for i, b := range minimalProxySuffix {
		if code[suffixStart+i] != b {
			return addr, false
		}
	}

	copy(addr[20-addrLen:], code[addrStart:suffixStart])
	return addr, true
}

// isMinimalProxy reports EIP-1167 clone bytecode from the decoded stream by
// re-checking the raw prefix on the first instruction's position. Detection
// from instructions keeps detectors independent of the raw code slice.
func isMinimalProxy(ins []Instruction) bool {
	// The clone prefix disassembles to CALLDATASIZE RETURNDATASIZE
	// RETURNDATASIZE CALLDATACOPY RETURNDATASIZE RETURNDATASIZE
	// RETURNDATASIZE CALLDATASIZE RETURNDATASIZE followed by a PUSH.
	want := []byte{0x36, 0x3d, 0x3d, 0x37, 0x3d, 0x3d, 0x3d, 0x36, 0x3d}
	if len(ins) < len(want)+1 {
		return false
	}
	for i, b := range want {
		if ins[i].Opcode != b {
			return false
		}
	}
	next := ins[len(want)].Opcode
	return next >= opPUSH1 && next <= opPUSH20
}
