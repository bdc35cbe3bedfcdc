package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// Classification of a known 4-byte function selector.
type Classification string

const (
	ClassMalicious  Classification = "malicious"
	ClassSuspicious Classification = "suspicious"
)

// SelectorEntry is one classified selector found in the bytecode.
type SelectorEntry struct {
	Selector       [4]byte
	Classification Classification
	Label          string
}

// Hex renders the selector as 0x-prefixed hex.
func (e SelectorEntry) Hex() string {
	return fmt.Sprintf("0x%02x%02x%02x%02x", e.Selector[0], e.Selector[1], e.Selector[2], e.Selector[3])
}

// Selector values are the first 4 bytes of keccak256(signature), precomputed
// at authoring time. The tables change only with releases, never at runtime.
var maliciousSelectors = map[[4]byte]string{
	{0x40, 0xc1, 0x0f, 0x19}: "mint(address,uint256)",
	{0xa0, 0x71, 0x2d, 0x68}: "mint(uint256)",
	{0x44, 0x33, 0x7e, 0xa1}: "blacklist(address)",
	{0x44, 0xd7, 0x5f, 0xa5}: "addToBlacklist(address)",
	{0x69, 0xfe, 0x0e, 0x2d}: "setFee(uint256)",
	{0xc0, 0xb0, 0xfd, 0xa2}: "setTaxFee(uint256)",
	{0xec, 0x28, 0x43, 0x8a}: "setMaxTxAmount(uint256)",
	{0xb6, 0xc5, 0x23, 0x24}: "setMaxWalletSize(uint256)",
	{0x84, 0x56, 0xcb, 0x59}: "pause()",
}

var suspiciousSelectors = map[[4]byte]string{
	{0xa2, 0x2c, 0xb4, 0x65}: "setApprovalForAll(address,bool)",
	{0x71, 0x50, 0x18, 0xa6}: "renounceOwnership()",
	{0xf2, 0xfd, 0xe3, 0x8b}: "transferOwnership(address)",
	{0x3c, 0xcf, 0xd6, 0x0b}: "withdraw()",
	{0xe0, 0x1a, 0xf9, 0x2c}: "setSwapEnabled(bool)",
	{0x43, 0x78, 0x23, 0xec}: "excludeFromFee(address)",
}

// Standard ERC-20 entry points, used by detectors to recognize a transfer path.
var (
	selTransfer     = [4]byte{0xa9, 0x05, 0x9c, 0xbb} // transfer(address,uint256)
	selTransferFrom = [4]byte{0x23, 0xb8, 0x72, 0xdd} // transferFrom(address,address,uint256)
)

// SelectorIndex is the set of 4-byte selectors referenced by the bytecode,
// classified against the static tables above.
type SelectorIndex struct {
	selectors map[[4]byte]struct{}
}

// ExtractSelectors collects the operand of every complete PUSH4, the idiom the
// function dispatcher uses for selector comparisons. Truncated pushes are
// ignored.
func ExtractSelectors(ins []Instruction) *SelectorIndex {
	idx := &SelectorIndex{selectors: make(map[[4]byte]struct{})}
	for _, in := range ins {
		if in.Opcode == opPUSH4 && len(in.Immediate) == 4 {
			var sel [4]byte
			copy(sel[:], in.Immediate)
			idx.selectors[sel] = struct{}{}
		}
	}
	return idx
}

// Has reports whether the bytecode references the given selector.
func (x *SelectorIndex) Has(sel [4]byte) bool {
	_, ok := x.selectors[sel]
	return ok
}

// Len returns the number of distinct selectors found.
func (x *SelectorIndex) Len() int {
	return len(x.selectors)
}

// Malicious returns the classified malicious selectors present in the
// bytecode, sorted by selector value for deterministic output.
func (x *SelectorIndex) Malicious() []SelectorEntry {
	return x.classified(maliciousSelectors, ClassMalicious)
}

// Suspicious returns the classified suspicious selectors present in the
// bytecode, sorted by selector value.
func (x *SelectorIndex) Suspicious() []SelectorEntry {
	return x.classified(suspiciousSelectors, ClassSuspicious)
}

func (x *SelectorIndex) classified(table map[[4]byte]string, class Classification) []SelectorEntry {
	var out []SelectorEntry
	for sel := range x.selectors {
		if label, ok := table[sel]; ok {
			out = append(out, SelectorEntry{Selector: sel, Classification: class, Label: label})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i].Selector[:]) < string(out[j].Selector[:])
	})
	return out
}

// maliciousMatching filters malicious entries whose label contains any of the
// given lowercase substrings.
func (x *SelectorIndex) maliciousMatching(terms ...string) []SelectorEntry {
	var out []SelectorEntry
	for _, e := range x.Malicious() {
		label := strings.ToLower(e.Label)
		for _, term := range terms {
			if strings.Contains(label, term) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func labels(entries []SelectorEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Label
	}
	return strings.Join(parts, ", ")
}
