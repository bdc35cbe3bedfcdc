package analysis

import "fmt"

// Input is everything a detector may look at. Detectors are pure functions
// over this snapshot and run in registry order; their findings are simply
// concatenated.
type Input struct {
	Instructions []Instruction
	Selectors    *SelectorIndex
	BytecodeSize uint32
	// Deployer is nil when the reputation provider is unavailable; the
	// reputation detector then emits nothing.
	Deployer *DeployerProfile
}

// Detector is one independent analyzer. Adding a detector means appending to
// the registry below, nothing else.
type Detector interface {
	ID() string
	Detect(in *Input) []Finding
}

var detectorRegistry = []Detector{
	selfdestructDetector{},
	delegatecallDetector{},
	reentrancyDetector{},
	proxyDetector{},
	honeypotDetector{},
	hiddenMintDetector{},
	feeManipulationDetector{},
	suspiciousSelectorDetector{},
	tinyBytecodeDetector{},
	reputationDetector{},
}

// Detectors returns the static registry, in evaluation order.
func Detectors() []Detector {
	return detectorRegistry
}

// RunDetectors evaluates the whole registry against one input.
func RunDetectors(in *Input) []Finding {
	findings := make([]Finding, 0, 4)
	for _, d := range detectorRegistry {
		findings = append(findings, d.Detect(in)...)
	}
	return findings
}

// tinyBytecodeThreshold is the size in bytes under which a contract that
// still exposes function selectors is too small to be a real token or app.
const tinyBytecodeThreshold = 200

// reentrancyWindow is how many instructions after an external call a storage
// write still counts as suspicious. Textual order only, no control flow.
const reentrancyWindow = 20

type selfdestructDetector struct{}

func (selfdestructDetector) ID() string { return "selfdestruct" }

func (selfdestructDetector) Detect(in *Input) []Finding {
	for _, instr := range in.Instructions {
		if instr.Opcode == opSelfdestruct {
			off := instr.Offset
			return []Finding{{
				Detector: "selfdestruct",
				Category: CategoryCodeQuality,
				Severity: SeverityCritical,
				Title:    "SELFDESTRUCT opcode found",
				Description: "Contract contains SELFDESTRUCT which allows the owner " +
					"to destroy the contract and drain all funds.",
				Evidence: &Evidence{Offset: &off},
			}}
		}
	}
	return nil
}

type delegatecallDetector struct{}

func (delegatecallDetector) ID() string { return "delegatecall" }

func (delegatecallDetector) Detect(in *Input) []Finding {
	isProxy := hasProxySlots(in.Instructions)
	for _, instr := range in.Instructions {
		if instr.Opcode != opDelegateCall {
			continue
		}
		off := instr.Offset
		if isProxy {
			return []Finding{{
				Detector: "delegatecall",
				Category: CategoryExternalCalls,
				Severity: SeverityInfo,
				Title:    "DELEGATECALL in proxy pattern",
				Description: "Contract uses DELEGATECALL with standard proxy storage " +
					"slots (EIP-1967/1822). This is expected proxy behavior.",
				Evidence: &Evidence{Offset: &off},
			}}
		}
		return []Finding{{
			Detector: "delegatecall",
			Category: CategoryExternalCalls,
			Severity: SeverityMedium,
			Title:    "Raw DELEGATECALL without proxy pattern",
			Description: "Contract uses DELEGATECALL without recognized proxy " +
				"storage slots. This could allow arbitrary code execution.",
			Evidence: &Evidence{Offset: &off},
		}}
	}
	return nil
}

type reentrancyDetector struct{}

func (reentrancyDetector) ID() string { return "reentrancy" }

// Detect flags an external call followed by SSTORE within a fixed window of
// the linear instruction stream. A call whose result is immediately checked
// with ISZERO is skipped. This is a textual-order heuristic, not a
// checks-effects-interactions analysis; it keeps the known approximation of
// the scoring behavior rather than attempting control-flow reconstruction.
func (reentrancyDetector) Detect(in *Input) []Finding {
	ins := in.Instructions
	for i, instr := range ins {
		if !isExternalCall(instr.Opcode) {
			continue
		}
		if i+1 < len(ins) && ins[i+1].Opcode == opISZERO {
			continue
		}
		for j := i + 1; j < len(ins) && j <= i+reentrancyWindow; j++ {
			if ins[j].Opcode == opSSTORE {
				off := instr.Offset
				return []Finding{{
					Detector: "reentrancy",
					Category: CategoryExternalCalls,
					Severity: SeverityMedium,
					Title:    "Potential reentrancy: external call before SSTORE",
					Description: fmt.Sprintf(
						"External call at offset %d is followed by SSTORE at offset %d. "+
							"State changes after external calls can enable reentrancy attacks.",
						instr.Offset, ins[j].Offset),
					Evidence: &Evidence{Offset: &off},
				}}
			}
		}
	}
	return nil
}

func isExternalCall(op byte) bool {
	return op == opCall || op == opCallCode || op == opStaticCall
}

type proxyDetector struct{}

func (proxyDetector) ID() string { return "proxy" }

func (proxyDetector) Detect(in *Input) []Finding {
	if !hasProxySlots(in.Instructions) && !isMinimalProxy(in.Instructions) {
		return nil
	}
	return []Finding{{
		Detector: "proxy",
		Category: CategoryAccessControl,
		Severity: SeverityInfo,
		Title:    "Proxy contract detected",
		Description: "Contract uses a recognized proxy convention (EIP-1967, EIP-1822, " +
			"legacy zeppelinos slots, or an EIP-1167 minimal proxy). The implementation " +
			"contract should also be analyzed.",
	}}
}

type honeypotDetector struct{}

func (honeypotDetector) ID() string { return "honeypot" }

func (honeypotDetector) Detect(in *Input) []Finding {
	var findings []Finding

	// Transfer-restriction selectors: the owner can freeze or filter
	// transfers at will.
	if restricting := in.Selectors.maliciousMatching("blacklist", "pause"); len(restricting) > 0 {
		findings = append(findings, Finding{
			Detector: "honeypot",
			Category: CategoryValueExtraction,
			Severity: SeverityHigh,
			Title:    "Transfer-restriction functions detected",
			Description: fmt.Sprintf(
				"Contract exposes functions (%s) classified malicious that let the "+
					"owner block or freeze token transfers.", labels(restricting)),
			Evidence: &Evidence{Selector: restricting[0].Hex()},
		})
	}

	// Conditional REVERT near a transfer path: comparison → JUMPI with a
	// REVERT on the fallthrough within a few instructions.
	if in.Selectors.Has(selTransfer) || in.Selectors.Has(selTransferFrom) {
		ins := in.Instructions
		for i, instr := range ins {
			if !isComparison(instr.Opcode) || i+2 >= len(ins) || ins[i+1].Opcode != opJUMPI {
				continue
			}
			for j := i + 2; j < len(ins) && j < i+6; j++ {
				if ins[j].Opcode == opRevert {
					off := instr.Offset
					findings = append(findings, Finding{
						Detector: "honeypot",
						Category: CategoryValueExtraction,
						Severity: SeverityHigh,
						Title:    "Potential honeypot: conditional REVERT in transfer path",
						Description: "Contract has transfer functions with conditional REVERT " +
							"patterns that could selectively block token transfers for " +
							"certain addresses.",
						Evidence: &Evidence{Offset: &off},
					})
					return findings
				}
			}
		}
	}
	return findings
}

func isComparison(op byte) bool {
	switch op {
	case opLT, opGT, opSLT, opSGT, opEQ:
		return true
	}
	return false
}

type hiddenMintDetector struct{}

func (hiddenMintDetector) ID() string { return "hidden_mint" }

func (hiddenMintDetector) Detect(in *Input) []Finding {
	mints := in.Selectors.maliciousMatching("mint")
	if len(mints) == 0 {
		return nil
	}
	return []Finding{{
		Detector: "hidden_mint",
		Category: CategoryValueExtraction,
		Severity: SeverityCritical,
		Title:    "Hidden mint capability detected",
		Description: fmt.Sprintf(
			"Contract contains mint function selectors (%s) classified malicious "+
				"that could allow unlimited token minting.", labels(mints)),
		Evidence: &Evidence{Selector: mints[0].Hex()},
	}}
}

type feeManipulationDetector struct{}

func (feeManipulationDetector) ID() string { return "fee_manipulation" }

func (feeManipulationDetector) Detect(in *Input) []Finding {
	fees := in.Selectors.maliciousMatching("fee", "tax", "maxtx", "maxwallet")
	if len(fees) == 0 {
		return nil
	}
	return []Finding{{
		Detector: "fee_manipulation",
		Category: CategoryValueExtraction,
		Severity: SeverityHigh,
		Title:    "Fee/limit manipulation functions detected",
		Description: fmt.Sprintf(
			"Contract contains functions (%s) that allow the owner to change "+
				"fees, taxes, or transaction limits after deployment.", labels(fees)),
		Evidence: &Evidence{Selector: fees[0].Hex()},
	}}
}

type suspiciousSelectorDetector struct{}

func (suspiciousSelectorDetector) ID() string { return "suspicious_selectors" }

func (suspiciousSelectorDetector) Detect(in *Input) []Finding {
	entries := in.Selectors.Suspicious()
	if len(entries) == 0 {
		return nil
	}
	findings := make([]Finding, 0, len(entries))
	for _, e := range entries {
		findings = append(findings, Finding{
			Detector: "suspicious_selectors",
			Category: CategoryAccessControl,
			Severity: SeverityLow,
			Title:    "Suspicious function selector: " + e.Label,
			Description: fmt.Sprintf(
				"Contract exposes %s, a privileged function that is risky "+
					"depending on context.", e.Label),
			Evidence: &Evidence{Selector: e.Hex()},
		})
	}
	return findings
}

type tinyBytecodeDetector struct{}

func (tinyBytecodeDetector) ID() string { return "tiny_bytecode" }

// Detect flags contracts that advertise function selectors but carry almost
// no code: stub tokens faking an ERC-20 surface. Proxies are exempt, their
// code is legitimately small.
func (tinyBytecodeDetector) Detect(in *Input) []Finding {
	if in.BytecodeSize == 0 || in.BytecodeSize >= tinyBytecodeThreshold {
		return nil
	}
	if in.Selectors.Len() == 0 || hasProxySlots(in.Instructions) || isMinimalProxy(in.Instructions) {
		return nil
	}
	return []Finding{{
		Detector: "tiny_bytecode",
		Category: CategoryCodeQuality,
		Severity: SeverityLow,
		Title:    "Unusually small bytecode with function dispatcher",
		Description: fmt.Sprintf(
			"Contract is only %d bytes yet exposes function selectors. "+
				"Stub contracts faking a token interface look like this.", in.BytecodeSize),
	}}
}

// Deployer-history thresholds: wallets younger than a week or with almost no
// transaction history are a scam signal.
const (
	youngWalletDays = 7
	lowTxCount      = 5
)

type reputationDetector struct{}

func (reputationDetector) ID() string { return "deployer_reputation" }

func (reputationDetector) Detect(in *Input) []Finding {
	prof := in.Deployer
	if prof == nil {
		return nil
	}
	if !prof.Found {
		return []Finding{{
			Detector: "deployer_reputation",
			Category: CategoryAccessControl,
			Severity: SeverityInfo,
			Title:    "Contract creator not found",
			Description: "Could not determine the deployer of this contract. It may be " +
				"very new or deployed via an unusual method.",
		}}
	}

	var findings []Finding
	deployer := prof.Deployer.Hex()
	if prof.Flagged {
		findings = append(findings, Finding{
			Detector: "deployer_reputation",
			Category: CategoryAccessControl,
			Severity: SeverityHigh,
			Title:    "Deployer wallet is flagged",
			Description: fmt.Sprintf(
				"Deployer %s appears in a known bad-actor list.", deployer),
		})
	}
	if prof.AgeDays < youngWalletDays {
		findings = append(findings, Finding{
			Detector: "deployer_reputation",
			Category: CategoryAccessControl,
			Severity: SeverityLow,
			Title:    "Deployer wallet is very new",
			Description: fmt.Sprintf(
				"Deployer %s is only %d days old. Fresh wallets deploying "+
					"contracts can be a scam signal.", deployer, int(prof.AgeDays)),
		})
	}
	if prof.TxCount < lowTxCount {
		findings = append(findings, Finding{
			Detector: "deployer_reputation",
			Category: CategoryAccessControl,
			Severity: SeverityLow,
			Title:    "Deployer wallet has very few transactions",
			Description: fmt.Sprintf(
				"Deployer %s has only %d transactions. Low-activity wallets "+
					"deploying contracts can indicate disposable scam wallets.",
				deployer, prof.TxCount),
		})
	}
	return findings
}
