package analysis

import (
	"strings"
	"testing"
)

func detect(t *testing.T, bytecode string) []Finding {
	t.Helper()
	code := mustHex(t, bytecode)
	ins := Disassemble(code)
	return RunDetectors(&Input{
		Instructions: ins,
		Selectors:    ExtractSelectors(ins),
		BytecodeSize: uint32(len(code)),
	})
}

func detectorIDs(findings []Finding) map[string]int {
	out := make(map[string]int)
	for _, f := range findings {
		out[f.Detector]++
	}
	return out
}

const slotEIP1967ImplHex = "360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc"

func TestDetectors(t *testing.T) {
	tests := []struct {
		name     string
		bytecode string
		want     []string
		unwant   []string
	}{
		{
			name:     "Selfdestruct",
			bytecode: "6080604052ff",
			want:     []string{"selfdestruct"},
			unwant:   []string{"tiny_bytecode"},
		},
		{
			name:     "RawDelegatecall",
			bytecode: "6080604052f4",
			want:     []string{"delegatecall"},
			unwant:   []string{"proxy"},
		},
		{
			name:     "ProxyDelegatecall",
			bytecode: "7f" + slotEIP1967ImplHex + "54f4",
			want:     []string{"delegatecall", "proxy"},
			unwant:   []string{"tiny_bytecode"},
		},
		{
			name:     "ReentrancyCallThenStore",
			bytecode: "f1600155", // CALL PUSH1 01 SSTORE
			want:     []string{"reentrancy"},
		},
		{
			name:     "ReentrancyCheckedCall",
			bytecode: "f115600155", // CALL ISZERO PUSH1 01 SSTORE
			unwant:   []string{"reentrancy"},
		},
		{
			name:     "ReentrancyDelegatecallNotCounted",
			bytecode: "f4600155", // DELEGATECALL is not CALL/CALLCODE/STATICCALL
			unwant:   []string{"reentrancy"},
		},
		{
			name:     "HoneypotBlacklistSelector",
			bytecode: "6344337ea1",
			want:     []string{"honeypot"},
		},
		{
			name:     "HoneypotConditionalRevert",
			bytecode: "63a9059cbb1057fd", // PUSH4 transfer LT JUMPI REVERT
			want:     []string{"honeypot"},
		},
		{
			name:     "ConditionalRevertWithoutTransfer",
			bytecode: "1057fd", // same shape but no transfer selector
			unwant:   []string{"honeypot"},
		},
		{
			name:     "HiddenMint",
			bytecode: "6340c10f19",
			want:     []string{"hidden_mint"},
		},
		{
			name:     "FeeManipulation",
			bytecode: "63ec28438a", // setMaxTxAmount(uint256)
			want:     []string{"fee_manipulation"},
			unwant:   []string{"hidden_mint", "honeypot"},
		},
		{
			name:     "SuspiciousWithdraw",
			bytecode: "633ccfd60b",
			want:     []string{"suspicious_selectors"},
			unwant:   []string{"hidden_mint"},
		},
		{
			name:     "TinyBytecodeWithSelector",
			bytecode: "63a9059cbb",
			want:     []string{"tiny_bytecode"},
		},
		{
			name:     "TinyBytecodeNoSelectors",
			bytecode: "6080604052",
			unwant:   []string{"tiny_bytecode"},
		},
		{
			name:     "TinyProxyExempt",
			bytecode: "63a9059cbb7f" + slotEIP1967ImplHex + "54",
			want:     []string{"proxy"},
			unwant:   []string{"tiny_bytecode"},
		},
		{
			name:     "CleanPrologue",
			bytecode: "608060405234801561000f575f5ffd5b50",
			unwant: []string{
				"selfdestruct", "delegatecall", "reentrancy", "proxy",
				"honeypot", "hidden_mint", "fee_manipulation",
				"suspicious_selectors", "tiny_bytecode",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectorIDs(detect(t, tt.bytecode))
			for _, d := range tt.want {
				if got[d] == 0 {
					t.Errorf("detector %s did not fire; fired: %v", d, got)
				}
			}
			for _, d := range tt.unwant {
				if got[d] > 0 {
					t.Errorf("detector %s fired unexpectedly; fired: %v", d, got)
				}
			}
		})
	}
}

func TestTinyBytecodeThreshold(t *testing.T) {
	// Same selector-bearing code padded past the size threshold with STOPs.
	padded := "63a9059cbb" + strings.Repeat("00", tinyBytecodeThreshold)
	if got := detectorIDs(detect(t, padded)); got["tiny_bytecode"] > 0 {
		t.Errorf("tiny_bytecode fired on %d-byte contract", tinyBytecodeThreshold+5)
	}
}

func TestDelegatecallSeverityDependsOnProxySlots(t *testing.T) {
	raw := detect(t, "f4")
	if len(raw) == 0 || raw[0].Detector != "delegatecall" || raw[0].Severity != SeverityMedium {
		t.Fatalf("raw delegatecall: got %+v", raw)
	}

	proxied := detect(t, "7f"+slotEIP1967ImplHex+"54f4")
	var dc *Finding
	for i := range proxied {
		if proxied[i].Detector == "delegatecall" {
			dc = &proxied[i]
		}
	}
	if dc == nil || dc.Severity != SeverityInfo {
		t.Fatalf("proxy delegatecall: got %+v", proxied)
	}
}

func TestReentrancyWindow(t *testing.T) {
	// CALL, then enough JUMPDESTs that the SSTORE lands one instruction past
	// the window. No finding expected.
	far := "f1" + strings.Repeat("5b", reentrancyWindow) + "55"
	if got := detectorIDs(detect(t, far)); got["reentrancy"] > 0 {
		t.Error("reentrancy fired outside the instruction window")
	}
	// SSTORE at the window edge fires.
	edge := "f1" + strings.Repeat("5b", reentrancyWindow-1) + "55"
	if got := detectorIDs(detect(t, edge)); got["reentrancy"] == 0 {
		t.Error("reentrancy did not fire at the window edge")
	}
}

func TestReputationDetector(t *testing.T) {
	tests := []struct {
		name     string
		profile  *DeployerProfile
		want     int
		severity Severity
	}{
		{"NilProfile", nil, 0, ""},
		{"NotFound", &DeployerProfile{Found: false}, 1, SeverityInfo},
		{"Flagged", &DeployerProfile{Found: true, Flagged: true, AgeDays: 400, TxCount: 100}, 1, SeverityHigh},
		{"YoungWallet", &DeployerProfile{Found: true, AgeDays: 2, TxCount: 100}, 1, SeverityLow},
		{"FewTransactions", &DeployerProfile{Found: true, AgeDays: 400, TxCount: 1}, 1, SeverityLow},
		{"YoungAndInactive", &DeployerProfile{Found: true, AgeDays: 2, TxCount: 1}, 2, SeverityLow},
		{"Established", &DeployerProfile{Found: true, AgeDays: 400, TxCount: 100}, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := reputationDetector{}.Detect(&Input{Deployer: tt.profile})
			if len(findings) != tt.want {
				t.Fatalf("got %d findings, want %d: %+v", len(findings), tt.want, findings)
			}
			if tt.want > 0 && findings[0].Severity != tt.severity {
				t.Errorf("got severity %s, want %s", findings[0].Severity, tt.severity)
			}
			for _, f := range findings {
				if f.Category != CategoryAccessControl {
					t.Errorf("got category %s, want %s", f.Category, CategoryAccessControl)
				}
			}
		})
	}
}
