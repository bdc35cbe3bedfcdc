package analysis

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"riskscan/internal/cache"
	"riskscan/internal/logger"
)

var addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Options configures an Engine. Bytecode is required; Storage and Reputation
// are optional collaborators whose absence degrades the result instead of
// failing it.
type Options struct {
	Bytecode   BytecodeProvider
	Storage    StorageReader
	Reputation ReputationProvider

	// CacheTTL and CacheSize bound the result cache. Zero values pick the
	// defaults below.
	CacheTTL  time.Duration
	CacheSize int

	// CallTimeout bounds every collaborator call so an unresponsive
	// upstream cannot stall an analysis indefinitely.
	CallTimeout time.Duration
}

const (
	defaultCacheTTL    = 5 * time.Minute
	defaultCacheSize   = 512
	defaultCallTimeout = 10 * time.Second
)

// Engine wires fetch → disassemble → detect → resolve proxy → score → cache.
// Analyses for different addresses are independent and safe to run in
// parallel; the cache is the only shared state.
type Engine struct {
	bytecode   BytecodeProvider
	storage    StorageReader
	reputation ReputationProvider
	cache      *cache.Cache[*AnalysisResult]
	timeout    time.Duration
}

func New(opts Options) *Engine {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Engine{
		bytecode:   opts.Bytecode,
		storage:    opts.Storage,
		reputation: opts.Reputation,
		cache:      cache.New[*AnalysisResult](ttl, size),
		timeout:    timeout,
	}
}

// NormalizeAddress validates the textual address form and returns the parsed
// address plus the lowercase cache key, so differently-cased inputs for the
// same address share one entry.
func NormalizeAddress(s string) (common.Address, string, error) {
	s = strings.TrimSpace(s)
	if !addressRe.MatchString(s) {
		return common.Address{}, "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	addr := common.HexToAddress(s)
	return addr, strings.ToLower(addr.Hex()), nil
}

// Analyze is the single public entry point: validate → cache → fetch →
// disassemble → detect → resolve proxy → score → cache. An address holding no
// code is a valid result with score 0, not an error. Only an unparseable
// address or a failed bytecode fetch is fatal.
func (e *Engine) Analyze(ctx context.Context, address string) (*AnalysisResult, error) {
	addr, key, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	if cached, ok := e.cache.Get(key); ok {
		return cached.Clone(), nil
	}

	code, err := e.getCode(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBytecodeFetch, key, err)
	}

	res := e.analyzeAddress(ctx, addr, code, true)
	e.cache.Put(key, res.Clone())
	return res, nil
}

// AnalyzeBytes runs the pure pipeline over raw bytecode with no collaborators
// involved: no fetch, no proxy resolution, no reputation. Used for offline
// analysis of bytecode supplied directly.
func AnalyzeBytes(code []byte) *AnalysisResult {
	return analyzeCore("", code, nil)
}

// analyzeAddress analyzes fetched code for one address. resolveProxy is false
// for implementation contracts, which makes the one-hop bound structural: the
// nested analysis simply has no resolution step to recurse through.
func (e *Engine) analyzeAddress(ctx context.Context, addr common.Address, code []byte, resolveProxy bool) *AnalysisResult {
	res := analyzeCore(strings.ToLower(addr.Hex()), code, e.lookupDeployer(ctx, addr))
	if resolveProxy && len(code) > 0 {
		res.Implementation = e.resolveImplementation(ctx, addr, code)
	}
	return res
}

// analyzeCore is the synchronous, collaborator-free center of the pipeline.
func analyzeCore(address string, code []byte, deployer *DeployerProfile) *AnalysisResult {
	if len(code) == 0 {
		return &AnalysisResult{
			Address:  address,
			Level:    LevelSafe,
			Findings: []Finding{},
		}
	}

	ins := Disassemble(code)
	in := &Input{
		Instructions: ins,
		Selectors:    ExtractSelectors(ins),
		BytecodeSize: uint32(len(code)),
		Deployer:     deployer,
	}
	findings := RunDetectors(in)
	cs, score, level := Score(findings)

	return &AnalysisResult{
		Address:        address,
		Score:          score,
		Level:          level,
		BytecodeSize:   uint32(len(code)),
		Findings:       findings,
		CategoryScores: cs,
	}
}

// resolveImplementation resolves a detected proxy to its implementation and
// analyzes it without further proxy resolution. Every failure on this path
// (no storage reader, failed read, zero or malformed slot value, failed or
// empty implementation fetch) degrades to a nil implementation; the overall
// request still succeeds.
func (e *Engine) resolveImplementation(ctx context.Context, addr common.Address, code []byte) *AnalysisResult {
	if impl, ok := parseMinimalProxy(code); ok {
		return e.analyzeImplementation(ctx, impl)
	}

	ins := Disassemble(code)
	slot, ok := implementationSlot(ins)
	if !ok {
		return nil
	}
	if e.storage == nil {
		logger.Debug("proxy %s: no storage reader configured, skipping resolution", addr.Hex())
		return nil
	}

	sctx, cancel := context.WithTimeout(ctx, e.timeout)
	word, err := e.storage.StorageAt(sctx, addr, slot)
	cancel()
	if err != nil {
		logger.Warn("proxy %s: storage read at %s failed: %v", addr.Hex(), slot.Hex(), err)
		return nil
	}

	impl, ok := addressFromWord(word)
	if !ok {
		logger.Debug("proxy %s: slot %s holds no implementation address", addr.Hex(), slot.Hex())
		return nil
	}
	return e.analyzeImplementation(ctx, impl)
}

func (e *Engine) analyzeImplementation(ctx context.Context, impl common.Address) *AnalysisResult {
	code, err := e.getCode(ctx, impl)
	if err != nil {
		logger.Warn("implementation %s: bytecode fetch failed: %v", impl.Hex(), err)
		return nil
	}
	if len(code) == 0 {
		logger.Debug("implementation %s holds no code", impl.Hex())
		return nil
	}
	return e.analyzeAddress(ctx, impl, code, false)
}

// addressFromWord interprets a storage word as an address: the upper 12 bytes
// must be zero and the remainder non-zero.
func addressFromWord(word common.Hash) (common.Address, bool) {
	for _, b := range word[:12] {
		if b != 0 {
			return common.Address{}, false
		}
	}
	addr := common.BytesToAddress(word[12:])
	if addr == (common.Address{}) {
		return common.Address{}, false
	}
	return addr, true
}

func (e *Engine) getCode(ctx context.Context, addr common.Address) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.bytecode.GetCode(ctx, addr)
}

func (e *Engine) lookupDeployer(ctx context.Context, addr common.Address) *DeployerProfile {
	if e.reputation == nil {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	prof, err := e.reputation.Lookup(rctx, addr)
	if err != nil {
		if !errors.Is(err, ErrReputationUnavailable) {
			logger.Debug("reputation lookup for %s failed: %v", addr.Hex(), err)
		}
		return nil
	}
	return prof
}
