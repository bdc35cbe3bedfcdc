package analysis

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// BytecodeProvider fetches the deployed bytecode for an address. An address
// with no code returns an empty slice, not an error.
type BytecodeProvider interface {
	GetCode(ctx context.Context, addr common.Address) ([]byte, error)
}

// StorageReader performs raw storage-slot reads. Only the proxy resolver
// uses it.
type StorageReader interface {
	StorageAt(ctx context.Context, addr common.Address, slot common.Hash) (common.Hash, error)
}

// DeployerProfile is the externally supplied history of a contract's deployer
// wallet. Found is false when the upstream could not identify the deployer at
// all (itself a weak risk signal).
type DeployerProfile struct {
	Deployer common.Address
	Found    bool
	AgeDays  float64
	TxCount  int
	Flagged  bool
}

// ReputationProvider looks up deployer history for a contract address.
// Implementations return ErrReputationUnavailable when they cannot serve at
// all (missing API key, upstream down); the engine then skips the reputation
// detector instead of failing the request.
type ReputationProvider interface {
	Lookup(ctx context.Context, contract common.Address) (*DeployerProfile, error)
}
