// Package chain implements the bytecode and storage collaborators on top of
// go-ethereum's RPC client, with multi-endpoint failover.
package chain

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"riskscan/internal/logger"
)

// Client rotates across a set of RPC endpoints. A recently health-checked
// endpoint is reused without re-probing; on failure the next reachable one
// takes over.
type Client struct {
	urls          []string
	clients       []*ethclient.Client
	current       int
	mu            sync.RWMutex
	timeout       time.Duration
	healthWindow  time.Duration
	lastHealthyAt []time.Time
}

// Dial connects to the given endpoints. At least one must be dialable.
func Dial(urls []string, timeout time.Duration) (*Client, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one RPC URL is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		urls:          urls,
		clients:       make([]*ethclient.Client, len(urls)),
		timeout:       timeout,
		healthWindow:  5 * time.Second,
		lastHealthyAt: make([]time.Time, len(urls)),
	}

	connected := 0
	for i, u := range urls {
		cl, err := ethclient.Dial(u)
		if err != nil {
			logger.Warn("failed to connect to RPC [%s]: %v", u, err)
			continue
		}
		c.clients[i] = cl
		connected++
	}
	if connected == 0 {
		return nil, fmt.Errorf("no RPC endpoint reachable")
	}
	c.current = rand.Intn(len(c.clients))
	return c, nil
}

// GetCode fetches the deployed bytecode at addr. An address with no code
// yields an empty slice.
func (c *Client) GetCode(ctx context.Context, addr common.Address) ([]byte, error) {
	cl, err := c.pick(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return cl.CodeAt(ctx, addr, nil)
}

// StorageAt reads one raw storage slot at the latest block.
func (c *Client) StorageAt(ctx context.Context, addr common.Address, slot common.Hash) (common.Hash, error) {
	cl, err := c.pick(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	word, err := cl.StorageAt(ctx, addr, slot, nil)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(word), nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cl := range c.clients {
		if cl != nil {
			cl.Close()
		}
	}
}

// pick returns the current endpoint if it was healthy within the health
// window, probing it otherwise, and fails over when the probe fails.
func (c *Client) pick(ctx context.Context) (*ethclient.Client, error) {
	c.mu.RLock()
	current := c.current
	var cl *ethclient.Client
	var lastHealthy time.Time
	if current >= 0 && current < len(c.clients) {
		cl = c.clients[current]
		lastHealthy = c.lastHealthyAt[current]
	}
	c.mu.RUnlock()

	if cl != nil {
		if !lastHealthy.IsZero() && time.Since(lastHealthy) < c.healthWindow {
			return cl, nil
		}
		if c.probe(ctx, cl) {
			c.markHealthy(current)
			return cl, nil
		}
	}
	return c.failover(ctx)
}

func (c *Client) failover(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := 0; i < len(c.clients); i++ {
		next := (c.current + 1 + i) % len(c.clients)
		cl := c.clients[next]
		if cl == nil {
			continue
		}
		if c.probe(ctx, cl) {
			c.current = next
			c.lastHealthyAt[next] = time.Now()
			logger.Info("switched to RPC endpoint %s", c.urls[next])
			return cl, nil
		}
	}
	return nil, fmt.Errorf("all RPC endpoints unavailable")
}

func (c *Client) probe(ctx context.Context, cl *ethclient.Client) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	_, err := cl.BlockNumber(ctx)
	return err == nil
}

func (c *Client) markHealthy(i int) {
	c.mu.Lock()
	if i >= 0 && i < len(c.lastHealthyAt) {
		c.lastHealthyAt[i] = time.Now()
	}
	c.mu.Unlock()
}
