package trade

import (
	"sync"

	"github.com/ecochain/token-catalog/internal/validator"

	"go.uber.org/zap"
)

// Registry hands out one gateway per wallet so that a wallet has at most one
// intent settling at a time while different wallets settle in parallel
type Registry struct {
	settler Settler
	opts    []Option
	logger  *zap.Logger

	mu       sync.Mutex
	gateways map[string]*Gateway
}

// NewRegistry creates a registry whose gateways share settler and opts
func NewRegistry(settler Settler, logger *zap.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		settler:  settler,
		opts:     opts,
		logger:   logger,
		gateways: make(map[string]*Gateway),
	}
}

// For returns the gateway of address, creating it on first use
func (r *Registry) For(address string) *Gateway {
	key := validator.NormalizeAddress(address)

	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.gateways[key]
	if !ok {
		g = NewGateway(r.settler, r.logger.With(zap.String("wallet", key)), r.opts...)
		r.gateways[key] = g
	}
	return g
}

// Len returns the number of wallets seen
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gateways)
}
