package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"
)

// MemoryWalletRepository keeps wallets in process memory, keyed by lowercase address
type MemoryWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*model.Wallet
}

// NewMemoryWalletRepository creates an empty repository
func NewMemoryWalletRepository() *MemoryWalletRepository {
	return &MemoryWalletRepository{wallets: make(map[string]*model.Wallet)}
}

// Get returns the wallet of address
func (r *MemoryWalletRepository) Get(ctx context.Context, address string) (*model.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wallets[strings.ToLower(address)]
	if !ok {
		return nil, apperr.NotFound("Wallet")
	}
	out := cloneWallet(*w)
	return &out, nil
}

// Upsert creates or replaces the wallet record, keeping existing balances
// when wallet carries none
func (r *MemoryWalletRepository) Upsert(ctx context.Context, wallet *model.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(wallet.Address)
	next := cloneWallet(*wallet)
	next.Address = key
	next.UpdatedAt = time.Now().UTC()

	if prev, ok := r.wallets[key]; ok {
		next.CreatedAt = prev.CreatedAt
		if len(next.Balances) == 0 {
			next.Balances = cloneWallet(*prev).Balances
		}
	} else if next.CreatedAt.IsZero() {
		next.CreatedAt = next.UpdatedAt
	}
	if next.Balances == nil {
		next.Balances = map[string]float64{}
	}
	r.wallets[key] = &next
	return nil
}

// SetConnected records the connection flag of a wallet
func (r *MemoryWalletRepository) SetConnected(ctx context.Context, address string, connected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.wallets[strings.ToLower(address)]
	if !ok {
		return apperr.NotFound("Wallet")
	}
	w.IsConnected = connected
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// AdjustBalance adds delta to the balance of asset, rejecting overdrafts
func (r *MemoryWalletRepository) AdjustBalance(ctx context.Context, address, asset string, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.wallets[strings.ToLower(address)]
	if !ok {
		return apperr.NotFound("Wallet")
	}
	next := w.Balances[asset] + delta
	if next < 0 {
		return apperr.Validationf("Insufficient %s balance", asset)
	}
	w.Balances[asset] = next
	w.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneWallet(w model.Wallet) model.Wallet {
	if w.Balances != nil {
		b := make(map[string]float64, len(w.Balances))
		for k, v := range w.Balances {
			b[k] = v
		}
		w.Balances = b
	}
	return w
}

// MemoryTransactionRepository keeps transactions in process memory
type MemoryTransactionRepository struct {
	mu  sync.RWMutex
	txs []model.Transaction
}

// NewMemoryTransactionRepository creates an empty repository
func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{}
}

// Create records tx, rejecting a duplicate hash
func (r *MemoryTransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.txs {
		if t.TransactionHash == tx.TransactionHash {
			return apperr.Conflict("Transaction already recorded")
		}
	}
	r.txs = append(r.txs, *tx)
	return nil
}

// ListByAddress returns the transactions sent or received by address, newest first
func (r *MemoryTransactionRepository) ListByAddress(ctx context.Context, address string) ([]model.Transaction, error) {
	r.mu.RLock()
	out := make([]model.Transaction, 0)
	for _, t := range r.txs {
		if strings.EqualFold(t.From, address) || strings.EqualFold(t.To, address) {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}
