package trade

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// MockSettler settles every intent locally after a simulated delay. It stands
// in for chain interaction during development.
type MockSettler struct {
	delay time.Duration
	nonce atomic.Uint64
	now   func() time.Time
}

// NewMockSettler creates a settler that waits delay before answering
func NewMockSettler(delay time.Duration) *MockSettler {
	return &MockSettler{delay: delay, now: time.Now}
}

// Settle waits for the simulated delay and returns a receipt with a keccak-256
// transaction hash. Create intents also receive a contract address.
func (m *MockSettler) Settle(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, apperr.Transport("settlement interrupted", ctx.Err())
		}
	}

	nonce := m.nonce.Add(1)
	payload, err := json.Marshal(intent)
	if err != nil {
		return nil, err
	}

	receipt := &model.Receipt{
		TransactionHash: TxHash(payload, nonce),
		Kind:            intent.Kind,
		TokenID:         intent.TokenID,
		Amount:          intent.Quantity,
		SettledAt:       m.now().UTC(),
	}
	if intent.Kind == model.IntentCreate {
		receipt.ContractAddress = ContractAddress(intent.User, nonce)
		if intent.Create != nil {
			receipt.Amount = intent.Create.Emission
		}
	}
	if intent.Kind == model.IntentAddLiquidity && intent.Liquidity != nil {
		receipt.Amount = intent.Liquidity.X1Amount
	}
	return receipt, nil
}

// TxHash derives a 0x-prefixed keccak-256 transaction reference
func TxHash(payload []byte, nonce uint64) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(payload)
	h.Write(uint64Bytes(nonce))
	return common.BytesToHash(h.Sum(nil)).Hex()
}

// ContractAddress derives a checksummed contract address from the deployer
// and nonce, the last 20 bytes of their keccak-256 hash
func ContractAddress(deployer string, nonce uint64) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(common.HexToAddress(deployer).Bytes())
	h.Write(uint64Bytes(nonce))
	return common.BytesToAddress(h.Sum(nil)[12:]).Hex()
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
