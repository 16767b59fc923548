package model

import (
	"time"
)

// IntentKind names the action a trade intent requests
type IntentKind string

const (
	IntentBuy          IntentKind = "buy"
	IntentSell         IntentKind = "sell"
	IntentCreate       IntentKind = "create"
	IntentAddLiquidity IntentKind = "add-liquidity"
)

// CreateTokenInput carries the form fields of a token creation intent
type CreateTokenInput struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Emission    float64 `json:"emission"`
	Description string  `json:"info"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// LiquidityInput carries the form fields of an add-liquidity intent
type LiquidityInput struct {
	X1Amount      float64 `json:"x1Amount"`
	TokenAmount   float64 `json:"tokenAmount"`
	TokenPriceUSD float64 `json:"tokenPriceUSD"`
	TokenPriceX1  float64 `json:"tokenPriceX1"`
}

// TradeIntent is a single buy, sell, create or add-liquidity request
type TradeIntent struct {
	TokenID   string            `json:"tokenId,omitempty"`
	Quantity  float64           `json:"quantity"`
	Kind      IntentKind        `json:"kind"`
	User      string            `json:"user"`
	Create    *CreateTokenInput `json:"create,omitempty"`
	Liquidity *LiquidityInput   `json:"liquidity,omitempty"`
}

// Receipt is returned by a settlement backend after a successful intent
type Receipt struct {
	TransactionHash string     `json:"transactionHash"`
	Kind            IntentKind `json:"kind"`
	TokenID         string     `json:"tokenId,omitempty"`
	Amount          float64    `json:"amount"`
	ContractAddress string     `json:"contractAddress,omitempty"`
	SettledAt       time.Time  `json:"settledAt"`
}

// TradeRequest is the body of the buy and sell endpoints. Address names the
// wallet when the request carries no session.
type TradeRequest struct {
	TokenID string  `json:"tokenId" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
	Address string  `json:"address,omitempty"`
}

// LiquidityRequest is the body of the add-liquidity endpoints. Amount and
// TokenAmount mirror the field names of the per-token liquidity route.
type LiquidityRequest struct {
	Address       string  `json:"address,omitempty"`
	TokenID       string  `json:"tokenId"`
	X1Amount      float64 `json:"x1Amount"`
	NKTAmount     float64 `json:"nktAmount"`
	Amount        float64 `json:"amount"`
	TokenAmount   float64 `json:"tokenAmount"`
	TokenPriceUSD float64 `json:"tokenPriceUSD"`
	TokenPriceX1  float64 `json:"tokenPriceX1"`
}

// Normalize folds the alternate field names into X1Amount and NKTAmount
func (r *LiquidityRequest) Normalize() {
	if r.X1Amount == 0 {
		r.X1Amount = r.Amount
	}
	if r.NKTAmount == 0 {
		r.NKTAmount = r.TokenAmount
	}
}

// TradeResult is the response body of a settled trade
type TradeResult struct {
	TransactionHash string  `json:"transactionHash"`
	Amount          float64 `json:"amount"`
	Token           string  `json:"token"`
}

// LiquidityResult is the response body of a settled add-liquidity intent
type LiquidityResult struct {
	TransactionHash string  `json:"transactionHash"`
	X1Amount        float64 `json:"x1Amount"`
	NKTAmount       float64 `json:"nktAmount"`
	TokenPriceUSD   float64 `json:"tokenPriceUSD"`
	TokenPriceX1    float64 `json:"tokenPriceX1"`
}

// TransactionType mirrors the persisted transaction kinds
type TransactionType string

const (
	TxBuy       TransactionType = "buy"
	TxSell      TransactionType = "sell"
	TxTransfer  TransactionType = "transfer"
	TxCreate    TransactionType = "create"
	TxLiquidity TransactionType = "liquidity"
)

// TransactionStatus is the settlement state of a persisted transaction
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxConfirmed TransactionStatus = "confirmed"
	TxFailed    TransactionStatus = "failed"
)

// DefaultTransactionFee is recorded on every settled transaction
const DefaultTransactionFee = 0.001

// Transaction is the persisted record of a settlement attempt
type Transaction struct {
	ID              string            `json:"id" db:"id"`
	From            string            `json:"from" db:"from_address"`
	To              string            `json:"to" db:"to_address"`
	TokenID         string            `json:"tokenId" db:"token_id"`
	Amount          float64           `json:"amount" db:"amount"`
	TransactionHash string            `json:"transactionHash" db:"transaction_hash"`
	Status          TransactionStatus `json:"status" db:"status"`
	Type            TransactionType   `json:"type" db:"type"`
	Fee             float64           `json:"fee" db:"fee"`
	Timestamp       time.Time         `json:"timestamp" db:"timestamp"`
}

// TransactionTypeFor maps an intent kind to its transaction type
func TransactionTypeFor(kind IntentKind) TransactionType {
	switch kind {
	case IntentBuy:
		return TxBuy
	case IntentSell:
		return TxSell
	case IntentCreate:
		return TxCreate
	case IntentAddLiquidity:
		return TxLiquidity
	default:
		return TxTransfer
	}
}
