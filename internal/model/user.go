package model

import (
	"time"
)

// DefaultBalance is the display balance of a freshly connected user
const DefaultBalance = "0.00 USDT"

// User represents a wallet-backed account
type User struct {
	ID            string    `json:"id" db:"id"`
	Address       string    `json:"address" db:"address"`
	Name          string    `json:"name" db:"name"`
	Balance       string    `json:"balance" db:"balance"`
	Avatar        *string   `json:"avatar,omitempty" db:"avatar"`
	IsConnected   bool      `json:"isConnected" db:"is_connected"`
	IsVerified    bool      `json:"isVerified" db:"is_verified"`
	TokensCreated []string  `json:"tokensCreated,omitempty" db:"-"`
	TokensOwned   []string  `json:"tokensOwned,omitempty" db:"-"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// UserUpdate represents the fields a user may change. Only name, balance and
// avatar are accepted.
type UserUpdate struct {
	Name    *string `json:"name,omitempty" binding:"omitempty,min=1,max=64"`
	Balance *string `json:"balance,omitempty"`
	Avatar  *string `json:"avatar,omitempty"`
}

// Wallet represents the connection record of a wallet address
type Wallet struct {
	Address     string             `json:"address" db:"address"`
	UserID      string             `json:"userId" db:"user_id"`
	PublicKey   string             `json:"publicKey" db:"public_key"`
	Balances    map[string]float64 `json:"balance" db:"-"`
	IsConnected bool               `json:"isConnected" db:"is_connected"`
	CreatedAt   time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" db:"updated_at"`
}

// WalletConnect is the body of a wallet connect request. The signature is
// accepted as-is and not verified.
type WalletConnect struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required_without=PublicKey"`
	PublicKey string `json:"publicKey"`
}

// WalletSession is returned after a successful wallet connection
type WalletSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// WalletInfo is the response of the wallet info endpoint
type WalletInfo struct {
	Address     string             `json:"address"`
	PublicKey   string             `json:"publicKey"`
	Balance     map[string]float64 `json:"balance"`
	IsConnected bool               `json:"isConnected"`
	User        *User              `json:"user,omitempty"`
}
