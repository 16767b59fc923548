package model

import (
	"time"
)

// DefaultBlockchain is the chain tag assigned to tokens created without one
const DefaultBlockchain = "X1"

// DefaultDecimals is the decimals value assigned to newly created tokens
const DefaultDecimals = 18

// Token represents a catalog entry
type Token struct {
	ID                string     `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	Symbol            string     `json:"symbol" db:"symbol"`
	ImageURL          *string    `json:"imageUrl" db:"image_url"`
	Price             float64    `json:"price" db:"price"`
	MarketCap         string     `json:"marketCap" db:"market_cap"`
	Volume            string     `json:"volume" db:"volume"`
	Holders           int        `json:"holders" db:"holders"`
	Blockchain        string     `json:"blockchain" db:"blockchain"`
	CreatedBy         string     `json:"createdBy" db:"created_by"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	Description       string     `json:"description" db:"description"`
	Replies           int        `json:"replies" db:"replies"`
	ContractAddress   string     `json:"contractAddress,omitempty" db:"contract_address"`
	TotalSupply       float64    `json:"totalSupply,omitempty" db:"total_supply"`
	CirculatingSupply float64    `json:"circulatingSupply,omitempty" db:"circulating_supply"`
	Decimals          int        `json:"decimals,omitempty" db:"decimals"`
	IsVerified        bool       `json:"isVerified" db:"is_verified"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}

// DetailExtras is the detail-only payload overlaid on a Token for the detail view
type DetailExtras struct {
	TokenID         string          `json:"tokenId" db:"token_id"`
	FullDescription string          `json:"fullDescription" db:"full_description"`
	ChartURL        string          `json:"chartUrl" db:"chart_url"`
	Raised          string          `json:"raised" db:"raised"`
	RaiseTarget     string          `json:"raiseTarget" db:"raise_target"`
	Creator         *CreatorSummary `json:"creator,omitempty" db:"-"`
}

// CreatorSummary describes the wallet that created a token
type CreatorSummary struct {
	ID       string  `json:"id"`
	Address  string  `json:"address"`
	Username string  `json:"username"`
	Avatar   *string `json:"avatar,omitempty"`
}

// TokenDetail is a Token merged with its detail extras
type TokenDetail struct {
	Token
	FullDescription string          `json:"fullDescription"`
	ChartURL        string          `json:"chartUrl"`
	Raised          string          `json:"raised"`
	RaiseTarget     string          `json:"raiseTarget"`
	RaisePercentage string          `json:"raisePercentage"`
	Creator         *CreatorSummary `json:"creator,omitempty"`
}

// TokenCreate represents data needed to create a token
type TokenCreate struct {
	Name              string   `json:"name" binding:"required,min=3,max=50"`
	Symbol            string   `json:"symbol" binding:"required,min=2,max=10"`
	Description       string   `json:"description" binding:"max=1000"`
	TotalSupply       float64  `json:"totalSupply" binding:"required,gt=0"`
	CirculatingSupply *float64 `json:"circulatingSupply,omitempty" binding:"omitempty,gte=0"`
	Decimals          *int     `json:"decimals,omitempty" binding:"omitempty,min=0,max=36"`
	ImageURL          *string  `json:"imageUrl,omitempty"`
	Logo              *string  `json:"logo,omitempty"`
}

// TokenUpdate represents the mutable subset of a token
type TokenUpdate struct {
	Name        *string  `json:"name,omitempty" binding:"omitempty,min=3,max=50"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=1000"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	Price       *float64 `json:"price,omitempty" binding:"omitempty,gte=0"`
	MarketCap   *string  `json:"marketCap,omitempty"`
	Volume      *string  `json:"volume,omitempty"`
}
