// Package mockdata seeds the in-memory repositories used by the development
// server and the terminal client's offline mode.
package mockdata

import (
	"fmt"
	"strings"
	"time"

	"github.com/ecochain/token-catalog/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

const (
	placeholderImage = "/assets/placeholders/token-placeholder.svg"
	placeholderChart = "/assets/placeholders/chart-placeholder.png"
	totalSupply      = 1000000000
	circulating      = 850000000
)

type seed struct {
	name, symbol       string
	price              float64
	marketCap, volume  string
	holders, replies   int
	createdBy, summary string
	age                time.Duration
}

var seeds = []seed{
	{"My New Token", "MNT", 0.048, "$4.4k", "$385,069,594", 6845, 1728, "noname", "Join us in building a better, decentralized future.", 20 * time.Second},
	{"EcoChain Token", "ECO", 0.125, "$12.8k", "$520,450,123", 3421, 845, "crypto_dev", "Sustainable blockchain for a greener tomorrow.", 2 * time.Minute},
	{"Green Energy Coin", "GEC", 0.0025, "$2.1k", "$98,234,567", 1256, 432, "eco_warrior", "Powering the future with clean energy.", time.Hour},
	{"Blockchain Revolution", "BRV", 0.087, "$8.7k", "$150,234,789", 4230, 2156, "blockchain_guru", "Revolutionizing how we think about decentralized systems.", 2 * time.Hour},
	{"NFT Gaming Coin", "NGC", 0.234, "$23.4k", "$420,123,456", 8765, 3421, "gamer_one", "The future of gaming is decentralized and tokenized.", 3 * time.Hour},
	{"DeFi Pioneer", "DFP", 0.156, "$15.6k", "$280,654,321", 5678, 2789, "defi_master", "Leading the charge in decentralized finance.", 4 * time.Hour},
	{"Metaverse Token", "MVT", 0.034, "$3.4k", "$65,987,654", 2345, 1567, "metaverse_explorer", "Building the next generation virtual reality.", 5 * time.Hour},
	{"AI Coin", "AIC", 0.321, "$32.1k", "$520,345,678", 9876, 4321, "ai_researcher", "Integrating artificial intelligence with blockchain.", 6 * time.Hour},
	{"Green Coin", "GRC", 0.012, "$1.2k", "$35,123,456", 1234, 987, "eco_friendly", "Supporting eco-friendly blockchain initiatives.", 7 * time.Hour},
	{"Crypto Innovator", "CIN", 0.456, "$45.6k", "$780,987,654", 11223, 5678, "crypto_innovator", "Pushing boundaries in cryptocurrency development.", 8 * time.Hour},
	{"Social Token", "SOT", 0.067, "$6.7k", "$125,456,789", 3456, 2109, "social_media", "Building communities through tokenization.", 9 * time.Hour},
	{"Privacy Coin", "PRV", 0.189, "$18.9k", "$340,234,567", 6789, 3210, "privacy_advocate", "Ensuring privacy in the digital age.", 10 * time.Hour},
	{"Stable Coin", "STB", 0.999, "$99.9k", "$1,500,123,456", 15678, 6789, "stable_holder", "Stable value in a volatile market.", 11 * time.Hour},
	{"DeSci Token", "DSC", 0.078, "$7.8k", "$145,789,012", 4567, 2345, "science_fan", "Decentralizing scientific research and funding.", 12 * time.Hour},
	{"Web3 Token", "W3T", 0.234, "$23.4k", "$420,345,678", 8765, 3456, "web3_dev", "The next generation of internet technology.", 13 * time.Hour},
}

// Tokens returns the seed catalog with creation times relative to now
func Tokens(now time.Time) []model.Token {
	out := make([]model.Token, len(seeds))
	for i, s := range seeds {
		image := placeholderImage
		out[i] = model.Token{
			ID:                fmt.Sprint(i + 1),
			Name:              s.name,
			Symbol:            s.symbol,
			ImageURL:          &image,
			Price:             s.price,
			MarketCap:         s.marketCap,
			Volume:            s.volume,
			Holders:           s.holders,
			Blockchain:        model.DefaultBlockchain,
			CreatedBy:         s.createdBy,
			CreatedAt:         now.Add(-s.age).UTC(),
			Description:       s.summary,
			Replies:           s.replies,
			ContractAddress:   Address("contract:" + s.symbol),
			TotalSupply:       totalSupply,
			CirculatingSupply: circulating,
			Decimals:          model.DefaultDecimals,
		}
	}
	return out
}

// Extras returns the detail payloads matching Tokens
func Extras() []model.DetailExtras {
	out := make([]model.DetailExtras, len(seeds))
	for i, s := range seeds {
		avatar := fmt.Sprintf("https://example.com/avatar/%s.png", s.createdBy)
		out[i] = model.DetailExtras{
			TokenID: fmt.Sprint(i + 1),
			FullDescription: fmt.Sprintf("Detailed description for %s token. This token is dedicated to sustainable "+
				"and eco-friendly blockchain solutions. It offers innovative features for decentralized finance "+
				"applications focused on environmental impact reduction.", s.name),
			ChartURL: placeholderChart,
			Creator: &model.CreatorSummary{
				ID:       s.createdBy,
				Address:  Address(s.createdBy),
				Username: "Creator_" + s.createdBy,
				Avatar:   &avatar,
			},
		}
	}
	out[0].Raised = "$7.5K"
	out[0].RaiseTarget = "$2,400,000"
	return out
}

// Users returns the demo account
func Users(now time.Time) []model.User {
	avatar := "/assets/avatars/avatar-placeholder-36.svg"
	return []model.User{{
		ID:            "noname",
		Address:       Address("noname"),
		Name:          "Noname",
		Balance:       "1,234.56 USDT",
		Avatar:        &avatar,
		TokensCreated: []string{"1"},
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}}
}

// Address derives a stable lowercase wallet address from seed
func Address(seed string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(seed))
	return strings.ToLower(common.BytesToAddress(h.Sum(nil)[12:]).Hex())
}
