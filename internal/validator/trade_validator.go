package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"
)

const (
	// MaxEmission is the largest total supply a token may be created with
	MaxEmission = 1e12
	// MinPriceUSD is the smallest USD price accepted when adding liquidity
	MinPriceUSD = 0.0001
	// MinPriceX1 is the smallest X1 price accepted when adding liquidity
	MinPriceX1 = 0.01
)

var symbolPattern = regexp.MustCompile(`^[A-Z]+$`)

// ValidateIntent checks a trade intent before it is dispatched for settlement.
// Field errors are collected into a single apperr validation error.
func ValidateIntent(intent model.TradeIntent) error {
	return validateIntent(intent, createFields)
}

// ValidateCatalogIntent checks an intent submitted through the catalog API.
// Creates follow the endpoint rules instead of the create form: name 3-50,
// symbol 2-10, a positive total supply and an optional description of at
// most 1000 characters, keyed by the request field names.
func ValidateCatalogIntent(intent model.TradeIntent) error {
	return validateIntent(intent, catalogCreateFields)
}

func validateIntent(intent model.TradeIntent, create func(map[string]string, model.CreateTokenInput)) error {
	fields := map[string]string{}

	switch intent.Kind {
	case model.IntentBuy, model.IntentSell:
		if strings.TrimSpace(intent.TokenID) == "" {
			fields["tokenId"] = "Token is required"
		}
		checkQuantity(fields, intent.Quantity)

	case model.IntentCreate:
		if intent.Create == nil {
			fields["create"] = "Token details are required"
			break
		}
		create(fields, *intent.Create)

	case model.IntentAddLiquidity:
		if strings.TrimSpace(intent.TokenID) == "" {
			fields["tokenId"] = "Token is required"
		}
		if intent.Liquidity == nil {
			fields["liquidity"] = "Liquidity amounts are required"
			break
		}
		liquidityFields(fields, *intent.Liquidity)

	default:
		fields["kind"] = "Unknown action"
	}

	if intent.User != "" && !IsAddress(intent.User) {
		fields["user"] = "Invalid wallet address"
	}

	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// ValidateCreateToken checks the fields of a token creation form
func ValidateCreateToken(in model.CreateTokenInput) error {
	fields := map[string]string{}
	createFields(fields, in)
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// ValidateLiquidity checks the fields of an add-liquidity form
func ValidateLiquidity(in model.LiquidityInput) error {
	fields := map[string]string{}
	liquidityFields(fields, in)
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func checkQuantity(fields map[string]string, q float64) {
	if !(q > 0) {
		fields["quantity"] = "Amount must be greater than 0"
	}
}

func nameFields(fields map[string]string, name string) {
	switch n := utf8.RuneCountInString(strings.TrimSpace(name)); {
	case n == 0:
		fields["name"] = "Name is required"
	case n < 3:
		fields["name"] = "Name must be at least 3 characters"
	case n > 50:
		fields["name"] = "Name must be less than 50 characters"
	}
}

func createFields(fields map[string]string, in model.CreateTokenInput) {
	nameFields(fields, in.Name)

	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	switch n := utf8.RuneCountInString(symbol); {
	case n == 0:
		fields["symbol"] = "Symbol is required"
	case n < 2:
		fields["symbol"] = "Symbol must be at least 2 characters"
	case n > 10:
		fields["symbol"] = "Symbol must be less than 10 characters"
	case !symbolPattern.MatchString(symbol):
		fields["symbol"] = "Symbol must contain only letters"
	}

	switch {
	case !(in.Emission > 0):
		fields["emission"] = "Emission must be a positive number"
	case in.Emission > MaxEmission:
		fields["emission"] = "Emission too large"
	}

	info := strings.TrimSpace(in.Description)
	switch n := utf8.RuneCountInString(info); {
	case n == 0:
		fields["info"] = "Description is required"
	case n < 10:
		fields["info"] = "Description must be at least 10 characters"
	case n > 1000:
		fields["info"] = "Description must be less than 1000 characters"
	}
}

func catalogCreateFields(fields map[string]string, in model.CreateTokenInput) {
	nameFields(fields, in.Name)

	symbol := strings.TrimSpace(in.Symbol)
	switch n := utf8.RuneCountInString(symbol); {
	case n == 0:
		fields["symbol"] = "Symbol is required"
	case n < 2:
		fields["symbol"] = "Symbol must be at least 2 characters"
	case n > 10:
		fields["symbol"] = "Symbol must be less than 10 characters"
	}

	if !(in.Emission > 0) {
		fields["totalSupply"] = "Total supply must be greater than 0"
	}

	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) > 1000 {
		fields["description"] = "Description must be less than 1000 characters"
	}
}

func liquidityFields(fields map[string]string, in model.LiquidityInput) {
	if !(in.X1Amount > 0) {
		fields["x1Amount"] = "Amount must be greater than 0"
	}
	if !(in.TokenAmount > 0) {
		fields["tokenAmount"] = "Amount must be greater than 0"
	}
	if !(in.TokenPriceUSD >= MinPriceUSD) {
		fields["tokenPriceUSD"] = "Price must be at least 0.0001"
	}
	if !(in.TokenPriceX1 >= MinPriceX1) {
		fields["tokenPriceX1"] = "Price must be at least 0.01"
	}
}
