package client

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/trade"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// CatalogClient handles communication with the token catalog API. It serves
// as the detail fetcher and trade settler of the terminal client.
type CatalogClient struct {
	client *resty.Client
	logger *zap.Logger
}

// ListParams selects a page of the remote catalog
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    model.SortKey
	SortOrder model.SortOrder
}

// TokenList is one page of the remote catalog
type TokenList struct {
	Tokens     []model.Token
	// Count is the number of tokens on this page
	Count      int
	Page       int
	TotalPages int
}

// NewCatalogClient creates a client for the API at baseURL. Requests are not
// retried so that a trade is never submitted twice.
func NewCatalogClient(baseURL string, timeout time.Duration, logger *zap.Logger) *CatalogClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &CatalogClient{client: client, logger: logger}
}

// SetSession attaches a wallet session token to subsequent requests
func (c *CatalogClient) SetSession(token string) {
	c.client.SetAuthToken(token)
}

func (c *CatalogClient) read(ctx context.Context) *resty.Request {
	return c.client.R().SetContext(ctx)
}

// ListTokens fetches one page of the catalog
func (c *CatalogClient) ListTokens(ctx context.Context, p ListParams) (*TokenList, error) {
	req := c.read(ctx)
	if p.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		req.SetQueryParam("search", p.Search)
	}
	if p.SortBy != "" {
		req.SetQueryParam("sortBy", string(p.SortBy))
	}
	if p.SortOrder != "" {
		req.SetQueryParam("sortOrder", string(p.SortOrder))
	}

	var tokens []model.Token
	resp, err := req.Get("/v1/tokens")
	env, err := decode(resp, err, &tokens)
	if err != nil {
		c.logger.Warn("Failed to list tokens", zap.Error(err))
		return nil, err
	}

	return &TokenList{Tokens: tokens, Count: env.Count, Page: env.Page, TotalPages: env.TotalPages}, nil
}

// FetchDetail fetches the merged detail record of id
func (c *CatalogClient) FetchDetail(ctx context.Context, id string) (*model.TokenDetail, error) {
	var detail model.TokenDetail
	resp, err := c.read(ctx).SetPathParam("id", id).Get("/v1/tokens/{id}")
	if _, err := decode(resp, err, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FetchToken implements detail.Fetcher
func (c *CatalogClient) FetchToken(ctx context.Context, id string) (*model.Token, error) {
	d, err := c.FetchDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	t := d.Token
	return &t, nil
}

// FetchExtras implements detail.ExtrasSource
func (c *CatalogClient) FetchExtras(ctx context.Context, id string) (*model.DetailExtras, error) {
	d, err := c.FetchDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.DetailExtras{
		TokenID:         d.ID,
		FullDescription: d.FullDescription,
		ChartURL:        d.ChartURL,
		Raised:          d.Raised,
		RaiseTarget:     d.RaiseTarget,
		Creator:         d.Creator,
	}, nil
}

// ConnectWallet opens a wallet session and attaches its token to the client
func (c *CatalogClient) ConnectWallet(ctx context.Context, address, signature string) (*model.WalletSession, error) {
	var session model.WalletSession
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(model.WalletConnect{Address: address, Signature: signature}).
		Post("/v1/wallet/connect")
	if _, err := decode(resp, err, &session); err != nil {
		return nil, err
	}
	c.SetSession(session.Token)
	return &session, nil
}

// Settler returns a trade.Settler that submits intents to the API
func (c *CatalogClient) Settler() trade.Settler {
	return trade.SettlerFunc(c.settle)
}

func (c *CatalogClient) settle(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
	switch intent.Kind {
	case model.IntentBuy, model.IntentSell:
		var result model.TradeResult
		resp, err := c.client.R().
			SetContext(ctx).
			SetBody(model.TradeRequest{TokenID: intent.TokenID, Amount: intent.Quantity}).
			Post("/v1/wallet/" + string(intent.Kind))
		if _, err := decode(resp, err, &result); err != nil {
			return nil, err
		}
		return &model.Receipt{
			TransactionHash: result.TransactionHash,
			Kind:            intent.Kind,
			TokenID:         intent.TokenID,
			Amount:          result.Amount,
			SettledAt:       time.Now().UTC(),
		}, nil

	case model.IntentAddLiquidity:
		if intent.Liquidity == nil {
			return nil, apperr.Validationf("Liquidity details are required")
		}
		var result model.LiquidityResult
		resp, err := c.client.R().
			SetContext(ctx).
			SetBody(model.LiquidityRequest{
				TokenID:       intent.TokenID,
				X1Amount:      intent.Liquidity.X1Amount,
				NKTAmount:     intent.Liquidity.TokenAmount,
				TokenPriceUSD: intent.Liquidity.TokenPriceUSD,
				TokenPriceX1:  intent.Liquidity.TokenPriceX1,
			}).
			Post("/v1/wallet/add-liquidity")
		if _, err := decode(resp, err, &result); err != nil {
			return nil, err
		}
		return &model.Receipt{
			TransactionHash: result.TransactionHash,
			Kind:            intent.Kind,
			TokenID:         intent.TokenID,
			Amount:          result.X1Amount,
			SettledAt:       time.Now().UTC(),
		}, nil

	case model.IntentCreate:
		if intent.Create == nil {
			return nil, apperr.Validationf("Token details are required")
		}
		var token model.Token
		resp, err := c.client.R().
			SetContext(ctx).
			SetBody(model.TokenCreate{
				Name:        intent.Create.Name,
				Symbol:      intent.Create.Symbol,
				Description: intent.Create.Description,
				TotalSupply: intent.Create.Emission,
				ImageURL:    intent.Create.ImageURL,
			}).
			Post("/v1/tokens")
		if _, err := decode(resp, err, &token); err != nil {
			return nil, err
		}
		return &model.Receipt{
			TransactionHash: resp.Header().Get(TxHashHeader),
			Kind:            intent.Kind,
			TokenID:         token.ID,
			Amount:          intent.Create.Emission,
			ContractAddress: token.ContractAddress,
			SettledAt:       time.Now().UTC(),
		}, nil
	}

	return nil, apperr.Validationf("Unknown action")
}
