package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecochain/token-catalog/internal/catalog"
	"github.com/ecochain/token-catalog/internal/client"
	"github.com/ecochain/token-catalog/internal/detail"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/store"
	"github.com/ecochain/token-catalog/internal/trade"
	"github.com/ecochain/token-catalog/internal/utils"

	"github.com/spf13/pflag"
)

var errUsage = errors.New("invalid arguments")

func newFlags(name string) *pflag.FlagSet {
	return pflag.NewFlagSet(name, pflag.ContinueOnError)
}

// loadCatalog pulls every page of the remote catalog into a store
func (a *app) loadCatalog(ctx context.Context) (*store.TokenStore, error) {
	s := store.NewTokenStore()
	s.SetLoading(true)
	defer s.SetLoading(false)

	var all []model.Token
	for page := 1; ; page++ {
		list, err := a.client.ListTokens(ctx, client.ListParams{Page: page, Limit: utils.MaxLimit})
		if err != nil {
			s.SetError(err)
			return s, err
		}
		all = append(all, list.Tokens...)
		if page >= list.TotalPages || len(list.Tokens) == 0 {
			break
		}
	}

	s.SetTokens(all)
	return s, nil
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlags("list")
	search := fs.StringP("search", "s", "", "filter by name or symbol")
	sortBy := fs.String("sort", string(model.SortByCreatedAt), "price, marketCap, name or createdAt")
	order := fs.String("order", "", "asc or desc (defaults to the natural order of --sort)")
	more := fs.Int("more", 0, "number of extra pages to reveal")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	s, err := a.loadCatalog(ctx)
	if err != nil {
		return err
	}

	key := model.ParseSortKey(*sortBy)
	dir := model.ParseSortOrder(*order, key)
	filter := s.SetFilters(model.FilterPatch{Search: search, SortBy: &key, SortOrder: &dir})

	pager := catalog.NewPager(filter.PageSize)
	total := len(catalog.Filter(s.Tokens(), filter.Search))
	for i := 0; i < *more && pager.HasMore(total); i++ {
		pager.ShowMore(total)
	}

	fmt.Println(renderPage(s.View(pager.Visible(total)), filter))
	return nil
}

func runDetail(ctx context.Context, a *app, args []string) error {
	fs := newFlags("detail")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: detail takes exactly one token id", errUsage)
	}

	// An empty store makes the resolver fall through to the API.
	resolver := detail.NewResolver(store.NewTokenStore(), a.client, a.client, a.logger)
	d, err := resolver.Resolve(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Println(renderDetail(d))
	return nil
}

func runConnect(ctx context.Context, a *app, args []string) error {
	fs := newFlags("connect")
	address, signature := walletFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	session, err := a.connect(ctx, *address, *signature)
	if err != nil {
		return err
	}

	fmt.Println(renderSession(session))
	return nil
}

func (a *app) connect(ctx context.Context, address, signature string) (*model.WalletSession, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("%w: --address is required", errUsage)
	}
	if strings.TrimSpace(signature) == "" {
		return nil, fmt.Errorf("%w: --signature is required", errUsage)
	}
	return a.client.ConnectWallet(ctx, address, signature)
}

// walletFlags registers the flags every settling command needs
func walletFlags(fs *pflag.FlagSet) (address, signature *string) {
	address = fs.String("address", "", "wallet address")
	signature = fs.String("signature", "", "signed login message")
	return address, signature
}

// submit connects the wallet and settles intent through a gateway
func (a *app) submit(ctx context.Context, address, signature string, intent model.TradeIntent) (*model.Receipt, error) {
	if _, err := a.connect(ctx, address, signature); err != nil {
		return nil, err
	}
	intent.User = address

	gateway := trade.NewGateway(a.client.Settler(), a.logger)
	return gateway.Submit(ctx, intent)
}

func runTrade(kind model.IntentKind) func(ctx context.Context, a *app, args []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		fs := newFlags(string(kind))
		address, signature := walletFlags(fs)
		tokenID := fs.String("token", "", "token id")
		amount := fs.Float64("amount", 0, "quantity to trade")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}

		receipt, err := a.submit(ctx, *address, *signature, model.TradeIntent{
			Kind:     kind,
			TokenID:  *tokenID,
			Quantity: *amount,
		})
		if err != nil {
			return err
		}

		fmt.Println(renderReceipt(receipt))
		return nil
	}
}

func runCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("create")
	address, signature := walletFlags(fs)
	name := fs.String("name", "", "token name")
	symbol := fs.String("symbol", "", "ticker, uppercase letters only")
	supply := fs.Float64("supply", 0, "total emission")
	info := fs.String("info", "", "description")
	image := fs.String("image", "", "image URL")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	in := &model.CreateTokenInput{
		Name:        *name,
		Symbol:      *symbol,
		Emission:    *supply,
		Description: *info,
	}
	if *image != "" {
		in.ImageURL = image
	}

	receipt, err := a.submit(ctx, *address, *signature, model.TradeIntent{Kind: model.IntentCreate, Create: in})
	if err != nil {
		return err
	}

	fmt.Println(renderReceipt(receipt))
	return nil
}

func runLiquidity(ctx context.Context, a *app, args []string) error {
	fs := newFlags("liquidity")
	address, signature := walletFlags(fs)
	tokenID := fs.String("token", "", "token id")
	x1 := fs.Float64("x1", 0, "X1 amount")
	amount := fs.Float64("amount", 0, "token amount")
	priceUSD := fs.Float64("price-usd", 0, "token price in USD")
	priceX1 := fs.Float64("price-x1", 0, "token price in X1")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	receipt, err := a.submit(ctx, *address, *signature, model.TradeIntent{
		Kind:    model.IntentAddLiquidity,
		TokenID: *tokenID,
		Liquidity: &model.LiquidityInput{
			X1Amount:      *x1,
			TokenAmount:   *amount,
			TokenPriceUSD: *priceUSD,
			TokenPriceX1:  *priceX1,
		},
	})
	if err != nil {
		return err
	}

	fmt.Println(renderReceipt(receipt))
	return nil
}
