package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/auth"
	"github.com/ecochain/token-catalog/internal/events"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/repository"
	"github.com/ecochain/token-catalog/internal/trade"
	"github.com/ecochain/token-catalog/internal/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WalletService handles wallet sessions and trades
type WalletService struct {
	userRepo   repository.Users
	walletRepo repository.Wallets
	tokenRepo  repository.Tokens
	txRepo     repository.Transactions
	registry   *trade.Registry
	issuer     *auth.Issuer
	publisher  publisher
	topics     Topics
	logger     *zap.Logger
}

// NewWalletService creates a new wallet service
func NewWalletService(
	userRepo repository.Users,
	walletRepo repository.Wallets,
	tokenRepo repository.Tokens,
	txRepo repository.Transactions,
	registry *trade.Registry,
	issuer *auth.Issuer,
	eventPublisher events.Publisher,
	topics Topics,
	logger *zap.Logger,
) *WalletService {
	return &WalletService{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		tokenRepo:  tokenRepo,
		txRepo:     txRepo,
		registry:   registry,
		issuer:     issuer,
		publisher:  publisher{events: eventPublisher, logger: logger},
		topics:     topics,
		logger:     logger,
	}
}

// Connect opens a session for a wallet, creating its user on first connect.
// The signature is accepted without verification.
func (s *WalletService) Connect(ctx context.Context, req model.WalletConnect) (*model.WalletSession, error) {
	if !validator.IsAddress(req.Address) {
		return nil, apperr.Validation(map[string]string{"address": "Invalid wallet address"})
	}
	address := validator.NormalizeAddress(req.Address)

	user, err := s.userRepo.GetByAddress(ctx, address)
	switch {
	case apperr.KindOf(err) == apperr.KindNotFound:
		now := time.Now().UTC()
		user = &model.User{
			ID:          uuid.New().String(),
			Address:     address,
			Name:        DefaultWalletName(address),
			Balance:     model.DefaultBalance,
			IsConnected: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := s.userRepo.SetConnected(ctx, user.ID, true); err != nil {
			return nil, err
		}
		user.IsConnected = true
	}

	wallet := &model.Wallet{
		Address:     address,
		UserID:      user.ID,
		PublicKey:   req.PublicKey,
		IsConnected: true,
	}
	if _, err := s.walletRepo.Get(ctx, address); apperr.KindOf(err) == apperr.KindNotFound {
		wallet.Balances = map[string]float64{"USDT": 0}
	}
	if err := s.walletRepo.Upsert(ctx, wallet); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.issuer.Issue(user.ID, address)
	if err != nil {
		s.logger.Error("Failed to issue session token", zap.String("address", address), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Wallet connected", zap.String("address", address), zap.String("user_id", user.ID))
	s.publisher.publish(ctx, s.topics.Trade, events.New(events.WalletConnected, address, map[string]string{"userId": user.ID}))

	return &model.WalletSession{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

// Disconnect marks a wallet and its user as disconnected
func (s *WalletService) Disconnect(ctx context.Context, address string) error {
	wallet, err := s.wallet(ctx, address)
	if err != nil {
		return err
	}
	if err := s.walletRepo.SetConnected(ctx, wallet.Address, false); err != nil {
		return err
	}
	if wallet.UserID != "" {
		if err := s.userRepo.SetConnected(ctx, wallet.UserID, false); err != nil && apperr.KindOf(err) != apperr.KindNotFound {
			return err
		}
	}
	s.publisher.publish(ctx, s.topics.Trade, events.New(events.WalletDisconnect, wallet.Address, nil))
	return nil
}

// Info returns the balances and owner of a wallet
func (s *WalletService) Info(ctx context.Context, address string) (*model.WalletInfo, error) {
	wallet, err := s.wallet(ctx, address)
	if err != nil {
		return nil, err
	}

	info := &model.WalletInfo{
		Address:     wallet.Address,
		PublicKey:   wallet.PublicKey,
		Balance:     wallet.Balances,
		IsConnected: wallet.IsConnected,
	}
	if wallet.UserID != "" {
		if user, err := s.userRepo.GetByID(ctx, wallet.UserID); err == nil {
			info.User = user
		}
	}
	return info, nil
}

// Transactions lists the settled transactions of a wallet, newest first
func (s *WalletService) Transactions(ctx context.Context, address string) ([]model.Transaction, error) {
	if !validator.IsAddress(address) {
		return nil, apperr.Validation(map[string]string{"address": "Invalid wallet address"})
	}
	return s.txRepo.ListByAddress(ctx, validator.NormalizeAddress(address))
}

// Buy settles a purchase of req.Amount tokens for the wallet at address
func (s *WalletService) Buy(ctx context.Context, address string, req model.TradeRequest) (*model.TradeResult, error) {
	return s.trade(ctx, model.IntentBuy, address, req)
}

// Sell settles a sale of req.Amount tokens held by the wallet at address
func (s *WalletService) Sell(ctx context.Context, address string, req model.TradeRequest) (*model.TradeResult, error) {
	return s.trade(ctx, model.IntentSell, address, req)
}

func (s *WalletService) trade(ctx context.Context, kind model.IntentKind, address string, req model.TradeRequest) (*model.TradeResult, error) {
	wallet, err := s.wallet(ctx, address)
	if err != nil {
		return nil, err
	}
	token, err := s.tokenRepo.GetByID(ctx, strings.TrimSpace(req.TokenID))
	if err != nil {
		return nil, err
	}

	intent := model.TradeIntent{
		Kind:     kind,
		TokenID:  token.ID,
		Quantity: req.Amount,
		User:     wallet.Address,
	}
	if err := validator.ValidateIntent(intent); err != nil {
		return nil, err
	}

	// Sold tokens are reserved before settling; the overdraft check in
	// AdjustBalance is atomic, so overlapping sells cannot both pass it.
	if kind == model.IntentSell {
		if err := s.walletRepo.AdjustBalance(ctx, wallet.Address, token.Symbol, -req.Amount); err != nil {
			return nil, err
		}
	}
	ctx = context.WithoutCancel(ctx)

	receipt, err := settle(ctx, s.registry, intent)
	if err != nil {
		if kind == model.IntentSell {
			s.release(ctx, wallet.Address, token.Symbol, req.Amount)
		}
		s.publisher.publish(ctx, s.topics.Trade, events.New(events.TradeFailed, wallet.Address, map[string]interface{}{
			"kind":    kind,
			"tokenId": token.ID,
			"error":   apperr.MessageOf(err),
		}))
		return nil, err
	}

	delta := receipt.Amount
	from, to := token.ContractAddress, wallet.Address
	txType := model.TxBuy
	adjust := receipt.Amount
	if kind == model.IntentSell {
		delta = -delta
		from, to = wallet.Address, token.ContractAddress
		txType = model.TxSell
		// settle the difference between the reservation and the receipt
		adjust = req.Amount - receipt.Amount
	}

	if adjust != 0 {
		if err := s.walletRepo.AdjustBalance(ctx, wallet.Address, token.Symbol, adjust); err != nil {
			s.logger.Error("Failed to apply settled trade to wallet",
				zap.String("address", wallet.Address),
				zap.String("tx_hash", receipt.TransactionHash),
				zap.Error(err))
			return nil, err
		}
	}
	if current, err := s.walletRepo.Get(ctx, wallet.Address); err == nil {
		after := current.Balances[token.Symbol]
		s.updateHolders(ctx, wallet, token, after-delta, after)
	}

	recordTransaction(ctx, s.txRepo, s.logger, &model.Transaction{
		From:            from,
		To:              to,
		TokenID:         token.ID,
		Amount:          receipt.Amount,
		TransactionHash: receipt.TransactionHash,
		Type:            txType,
	})
	s.publisher.publish(ctx, s.topics.Trade, events.New(events.TradeSettled, receipt.TransactionHash, receipt))

	return &model.TradeResult{
		TransactionHash: receipt.TransactionHash,
		Amount:          receipt.Amount,
		Token:           token.ID,
	}, nil
}

// release returns a sell reservation after a failed settlement
func (s *WalletService) release(ctx context.Context, address, asset string, amount float64) {
	if err := s.walletRepo.AdjustBalance(ctx, address, asset, amount); err != nil {
		s.logger.Error("Failed to release reserved balance",
			zap.String("address", address),
			zap.String("asset", asset),
			zap.Float64("amount", amount),
			zap.Error(err))
	}
}

// AddLiquidity settles a liquidity deposit for the wallet at address
func (s *WalletService) AddLiquidity(ctx context.Context, address string, req model.LiquidityRequest) (*model.LiquidityResult, error) {
	req.Normalize()

	wallet, err := s.wallet(ctx, address)
	if err != nil {
		return nil, err
	}
	token, err := s.tokenRepo.GetByID(ctx, strings.TrimSpace(req.TokenID))
	if err != nil {
		return nil, err
	}

	receipt, err := settle(ctx, s.registry, model.TradeIntent{
		Kind:    model.IntentAddLiquidity,
		TokenID: token.ID,
		User:    wallet.Address,
		Liquidity: &model.LiquidityInput{
			X1Amount:      req.X1Amount,
			TokenAmount:   req.NKTAmount,
			TokenPriceUSD: req.TokenPriceUSD,
			TokenPriceX1:  req.TokenPriceX1,
		},
	})
	if err != nil {
		return nil, err
	}

	recordTransaction(ctx, s.txRepo, s.logger, &model.Transaction{
		From:            wallet.Address,
		To:              token.ContractAddress,
		TokenID:         token.ID,
		Amount:          req.X1Amount,
		TransactionHash: receipt.TransactionHash,
		Type:            model.TxLiquidity,
	})
	s.publisher.publish(ctx, s.topics.Trade, events.New(events.TradeSettled, receipt.TransactionHash, receipt))

	return &model.LiquidityResult{
		TransactionHash: receipt.TransactionHash,
		X1Amount:        req.X1Amount,
		NKTAmount:       req.NKTAmount,
		TokenPriceUSD:   req.TokenPriceUSD,
		TokenPriceX1:    req.TokenPriceX1,
	}, nil
}

// updateHolders keeps the holder count and the user's portfolio in step with
// a balance moving from before to after
func (s *WalletService) updateHolders(ctx context.Context, wallet *model.Wallet, token *model.Token, before, after float64) {
	var err error
	switch {
	case before <= 0 && after > 0:
		err = s.tokenRepo.AddHolders(ctx, token.ID, 1)
		if err == nil && wallet.UserID != "" {
			err = ignoreConflict(s.userRepo.AddOwned(ctx, wallet.UserID, token.ID))
		}
	case before > 0 && after <= 0:
		err = s.tokenRepo.AddHolders(ctx, token.ID, -1)
		if err == nil && wallet.UserID != "" {
			err = s.userRepo.RemoveOwned(ctx, wallet.UserID, token.ID)
		}
	}
	if err != nil {
		s.logger.Warn("Failed to update holders", zap.String("token_id", token.ID), zap.Error(err))
	}
}

func (s *WalletService) wallet(ctx context.Context, address string) (*model.Wallet, error) {
	if strings.TrimSpace(address) == "" {
		return nil, apperr.Validationf("Wallet address is required")
	}
	if !validator.IsAddress(address) {
		return nil, apperr.Validation(map[string]string{"address": "Invalid wallet address"})
	}
	return s.walletRepo.Get(ctx, validator.NormalizeAddress(address))
}

// DefaultWalletName derives the display name given to a new wallet's user
func DefaultWalletName(address string) string {
	if len(address) < 10 {
		return "Wallet_" + address
	}
	return fmt.Sprintf("Wallet_%s...%s", address[:6], address[len(address)-4:])
}
