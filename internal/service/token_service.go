package service

import (
	"context"
	"strings"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/catalog"
	"github.com/ecochain/token-catalog/internal/detail"
	"github.com/ecochain/token-catalog/internal/events"
	"github.com/ecochain/token-catalog/internal/metrics"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/repository"
	"github.com/ecochain/token-catalog/internal/storage"
	"github.com/ecochain/token-catalog/internal/trade"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultDescription = "No description provided"
	anonymousCreator   = "anonymous"
	launchPrice        = 0.1
)

// TokenService handles catalog operations
type TokenService struct {
	tokenRepo repository.Tokens
	userRepo  repository.Users
	txRepo    repository.Transactions
	resolver  *detail.Resolver
	registry  *trade.Registry
	media     storage.Storage
	publisher publisher
	topics    Topics
	logger    *zap.Logger
}

// NewTokenService creates a new token service. media may be nil when image
// uploads are disabled.
func NewTokenService(
	tokenRepo repository.Tokens,
	userRepo repository.Users,
	txRepo repository.Transactions,
	registry *trade.Registry,
	media storage.Storage,
	eventPublisher events.Publisher,
	topics Topics,
	logger *zap.Logger,
) *TokenService {
	source := repoSource{tokens: tokenRepo}
	return &TokenService{
		tokenRepo: tokenRepo,
		userRepo:  userRepo,
		txRepo:    txRepo,
		resolver:  detail.NewResolver(nil, source, source, logger),
		registry:  registry,
		media:     media,
		publisher: publisher{events: eventPublisher, logger: logger},
		topics:    topics,
		logger:    logger,
	}
}

// List returns one page of the catalog under filter
func (s *TokenService) List(ctx context.Context, filter model.CatalogFilter, page, limit int) (catalog.IndexedPage, error) {
	tokens, err := s.tokenRepo.List(ctx, filter.Search)
	if err != nil {
		return catalog.IndexedPage{}, err
	}
	return catalog.PageAt(tokens, filter, page, limit), nil
}

// Get returns the merged detail record of a token
func (s *TokenService) Get(ctx context.Context, id string) (*model.TokenDetail, error) {
	return s.resolver.Resolve(ctx, id)
}

// ListByCreator returns the tokens created by creator, newest first
func (s *TokenService) ListByCreator(ctx context.Context, creator string) ([]model.Token, error) {
	return s.tokenRepo.ListByCreator(ctx, creator)
}

// Create settles a token creation for creator and adds the token to the
// catalog. creator is nil for anonymous requests. The settlement hash is
// returned with the token.
func (s *TokenService) Create(ctx context.Context, req model.TokenCreate, creator *model.User) (*model.Token, string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = defaultDescription
	}

	if err := s.ensureSymbolFree(ctx, symbol); err != nil {
		return nil, "", err
	}

	imageURL := req.ImageURL
	if imageURL == nil {
		imageURL = req.Logo
	}

	intent := model.TradeIntent{
		Kind: model.IntentCreate,
		Create: &model.CreateTokenInput{
			Name:        strings.TrimSpace(req.Name),
			Symbol:      symbol,
			Emission:    req.TotalSupply,
			Description: description,
			ImageURL:    imageURL,
		},
	}
	createdBy := anonymousCreator
	if creator != nil {
		intent.User = creator.Address
		createdBy = creator.ID
	}

	receipt, err := settle(ctx, s.registry, intent)
	if err != nil {
		return nil, "", err
	}

	circulating := req.TotalSupply
	if req.CirculatingSupply != nil {
		circulating = *req.CirculatingSupply
	}
	decimals := model.DefaultDecimals
	if req.Decimals != nil {
		decimals = *req.Decimals
	}

	token := &model.Token{
		ID:                uuid.New().String(),
		Name:              intent.Create.Name,
		Symbol:            symbol,
		ImageURL:          imageURL,
		Price:             launchPrice,
		MarketCap:         "$0",
		Volume:            "$0",
		Holders:           1,
		Blockchain:        model.DefaultBlockchain,
		CreatedBy:         createdBy,
		CreatedAt:         time.Now().UTC(),
		Description:       description,
		ContractAddress:   receipt.ContractAddress,
		TotalSupply:       req.TotalSupply,
		CirculatingSupply: circulating,
		Decimals:          decimals,
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, "", err
	}
	metrics.TokensCreated.Inc()

	extras := &model.DetailExtras{TokenID: token.ID, FullDescription: description, Raised: "$0"}
	if creator != nil {
		extras.Creator = &model.CreatorSummary{
			ID:       creator.ID,
			Address:  creator.Address,
			Username: creator.Name,
			Avatar:   creator.Avatar,
		}
		if err := s.userRepo.AddCreated(ctx, creator.ID, token.ID); err != nil {
			s.logger.Warn("Failed to record created token", zap.String("user_id", creator.ID), zap.Error(err))
		}
	}
	if err := s.tokenRepo.SaveExtras(ctx, extras); err != nil {
		s.logger.Warn("Failed to save token details", zap.String("token_id", token.ID), zap.Error(err))
	}

	s.record(ctx, &model.Transaction{
		From:            intent.User,
		To:              token.ContractAddress,
		TokenID:         token.ID,
		Amount:          req.TotalSupply,
		TransactionHash: receipt.TransactionHash,
		Type:            model.TxCreate,
	})

	s.logger.Info("Token created",
		zap.String("id", token.ID),
		zap.String("symbol", token.Symbol),
		zap.String("created_by", token.CreatedBy))
	s.publisher.publish(ctx, s.topics.Token, events.New(events.TokenCreated, token.ID, token))

	return token, receipt.TransactionHash, nil
}

// Update applies the mutable fields of update to a token
func (s *TokenService) Update(ctx context.Context, id string, update model.TokenUpdate) (*model.Token, error) {
	token, err := s.tokenRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.publisher.publish(ctx, s.topics.Token, events.New(events.TokenUpdated, token.ID, token))
	return token, nil
}

// Delete removes a token from the catalog
func (s *TokenService) Delete(ctx context.Context, id string) error {
	if err := s.tokenRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.publish(ctx, s.topics.Token, events.New(events.TokenDeleted, id, map[string]string{"id": id}))
	return nil
}

// UploadImage stores an image for a token and points the token at it
func (s *TokenService) UploadImage(ctx context.Context, id string, upload storage.Upload) (*model.Token, error) {
	if s.media == nil {
		return nil, apperr.Validationf("Image uploads are disabled")
	}
	if _, err := s.tokenRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	file, err := s.media.Store(ctx, upload, "tokens", id)
	if err != nil {
		s.logger.Error("Failed to store token image", zap.String("token_id", id), zap.Error(err))
		return nil, err
	}

	return s.Update(ctx, id, model.TokenUpdate{ImageURL: &file.URL})
}

func (s *TokenService) ensureSymbolFree(ctx context.Context, symbol string) error {
	matches, err := s.tokenRepo.List(ctx, symbol)
	if err != nil {
		return err
	}
	for _, t := range matches {
		if strings.EqualFold(t.Symbol, symbol) {
			return apperr.Conflict("Token symbol already exists")
		}
	}
	return nil
}

func (s *TokenService) record(ctx context.Context, tx *model.Transaction) {
	recordTransaction(ctx, s.txRepo, s.logger, tx)
}

// recordTransaction stores a confirmed settlement. Failures are logged: the
// trade itself has already settled.
func recordTransaction(ctx context.Context, repo repository.Transactions, logger *zap.Logger, tx *model.Transaction) {
	if repo == nil {
		return
	}
	tx.ID = uuid.New().String()
	tx.From = strings.ToLower(tx.From)
	tx.To = strings.ToLower(tx.To)
	tx.Status = model.TxConfirmed
	tx.Fee = model.DefaultTransactionFee
	tx.Timestamp = time.Now().UTC()

	if err := repo.Create(ctx, tx); err != nil {
		logger.Error("Failed to record transaction",
			zap.String("hash", tx.TransactionHash),
			zap.String("type", string(tx.Type)),
			zap.Error(err))
	}
}
