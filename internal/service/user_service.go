package service

import (
	"context"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/repository"

	"go.uber.org/zap"
)

// UserService handles user profiles and portfolios
type UserService struct {
	userRepo  repository.Users
	tokenRepo repository.Tokens
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.Users, tokenRepo repository.Tokens, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		logger:    logger,
	}
}

// Get returns a user by ID
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Update applies update to a user
func (s *UserService) Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	user, err := s.userRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User updated", zap.String("user_id", id))
	return user, nil
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.String("user_id", id))
	return nil
}

// Portfolio returns the tokens a user owns. Tokens removed from the catalog
// since they were added are skipped.
func (s *UserService) Portfolio(ctx context.Context, id string) ([]model.Token, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tokens := make([]model.Token, 0, len(user.TokensOwned))
	for _, tokenID := range user.TokensOwned {
		token, err := s.tokenRepo.GetByID(ctx, tokenID)
		switch {
		case apperr.KindOf(err) == apperr.KindNotFound:
			continue
		case err != nil:
			return nil, err
		}
		tokens = append(tokens, *token)
	}
	return tokens, nil
}

// AddToPortfolio records that a user owns a token
func (s *UserService) AddToPortfolio(ctx context.Context, id, tokenID string) error {
	if _, err := s.tokenRepo.GetByID(ctx, tokenID); err != nil {
		return err
	}
	return s.userRepo.AddOwned(ctx, id, tokenID)
}

// RemoveFromPortfolio drops a token from a user's portfolio
func (s *UserService) RemoveFromPortfolio(ctx context.Context, id, tokenID string) error {
	return s.userRepo.RemoveOwned(ctx, id, tokenID)
}

// MyTokens returns the tokens created by userID. An anonymous caller sees
// the whole catalog.
func (s *UserService) MyTokens(ctx context.Context, userID string) ([]model.Token, error) {
	if userID == "" {
		return s.tokenRepo.List(ctx, "")
	}
	return s.tokenRepo.ListByCreator(ctx, userID)
}
