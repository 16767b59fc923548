package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ecochain/token-catalog/internal/middleware"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/service"
	"github.com/ecochain/token-catalog/internal/utils"
	"github.com/ecochain/token-catalog/internal/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// allowedUserUpdates lists the body keys a user update may carry
var allowedUserUpdates = map[string]bool{"name": true, "balance": true, "avatar": true}

// UserHandler handles user profiles and portfolios
type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// GetUser handles retrieving a user
// GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, user)
}

// UpdateUser handles updating a user's name, balance or avatar. Any other
// key rejects the whole update.
// PUT /v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		utils.SendError(c, validator.Translate(err))
		return
	}
	for key := range raw {
		if !allowedUserUpdates[key] {
			utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid updates!")
			return
		}
	}

	body, err := json.Marshal(raw)
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid updates!")
		return
	}
	var update model.UserUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		utils.SendError(c, validator.Translate(err))
		return
	}
	if err := validator.Struct(update); err != nil {
		utils.SendError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, user)
}

// DeleteUser handles removing a user
// DELETE /v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusOK, "User deleted successfully")
}

// GetPortfolio handles listing the tokens a user owns
// GET /v1/users/:id/portfolio
func (h *UserHandler) GetPortfolio(c *gin.Context) {
	tokens, err := h.userService.Portfolio(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	count := len(tokens)
	c.JSON(http.StatusOK, utils.Envelope{Success: true, Data: tokens, Count: &count})
}

type portfolioBody struct {
	TokenID string `json:"tokenId" binding:"required"`
}

// AddToPortfolio handles adding a token to a user's portfolio
// POST /v1/users/:id/portfolio
func (h *UserHandler) AddToPortfolio(c *gin.Context) {
	var body portfolioBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.SendError(c, validator.Translate(err))
		return
	}

	if err := h.userService.AddToPortfolio(c.Request.Context(), c.Param("id"), body.TokenID); err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusCreated, "Token added to portfolio")
}

// RemoveFromPortfolio handles removing a token from a user's portfolio
// DELETE /v1/users/:id/portfolio/:tokenId
func (h *UserHandler) RemoveFromPortfolio(c *gin.Context) {
	err := h.userService.RemoveFromPortfolio(c.Request.Context(), c.Param("id"), c.Param("tokenId"))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusOK, "Token removed from portfolio")
}

// MyTokens handles listing the tokens created by the session's user
// GET /v1/users/me/tokens
func (h *UserHandler) MyTokens(c *gin.Context) {
	tokens, err := h.userService.MyTokens(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	count := len(tokens)
	c.JSON(http.StatusOK, utils.Envelope{Success: true, Data: tokens, Count: &count})
}
