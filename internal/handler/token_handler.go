package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/client"
	"github.com/ecochain/token-catalog/internal/middleware"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/service"
	"github.com/ecochain/token-catalog/internal/storage"
	"github.com/ecochain/token-catalog/internal/utils"
	"github.com/ecochain/token-catalog/internal/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadLimits bounds image uploads
type UploadLimits struct {
	MaxSize      int64
	AllowedTypes []string
}

// TokenHandler handles token HTTP requests
type TokenHandler struct {
	tokenService  *service.TokenService
	walletService *service.WalletService
	userService   *service.UserService
	limits        UploadLimits
	logger        *zap.Logger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(
	tokenService *service.TokenService,
	walletService *service.WalletService,
	userService *service.UserService,
	limits UploadLimits,
	logger *zap.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenService:  tokenService,
		walletService: walletService,
		userService:   userService,
		limits:        limits,
		logger:        logger,
	}
}

// ListTokens handles retrieving the catalog with search, sorting and pagination
// GET /v1/tokens
func (h *TokenHandler) ListTokens(c *gin.Context) {
	params := utils.ParsePaginationParams(c, utils.DefaultLimit, utils.MaxLimit)

	sortBy := c.Query("sortBy")
	if sortBy == "" {
		sortBy = c.Query("sort")
	}
	key := model.ParseSortKey(sortBy)

	filter := model.CatalogFilter{
		Search:    c.Query("search"),
		SortBy:    key,
		SortOrder: model.ParseSortOrder(c.Query("sortOrder"), key),
		PageSize:  params.Limit,
	}

	page, err := h.tokenService.List(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		h.logger.Error("Failed to list tokens", zap.Error(err))
		utils.SendError(c, err)
		return
	}

	utils.SendPaginatedResponse(c, http.StatusOK, page.Items, len(page.Items), page.Page, page.TotalPages)
}

// GetToken handles retrieving the detail record of a token
// GET /v1/tokens/:id
func (h *TokenHandler) GetToken(c *gin.Context) {
	detail, err := h.tokenService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, detail)
}

// CreateToken handles creating a token. The settlement hash is returned in
// the X-Transaction-Hash header.
// POST /v1/tokens
func (h *TokenHandler) CreateToken(c *gin.Context) {
	var req model.TokenCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, validator.Translate(err))
		return
	}

	creator, err := h.caller(c)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	token, hash, err := h.tokenService.Create(c.Request.Context(), req, creator)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			h.logger.Error("Failed to create token", zap.Error(err))
		}
		utils.SendError(c, err)
		return
	}

	c.Header(client.TxHashHeader, hash)
	c.JSON(http.StatusCreated, utils.Envelope{
		Success: true,
		Message: "Token created successfully",
		Data:    token,
	})
}

// UpdateToken handles updating the mutable fields of a token
// PUT /v1/tokens/:id
func (h *TokenHandler) UpdateToken(c *gin.Context) {
	var update model.TokenUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.SendError(c, validator.Translate(err))
		return
	}

	token, err := h.tokenService.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, token)
}

// DeleteToken handles removing a token
// DELETE /v1/tokens/:id
func (h *TokenHandler) DeleteToken(c *gin.Context) {
	if err := h.tokenService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusOK, "Token deleted successfully")
}

// UploadImage handles uploading a token image
// POST /v1/tokens/:id/image
func (h *TokenHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if h.limits.MaxSize > 0 && header.Size > h.limits.MaxSize {
		utils.SendErrorResponse(c, http.StatusBadRequest,
			fmt.Sprintf("File too large (max %dMB)", h.limits.MaxSize/(1024*1024)))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !h.allowedType(contentType) {
		utils.SendErrorResponse(c, http.StatusBadRequest,
			"Invalid file type (allowed: "+strings.Join(h.limits.AllowedTypes, ", ")+")")
		return
	}

	token, err := h.tokenService.UploadImage(c.Request.Context(), c.Param("id"), storage.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, token)
}

// ListByCreator handles retrieving the tokens created by a user
// GET /v1/tokens/user/:userId
func (h *TokenHandler) ListByCreator(c *gin.Context) {
	tokens, err := h.tokenService.ListByCreator(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	count := len(tokens)
	c.JSON(http.StatusOK, utils.Envelope{Success: true, Data: tokens, Count: &count})
}

// AddLiquidity handles adding liquidity to the token in the path
// POST /v1/tokens/:id/liquidity
func (h *TokenHandler) AddLiquidity(c *gin.Context) {
	var req model.LiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, validator.Translate(err))
		return
	}
	req.TokenID = c.Param("id")

	result, err := h.walletService.AddLiquidity(c.Request.Context(), tradeAddress(c, req.Address), req)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Envelope{
		Success: true,
		Message: "Liquidity added successfully",
		Data:    result,
	})
}

func (h *TokenHandler) allowedType(contentType string) bool {
	if len(h.limits.AllowedTypes) == 0 {
		return storage.IsImage(contentType)
	}
	for _, t := range h.limits.AllowedTypes {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

// caller returns the user behind the request session, nil when anonymous
func (h *TokenHandler) caller(c *gin.Context) (*model.User, error) {
	id := middleware.CallerID(c)
	if id == "" {
		return nil, nil
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return nil, nil
	}
	return user, err
}

// tradeAddress picks the session wallet, falling back to the address named
// in the request body
func tradeAddress(c *gin.Context, bodyAddress string) string {
	if addr := middleware.CallerAddress(c); addr != "" {
		return addr
	}
	return bodyAddress
}
