package handler

import (
	"context"
	"net/http"

	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/service"
	"github.com/ecochain/token-catalog/internal/utils"
	"github.com/ecochain/token-catalog/internal/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WalletHandler handles wallet sessions and trades
type WalletHandler struct {
	walletService *service.WalletService
	logger        *zap.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletService *service.WalletService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

type addressBody struct {
	Address string `json:"address"`
}

// Connect handles connecting a wallet
// POST /v1/wallet/connect
func (h *WalletHandler) Connect(c *gin.Context) {
	var req model.WalletConnect
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, validator.Translate(err))
		return
	}

	session, err := h.walletService.Connect(c.Request.Context(), req)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Envelope{
		Success: true,
		Message: "Wallet connected successfully",
		Data:    session,
	})
}

// Disconnect handles disconnecting a wallet
// POST /v1/wallet/disconnect
func (h *WalletHandler) Disconnect(c *gin.Context) {
	var body addressBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.SendError(c, validator.Translate(err))
			return
		}
	}

	if err := h.walletService.Disconnect(c.Request.Context(), tradeAddress(c, body.Address)); err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendMessage(c, http.StatusOK, "Wallet disconnected successfully")
}

// Info handles retrieving wallet balances
// GET /v1/wallet
func (h *WalletHandler) Info(c *gin.Context) {
	info, err := h.walletService.Info(c.Request.Context(), tradeAddress(c, c.Query("address")))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, info)
}

// Transactions handles listing the settled transactions of a wallet
// GET /v1/wallet/transactions
func (h *WalletHandler) Transactions(c *gin.Context) {
	txs, err := h.walletService.Transactions(c.Request.Context(), tradeAddress(c, c.Query("address")))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	count := len(txs)
	c.JSON(http.StatusOK, utils.Envelope{Success: true, Data: txs, Count: &count})
}

// Buy handles buying a token
// POST /v1/wallet/buy
func (h *WalletHandler) Buy(c *gin.Context) {
	h.trade(c, "Purchase successful", h.walletService.Buy)
}

// Sell handles selling a token
// POST /v1/wallet/sell
func (h *WalletHandler) Sell(c *gin.Context) {
	h.trade(c, "Sale successful", h.walletService.Sell)
}

// AddLiquidity handles adding liquidity to the token named in the body
// POST /v1/wallet/add-liquidity
func (h *WalletHandler) AddLiquidity(c *gin.Context) {
	var req model.LiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, validator.Translate(err))
		return
	}

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

type tradeFunc func(ctx context.Context, address string, req model.TradeRequest) (*model.TradeResult, error)

func (h *WalletHandler) trade(c *gin.Context, message string, settle tradeFunc) {
	var req model.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, validator.Translate(err))
		return
	}

	result, err := settle(c.Request.Context(), tradeAddress(c, req.Address), req)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Envelope{
		Success: true,
		Message: message,
		Data:    result,
	})
}
