package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskbuddy-backend/internal/http/dto"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskbuddy-backend/internal/http/response"
	"github.com/ignatzorin/taskbuddy-backend/internal/usecase/wallet"
)

// WalletHandler обслуживает баланс и историю операций.
type WalletHandler struct {
	getWalletUC        *wallet.GetWalletUseCase
	listTransactionsUC *wallet.ListTransactionsUseCase
	depositUC          *wallet.DepositUseCase
	withdrawUC         *wallet.WithdrawUseCase
}

func NewWalletHandler(
	getWalletUC *wallet.GetWalletUseCase,
	listTransactionsUC *wallet.ListTransactionsUseCase,
	depositUC *wallet.DepositUseCase,
	withdrawUC *wallet.WithdrawUseCase,
) *WalletHandler {
	return &WalletHandler{
		getWalletUC:        getWalletUC,
		listTransactionsUC: listTransactionsUC,
		depositUC:          depositUC,
		withdrawUC:         withdrawUC,
	}
}

// GetWallet обрабатывает GET /api/wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	user, err := h.getWalletUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWalletResponse(user))
}

// ListTransactions обрабатывает GET /api/wallet/transactions?type=&limit=&offset=.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	limit, offset := common.GetPagination(c)
	entries, err := h.listTransactionsUC.Execute(c.Request.Context(), wallet.ListTransactionsInput{
		UserID: userID,
		Type:   c.Query("type"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToTransactionResponses(entries))
}

// Deposit обрабатывает POST /api/wallet/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "amount must be a positive integer")
		return
	}

	user, err := h.depositUC.Execute(c.Request.Context(), userID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWalletResponse(user))
}

// Withdraw обрабатывает POST /api/wallet/withdraw.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "amount must be a positive integer")
		return
	}

	user, err := h.withdrawUC.Execute(c.Request.Context(), userID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWalletResponse(user))
}
