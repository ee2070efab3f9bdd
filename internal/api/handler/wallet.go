// internal/api/handler/wallet.go
package handler

import (
	"log/slog"
	"net/http"

	"finvest-api/internal/api/types"
	"finvest-api/internal/auth"
	"finvest-api/internal/domain"
	"finvest-api/internal/service"
)

// WalletHandler handles HTTP requests related to wallet reads.
type WalletHandler struct {
	service service.WalletService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{service: svc, logger: logger}
}

// GetWalletBalance returns the caller's wallet balance.
// GET /wallet
func (h *WalletHandler) GetWalletBalance(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	wallet, err := h.service.GetBalance(r.Context(), principal.UserID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"balance":  wallet.Balance,
		"currency": wallet.Currency,
	})
}

// GetTransactionHistory returns the caller's paginated audit history.
// GET /wallet/transactions
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())
	limit, offset := parsePagination(r)

	transactions, totalCount, err := h.service.GetTransactionHistory(r.Context(), principal.UserID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
