// internal/api/handler/holding.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"finvest-api/internal/auth"
	"finvest-api/internal/domain"
	"finvest-api/internal/market"
	"finvest-api/internal/service"
	"finvest-api/internal/util"
)

// HoldingHandler handles HTTP requests for positions and trades.
type HoldingHandler struct {
	service service.LedgerService
	quoter  market.Quoter
	logger  *slog.Logger
}

// NewHoldingHandler creates a new HoldingHandler.
func NewHoldingHandler(svc service.LedgerService, quoter market.Quoter, logger *slog.Logger) *HoldingHandler {
	return &HoldingHandler{service: svc, quoter: quoter, logger: logger}
}

type tradeRequest struct {
	Symbol   string          `json:"symbol"`
	Kind     string          `json:"kind"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fees     decimal.Decimal `json:"fees"`
}

type tradeResponse struct {
	Holding     *domain.Holding     `json:"holding"`
	Transaction *domain.Transaction `json:"transaction"`
}

// Buy records a purchase and merges it into the caller's position.
// POST /holdings/buy
func (h *HoldingHandler) Buy(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	kind := domain.AssetKindStock
	if req.Kind != "" {
		switch strings.ToUpper(req.Kind) {
		case string(domain.AssetKindStock):
			kind = domain.AssetKindStock
		case string(domain.AssetKindPlan):
			kind = domain.AssetKindPlan
		default:
			respondWithError(w, h.logger, util.ErrInvalidInput)
			return
		}
	}

	holding, transaction, err := h.service.Buy(r.Context(), principal.UserID, req.Symbol, kind, req.Quantity, req.Price, req.Fees)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, tradeResponse{Holding: holding, Transaction: transaction})
}

// Sell removes quantity from the caller's position and credits the
// proceeds to their wallet.
// POST /holdings/sell
func (h *HoldingHandler) Sell(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	holding, transaction, err := h.service.Sell(r.Context(), principal.UserID, req.Symbol, req.Quantity, req.Price, req.Fees)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, tradeResponse{Holding: holding, Transaction: transaction})
}

// ListHoldings returns all of the caller's open positions.
// GET /holdings
func (h *HoldingHandler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	holdings, err := h.service.ListHoldings(r.Context(), principal.UserID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{"holdings": holdings})
}

// GetHolding returns one position together with its purchase history.
// GET /holdings/{symbol}
func (h *HoldingHandler) GetHolding(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())
	symbol := chi.URLParam(r, "symbol")

	holding, lots, err := h.service.GetHolding(r.Context(), principal.UserID, symbol)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"holding":          holding,
		"purchase_history": lots,
	})
}

// GetQuote returns the current market price for a symbol.
// GET /quotes/{symbol}
func (h *HoldingHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if symbol == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	price, err := h.quoter.Quote(r.Context(), symbol)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"price":  price,
	})
}
