// internal/api/handler/funding.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"finvest-api/internal/api/types"
	"finvest-api/internal/auth"
	"finvest-api/internal/domain"
	"finvest-api/internal/service"
	"finvest-api/internal/util"
)

// FundingHandler handles HTTP requests for deposits, withdrawals and loans.
type FundingHandler struct {
	service service.FundingService
	logger  *slog.Logger
}

// NewFundingHandler creates a new FundingHandler.
func NewFundingHandler(svc service.FundingService, logger *slog.Logger) *FundingHandler {
	return &FundingHandler{service: svc, logger: logger}
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

type withdrawalRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Destination string          `json:"destination"`
}

type loanRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	TermMonths int             `json:"term_months"`
	Purpose    string          `json:"purpose"`
}

type repayRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func parseFundingStatus(raw string) (domain.FundingStatus, error) {
	switch strings.ToUpper(raw) {
	case string(domain.FundingStatusApproved):
		return domain.FundingStatusApproved, nil
	case string(domain.FundingStatusRejected):
		return domain.FundingStatusRejected, nil
	default:
		return "", util.ErrInvalidInput
	}
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.ErrInvalidInput
	}
	return id, nil
}

// RequestDeposit creates a pending deposit request.
// POST /deposits
func (h *FundingHandler) RequestDeposit(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	deposit, err := h.service.RequestDeposit(r.Context(), principal.UserID, req.Amount, req.Method)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, deposit)
}

// SetDepositStatus approves or rejects a deposit. Admin only.
// PUT /deposits/{depositID}/status
func (h *FundingHandler) SetDepositStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "depositID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	status, err := parseFundingStatus(req.Status)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	deposit, err := h.service.SetDepositStatus(r.Context(), id, status)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, deposit)
}

// ListDeposits returns the caller's deposit requests.
// GET /deposits
func (h *FundingHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())
	limit, offset := parsePagination(r)

	deposits, totalCount, err := h.service.ListDeposits(r.Context(), principal.UserID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.Deposit]{
		Data:       deposits,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}

// RequestWithdrawal creates a pending withdrawal and debits the wallet.
// POST /withdrawals
func (h *FundingHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	withdrawal, err := h.service.RequestWithdrawal(r.Context(), principal.UserID, req.Amount, req.Destination)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, withdrawal)
}

// SetWithdrawalStatus approves or rejects a withdrawal. Admin only.
// PUT /withdrawals/{withdrawalID}/status
func (h *FundingHandler) SetWithdrawalStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "withdrawalID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	status, err := parseFundingStatus(req.Status)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	withdrawal, err := h.service.SetWithdrawalStatus(r.Context(), id, status)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, withdrawal)
}

// ListWithdrawals returns the caller's withdrawal requests.
// GET /withdrawals
func (h *FundingHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())
	limit, offset := parsePagination(r)

	withdrawals, totalCount, err := h.service.ListWithdrawals(r.Context(), principal.UserID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.Withdrawal]{
		Data:       withdrawals,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}

// RequestLoan creates a pending loan application.
// POST /loans
func (h *FundingHandler) RequestLoan(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	loan, err := h.service.RequestLoan(r.Context(), principal.UserID, req.Amount, req.TermMonths, req.Purpose)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, loan)
}

// SetLoanStatus approves or rejects a loan. Admin only.
// PUT /loans/{loanID}/status
func (h *FundingHandler) SetLoanStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "loanID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	status, err := parseFundingStatus(req.Status)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	loan, err := h.service.SetLoanStatus(r.Context(), id, status)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, loan)
}

// RepayLoan pays down an approved loan from the caller's wallet.
// POST /loans/{loanID}/repay
func (h *FundingHandler) RepayLoan(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())

	id, err := parseIDParam(r, "loanID")
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req repayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	loan, err := h.service.RepayLoan(r.Context(), principal.UserID, id, req.Amount)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, loan)
}

// ListLoans returns the caller's loans.
// GET /loans
func (h *FundingHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.FromContext(r.Context())
	limit, offset := parsePagination(r)

	loans, totalCount, err := h.service.ListLoans(r.Context(), principal.UserID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.Loan]{
		Data:       loans,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
