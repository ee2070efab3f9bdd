// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finvest-api/internal/api/handler"
	"finvest-api/internal/service"
)

// Handlers bundles every request handler the router mounts.
type Handlers struct {
	User    *handler.UserHandler
	Wallet  *handler.WalletHandler
	Holding *handler.HoldingHandler
	Funding *handler.FundingHandler
	Order   *handler.OrderHandler
	Kyc     *handler.KycHandler
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, users service.UserService, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Public routes
	r.Post("/users", h.User.Register)
	r.Post("/sessions", h.User.Login)
	r.Get("/cars", h.Order.ListCars)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(users, logger))

		r.Delete("/sessions", h.User.Logout)
		r.Get("/users/me", h.User.Me)

		r.Get("/wallet", h.Wallet.GetWalletBalance)
		r.Get("/wallet/transactions", h.Wallet.GetTransactionHistory)

		r.Route("/holdings", func(r chi.Router) {
			r.Post("/buy", h.Holding.Buy)
			r.Post("/sell", h.Holding.Sell)
			r.Get("/", h.Holding.ListHoldings)
			r.Get("/{symbol}", h.Holding.GetHolding)
		})
		r.Get("/quotes/{symbol}", h.Holding.GetQuote)

		r.Post("/deposits", h.Funding.RequestDeposit)
		r.Get("/deposits", h.Funding.ListDeposits)
		r.Post("/withdrawals", h.Funding.RequestWithdrawal)
		r.Get("/withdrawals", h.Funding.ListWithdrawals)
		r.Post("/loans", h.Funding.RequestLoan)
		r.Get("/loans", h.Funding.ListLoans)
		r.Post("/loans/{loanID}/repay", h.Funding.RepayLoan)

		r.Post("/kyc", h.Kyc.Submit)
		r.Get("/kyc/me", h.Kyc.GetOwn)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.Order.Checkout)
			r.Get("/", h.Order.ListOrders)
			r.Get("/{orderID}", h.Order.GetOrder)
			r.Post("/{orderID}/payment", h.Order.SubmitPayment)
			r.Put("/{orderID}/status", h.Order.SetOrderStatus)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Get("/users", h.User.ListUsers)
			r.Put("/deposits/{depositID}/status", h.Funding.SetDepositStatus)
			r.Put("/withdrawals/{withdrawalID}/status", h.Funding.SetWithdrawalStatus)
			r.Put("/loans/{loanID}/status", h.Funding.SetLoanStatus)
			r.Put("/kyc/{kycID}/status", h.Kyc.SetStatus)
			r.Post("/cars", h.Order.CreateCar)
		})
	})

	return r
}
