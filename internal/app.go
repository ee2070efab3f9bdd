// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "finvest-api/internal/api"
	"finvest-api/internal/api/handler"
	"finvest-api/internal/config"
	"finvest-api/internal/market"
	"finvest-api/internal/media"
	"finvest-api/internal/notify"
	"finvest-api/internal/repository"
	"finvest-api/internal/repository/postgres"
	"finvest-api/internal/service"
	"finvest-api/internal/util"
	"finvest-api/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository        repository.UserRepository
	SessionRepository     repository.SessionRepository
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	HoldingRepository     repository.HoldingRepository
	DepositRepository     repository.DepositRepository
	WithdrawalRepository  repository.WithdrawalRepository
	LoanRepository        repository.LoanRepository
	KycRepository         repository.KycRepository
	CarRepository         repository.CarRepository
	OrderRepository       repository.OrderRepository

	// External clients and notification queue
	Quoter   market.Quoter
	Uploader media.Uploader
	Mailer   *notify.Queue

	// Services
	UserService    service.UserService
	WalletService  service.WalletService
	LedgerService  service.LedgerService
	FundingService service.FundingService
	KycService     service.KycService
	OrderService   service.OrderService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.SessionRepository = postgres.NewSessionRepository(app.DB)
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.HoldingRepository = postgres.NewHoldingRepository(app.DB)
	app.DepositRepository = postgres.NewDepositRepository(app.DB)
	app.WithdrawalRepository = postgres.NewWithdrawalRepository(app.DB)
	app.LoanRepository = postgres.NewLoanRepository(app.DB)
	app.KycRepository = postgres.NewKycRepository(app.DB)
	app.CarRepository = postgres.NewCarRepository(app.DB)
	app.OrderRepository = postgres.NewOrderRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize external clients and the notification queue
	app.Quoter = market.NewClient(app.Config.Market)
	app.Uploader = media.NewClient(app.Config.Media)
	app.Mailer = notify.NewQueue(notify.NewSMTPChannel(app.Config.SMTP), app.Logger)
	app.Logger.Info("External clients initialized.")

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.UserService = service.NewUserService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.WalletRepository,
		app.SessionRepository,
		app.Mailer,
		app.Config.SessionTTL,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.WalletService = service.NewWalletService(
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
	)
	app.LedgerService = service.NewLedgerService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.WalletRepository,
		app.HoldingRepository,
		app.TransactionRepository,
		app.Quoter,
		app.Mailer,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.FundingService = service.NewFundingService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.WalletRepository,
		app.TransactionRepository,
		app.DepositRepository,
		app.WithdrawalRepository,
		app.LoanRepository,
		app.KycRepository,
		app.Mailer,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.KycService = service.NewKycService(
		app.DB,
		app.UserRepository,
		app.KycRepository,
		app.Uploader,
		app.Mailer,
	)
	app.OrderService = service.NewOrderService(
		app.DB,
		app.DB,
		app.UserRepository,
		app.CarRepository,
		app.OrderRepository,
		app.Uploader,
		app.Mailer,
		app.Config.OrderTTL,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	handlers := router.Handlers{
		User:    handler.NewUserHandler(app.UserService, app.Logger),
		Wallet:  handler.NewWalletHandler(app.WalletService, app.Logger),
		Holding: handler.NewHoldingHandler(app.LedgerService, app.Quoter, app.Logger),
		Funding: handler.NewFundingHandler(app.FundingService, app.Logger),
		Order:   handler.NewOrderHandler(app.OrderService, app.Logger),
		Kyc:     handler.NewKycHandler(app.KycService, app.Logger),
	}
	app.HTTPHandler = router.NewRouter(handlers, app.UserService, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Mailer != nil {
		app.Mailer.Close()
		app.Logger.Info("Notification queue drained.")
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
