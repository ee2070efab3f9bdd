// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"finvest-api/internal/domain"
	"finvest-api/internal/repository"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController. It embeds
// MockDBExecutor so the service's cast to repository.DBExecutor succeeds.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, q repository.DBExecutor, email string) (*domain.User, error) {
	args := m.Called(ctx, q, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, q repository.DBExecutor, limit, offset int) ([]domain.User, int64, error) {
	args := m.Called(ctx, q, limit, offset)
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, walletID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, q, walletID, amount)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

// MockHoldingRepository is a mock implementation of repository.HoldingRepository.
type MockHoldingRepository struct {
	mock.Mock
}

func (m *MockHoldingRepository) CreateHolding(ctx context.Context, q repository.DBExecutor, holding *domain.Holding) error {
	args := m.Called(ctx, q, holding)
	return args.Error(0)
}

func (m *MockHoldingRepository) GetHolding(ctx context.Context, q repository.DBExecutor, userID int64, symbol string) (*domain.Holding, error) {
	args := m.Called(ctx, q, userID, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Holding), args.Error(1)
}

func (m *MockHoldingRepository) GetHoldingForUpdate(ctx context.Context, q repository.DBExecutor, userID int64, symbol string) (*domain.Holding, error) {
	args := m.Called(ctx, q, userID, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Holding), args.Error(1)
}

func (m *MockHoldingRepository) UpdateHolding(ctx context.Context, q repository.DBExecutor, holding *domain.Holding) error {
	args := m.Called(ctx, q, holding)
	return args.Error(0)
}

func (m *MockHoldingRepository) DeleteHolding(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *MockHoldingRepository) ListHoldingsByUserID(ctx context.Context, q repository.DBExecutor, userID int64) ([]domain.Holding, error) {
	args := m.Called(ctx, q, userID)
	return args.Get(0).([]domain.Holding), args.Error(1)
}

func (m *MockHoldingRepository) CreateLot(ctx context.Context, q repository.DBExecutor, lot *domain.Lot) error {
	args := m.Called(ctx, q, lot)
	return args.Error(0)
}

func (m *MockHoldingRepository) ListLots(ctx context.Context, q repository.DBExecutor, userID int64, symbol string) ([]domain.Lot, error) {
	args := m.Called(ctx, q, userID, symbol)
	return args.Get(0).([]domain.Lot), args.Error(1)
}

// MockDepositRepository is a mock implementation of repository.DepositRepository.
type MockDepositRepository struct {
	mock.Mock
}

func (m *MockDepositRepository) CreateDeposit(ctx context.Context, q repository.DBExecutor, deposit *domain.Deposit) error {
	args := m.Called(ctx, q, deposit)
	return args.Error(0)
}

func (m *MockDepositRepository) GetDepositByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Deposit, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}

func (m *MockDepositRepository) SetDepositStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.FundingStatus) (bool, error) {
	args := m.Called(ctx, q, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockDepositRepository) ListDepositsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Deposit, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	return args.Get(0).([]domain.Deposit), args.Get(1).(int64), args.Error(2)
}

// MockWithdrawalRepository is a mock implementation of repository.WithdrawalRepository.
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) CreateWithdrawal(ctx context.Context, q repository.DBExecutor, withdrawal *domain.Withdrawal) error {
	args := m.Called(ctx, q, withdrawal)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetWithdrawalByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Withdrawal, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) SetWithdrawalStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.FundingStatus) (bool, error) {
	args := m.Called(ctx, q, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockWithdrawalRepository) ListWithdrawalsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Withdrawal, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	return args.Get(0).([]domain.Withdrawal), args.Get(1).(int64), args.Error(2)
}

// MockLoanRepository is a mock implementation of repository.LoanRepository.
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) CreateLoan(ctx context.Context, q repository.DBExecutor, loan *domain.Loan) error {
	args := m.Called(ctx, q, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetLoanByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Loan, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetLoanByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Loan, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) SetLoanStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.FundingStatus, outstanding decimal.Decimal) (bool, error) {
	args := m.Called(ctx, q, id, status, outstanding)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoanRepository) UpdateLoanOutstanding(ctx context.Context, q repository.DBExecutor, id int64, outstanding decimal.Decimal) error {
	args := m.Called(ctx, q, id, outstanding)
	return args.Error(0)
}

func (m *MockLoanRepository) ListLoansByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Loan, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	return args.Get(0).([]domain.Loan), args.Get(1).(int64), args.Error(2)
}

// MockKycRepository is a mock implementation of repository.KycRepository.
type MockKycRepository struct {
	mock.Mock
}

func (m *MockKycRepository) CreateKycRecord(ctx context.Context, q repository.DBExecutor, record *domain.KycRecord) error {
	args := m.Called(ctx, q, record)
	return args.Error(0)
}

func (m *MockKycRepository) GetKycRecordByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.KycRecord, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KycRecord), args.Error(1)
}

func (m *MockKycRepository) GetKycRecordByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.KycRecord, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KycRecord), args.Error(1)
}

func (m *MockKycRepository) SetKycStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.KycStatus) error {
	args := m.Called(ctx, q, id, status)
	return args.Error(0)
}

// MockCarRepository is a mock implementation of repository.CarRepository.
type MockCarRepository struct {
	mock.Mock
}

func (m *MockCarRepository) CreateCar(ctx context.Context, q repository.DBExecutor, car *domain.Car) error {
	args := m.Called(ctx, q, car)
	return args.Error(0)
}

func (m *MockCarRepository) GetCarByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Car, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarRepository) ListCars(ctx context.Context, q repository.DBExecutor, onlyAvailable bool, limit, offset int) ([]domain.Car, int64, error) {
	args := m.Called(ctx, q, onlyAvailable, limit, offset)
	return args.Get(0).([]domain.Car), args.Get(1).(int64), args.Error(2)
}

func (m *MockCarRepository) SetCarAvailability(ctx context.Context, q repository.DBExecutor, id int64, available bool) error {
	args := m.Called(ctx, q, id, available)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, q repository.DBExecutor, order *domain.Order) error {
	args := m.Called(ctx, q, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Order, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) GetOrderByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Order, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) SetOrderStatus(ctx context.Context, q repository.DBExecutor, id int64, from, to domain.OrderStatus) (bool, error) {
	args := m.Called(ctx, q, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) SetOrderPaid(ctx context.Context, q repository.DBExecutor, id int64, paymentHash string) (bool, error) {
	args := m.Called(ctx, q, id, paymentHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Order, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	return args.Get(0).([]domain.Order), args.Get(1).(int64), args.Error(2)
}

// MockQuoter is a mock implementation of market.Quoter.
type MockQuoter struct {
	mock.Mock
}

func (m *MockQuoter) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
