// internal/repository/kyc_repo.go
package repository

import (
	"context"

	"finvest-api/internal/domain"
)

// KycRepository defines the interface for KYC submissions.
type KycRepository interface {
	CreateKycRecord(ctx context.Context, q DBExecutor, record *domain.KycRecord) error
	GetKycRecordByID(ctx context.Context, q DBExecutor, id int64) (*domain.KycRecord, error)
	GetKycRecordByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.KycRecord, error)
	SetKycStatus(ctx context.Context, q DBExecutor, id int64, status domain.KycStatus) error
}
