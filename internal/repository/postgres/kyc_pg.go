// internal/repository/postgres/kyc_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finvest-api/internal/domain"
	"finvest-api/internal/repository"
	"finvest-api/internal/util"

	"github.com/jmoiron/sqlx"
)

// KycRepository implements repository.KycRepository for PostgreSQL.
type KycRepository struct{}

// NewKycRepository creates a new KycRepository.
func NewKycRepository(db *sqlx.DB) repository.KycRepository {
	return &KycRepository{}
}

const kycColumns = `id, user_id, full_name, document_type, document_url, status, created_at, updated_at`

// CreateKycRecord inserts a new KYC submission.
func (r *KycRepository) CreateKycRecord(ctx context.Context, q repository.DBExecutor, record *domain.KycRecord) error {
	query := `INSERT INTO kyc_records (user_id, full_name, document_type, document_url, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		record.UserID, record.FullName, record.DocumentType, record.DocumentURL, record.Status, record.CreatedAt, record.UpdatedAt,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to create kyc record: %w", err)
	}
	return nil
}

// GetKycRecordByID retrieves a KYC record by its ID.
func (r *KycRepository) GetKycRecordByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.KycRecord, error) {
	var record domain.KycRecord
	query := `SELECT ` + kycColumns + ` FROM kyc_records WHERE id = $1`
	err := q.GetContext(ctx, &record, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get kyc record %d: %w", id, err)
	}
	return &record, nil
}

// GetKycRecordByUserID retrieves a user's latest KYC record.
func (r *KycRepository) GetKycRecordByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.KycRecord, error) {
	var record domain.KycRecord
	query := `SELECT ` + kycColumns + ` FROM kyc_records WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	err := q.GetContext(ctx, &record, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get kyc record for user %d: %w", userID, err)
	}
	return &record, nil
}

// SetKycStatus updates the review state of a KYC record.
func (r *KycRepository) SetKycStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.KycStatus) error {
	query := `UPDATE kyc_records SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set kyc record %d status: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for kyc record %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
