// internal/service/kyc_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"finvest-api/internal/domain"
	"finvest-api/internal/media"
	"finvest-api/internal/notify"
	"finvest-api/internal/repository"
	"finvest-api/internal/util"
)

// KycService defines the business logic for identity verification.
// An approved record is required before withdrawals are accepted.
type KycService interface {
	// Submit stores the document image and creates a pending record. A
	// user with a pending or approved record cannot submit again.
	Submit(ctx context.Context, userID int64, fullName, documentType, documentBase64 string) (*domain.KycRecord, error)
	SetStatus(ctx context.Context, id int64, status domain.KycStatus) (*domain.KycRecord, error)
	GetOwn(ctx context.Context, userID int64) (*domain.KycRecord, error)
}

// kycService implements the KycService interface.
type kycService struct {
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	kycRepo    repository.KycRepository
	uploader   media.Uploader
	mailer     notify.Mailer
}

// NewKycService creates a new instance of KycService.
func NewKycService(
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	kycRepo repository.KycRepository,
	uploader media.Uploader,
	mailer notify.Mailer,
) KycService {
	return &kycService{
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		kycRepo:    kycRepo,
		uploader:   uploader,
		mailer:     mailer,
	}
}

// Submit stores the document and creates a pending record.
func (s *kycService) Submit(ctx context.Context, userID int64, fullName, documentType, documentBase64 string) (*domain.KycRecord, error) {
	if fullName == "" || documentType == "" || documentBase64 == "" {
		return nil, util.ErrInvalidInput
	}

	existing, err := s.kycRepo.GetKycRecordByUserID(ctx, s.dbExecutor, userID)
	if err == nil && existing.Status != domain.KycStatusRejected {
		return nil, util.ErrDuplicateEntry
	}
	if err != nil && !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("kyc submit: failed to check existing record: %w", err)
	}

	url, _, err := s.uploader.UploadBase64(ctx, fmt.Sprintf("kyc-%d", userID), documentBase64)
	if err != nil {
		return nil, fmt.Errorf("kyc submit: failed to upload document: %w", err)
	}

	record := domain.NewKycRecord(userID, fullName, documentType, url)
	if err := s.kycRepo.CreateKycRecord(ctx, s.dbExecutor, record); err != nil {
		return nil, fmt.Errorf("kyc submit: %w", err)
	}

	s.notifyUser(ctx, userID, "KYC submitted", "Your identity documents were received and are pending review.")
	return record, nil
}

// SetStatus updates a record's review state.
func (s *kycService) SetStatus(ctx context.Context, id int64, status domain.KycStatus) (*domain.KycRecord, error) {
	if status != domain.KycStatusApproved && status != domain.KycStatusRejected {
		return nil, util.ErrInvalidInput
	}
	record, err := s.kycRepo.GetKycRecordByID(ctx, s.dbExecutor, id)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("kyc set status: %w", err)
	}
	if err := s.kycRepo.SetKycStatus(ctx, s.dbExecutor, id, status); err != nil {
		return nil, fmt.Errorf("kyc set status: %w", err)
	}
	record.Status = status

	s.notifyUser(ctx, record.UserID, "KYC "+string(status),
		fmt.Sprintf("Your identity verification was %s.", status))
	return record, nil
}

// GetOwn retrieves the caller's latest KYC record.
func (s *kycService) GetOwn(ctx context.Context, userID int64) (*domain.KycRecord, error) {
	record, err := s.kycRepo.GetKycRecordByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("kyc get: %w", err)
	}
	return record, nil
}

// notifyUser enqueues a status email; failures never affect the operation.
func (s *kycService) notifyUser(ctx context.Context, userID int64, subject, body string) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return
	}
	s.mailer.Enqueue(notify.Email{
		To:      user.Email,
		Subject: subject,
		HTML:    fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", user.FullName, body),
	})
}
