// internal/domain/kyc.go
package domain

import "time"

// KycStatus is the review state of a KYC submission.
type KycStatus string

const (
	KycStatusPending  KycStatus = "PENDING"
	KycStatusApproved KycStatus = "APPROVED"
	KycStatusRejected KycStatus = "REJECTED"
)

// KycRecord is a user's identity verification submission. The uploaded
// document lives in object storage; only its URL is kept here.
type KycRecord struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	FullName     string    `db:"full_name" json:"full_name"`
	DocumentType string    `db:"document_type" json:"document_type"` // e.g. "passport", "drivers_license"
	DocumentURL  string    `db:"document_url" json:"document_url"`
	Status       KycStatus `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// NewKycRecord creates a pending KYC submission.
func NewKycRecord(userID int64, fullName, documentType, documentURL string) *KycRecord {
	now := time.Now().UTC()
	return &KycRecord{
		UserID:       userID,
		FullName:     fullName,
		DocumentType: documentType,
		DocumentURL:  documentURL,
		Status:       KycStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
