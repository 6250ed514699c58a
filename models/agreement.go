package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Agreement statuses. An agreement becomes active exactly when its signature
// count reaches the team size at the time of the triggering signature.
const (
	AgreementStatusPending  = "pending"
	AgreementStatusActive   = "active"
	AgreementStatusArchived = "archived"
)

// Agreement is a team commitment that requires signatures to become active.
type Agreement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Status      string     `gorm:"default:'pending'" json:"status"` // pending, active, archived
	CreatedBy   *uuid.UUID `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Creator    *TeamMember          `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL" json:"-"`
	Signatures []AgreementSignature `gorm:"foreignKey:AgreementID;constraint:OnDelete:CASCADE" json:"signatures,omitempty"`
}

func (a *Agreement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AgreementSignature records one member signing one agreement. The composite
// unique index is the authoritative duplicate-sign guard; the pre-insert
// existence check in the controller is advisory only.
type AgreementSignature struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AgreementID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_signature_once" json:"agreement_id"`
	MemberID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_signature_once" json:"member_id"`
	SignedAt    time.Time `gorm:"autoCreateTime" json:"signed_at"`

	// Relations
	Agreement Agreement  `gorm:"foreignKey:AgreementID" json:"-"`
	Member    TeamMember `gorm:"foreignKey:MemberID" json:"-"`
}

func (s *AgreementSignature) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
