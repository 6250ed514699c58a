package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamMember represents a member of the team. Identity is immutable once
// created; deliverables, agreements, signatures and updates all reference it.
type TeamMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"default:'member'" json:"role"` // lead, member
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Deliverables []Deliverable        `gorm:"foreignKey:OwnerID" json:"deliverables,omitempty"`
	Signatures   []AgreementSignature `gorm:"foreignKey:MemberID" json:"signatures,omitempty"`
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
