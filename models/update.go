package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Update is an append-only status post, optionally linked to a deliverable.
// Help requests are ordinary updates with the flag set.
type Update struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	AuthorID      *uuid.UUID `gorm:"type:uuid;index" json:"author_id"`
	DeliverableID *uuid.UUID `gorm:"type:uuid;index" json:"deliverable_id"`
	IsHelpRequest bool       `gorm:"default:false" json:"is_help_request"`
	CreatedAt     time.Time  `json:"created_at"`

	// Relations
	Author      *TeamMember      `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"-"`
	Deliverable *Deliverable     `gorm:"foreignKey:DeliverableID;constraint:OnDelete:SET NULL" json:"-"`
	Reactions   []UpdateReaction `gorm:"foreignKey:UpdateID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
}

func (u *Update) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UpdateReaction is an emoji-style reaction to an update, at most one per
// (update, member, type).
type UpdateReaction struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UpdateID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_once" json:"update_id"`
	MemberID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_once" json:"member_id"`
	ReactionType string    `gorm:"not null;uniqueIndex:idx_reaction_once" json:"reaction_type"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Update Update     `gorm:"foreignKey:UpdateID" json:"-"`
	Member TeamMember `gorm:"foreignKey:MemberID" json:"-"`
}

func (r *UpdateReaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
