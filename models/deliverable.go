package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deliverable statuses.
const (
	DeliverableStatusUpcoming   = "upcoming"
	DeliverableStatusInProgress = "in-progress"
	DeliverableStatusAtRisk     = "at-risk"
	DeliverableStatusCompleted  = "completed"
)

// Deliverable is a trackable unit of work with an owner, deadline and
// progress. Progress and status are kept consistent by the progress-update
// path via DeriveStatus; direct status edits bypass that guarantee.
type Deliverable struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	OwnerID     *uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	Deadline    *time.Time `gorm:"type:date" json:"deadline"`
	Progress    int        `gorm:"default:0" json:"progress"`        // 0-100
	Status      string     `gorm:"default:'upcoming'" json:"status"` // upcoming, in-progress, at-risk, completed
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Owner        *TeamMember             `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	Dependencies []DeliverableDependency `gorm:"foreignKey:DeliverableID;constraint:OnDelete:CASCADE" json:"dependencies,omitempty"`
}

func (d *Deliverable) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DeliverableDependency is a directed edge meaning DeliverableID depends on
// DependsOnID. Self-edges and edges that would close a cycle are rejected,
// both application-side and by a database trigger (see config.migrateDB).
type DeliverableDependency struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DeliverableID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_dependency_edge" json:"deliverable_id"`
	DependsOnID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_dependency_edge" json:"depends_on_id"`
	CreatedAt     time.Time `json:"created_at"`

	// Relations
	Deliverable Deliverable `gorm:"foreignKey:DeliverableID" json:"-"`
	DependsOn   Deliverable `gorm:"foreignKey:DependsOnID;constraint:OnDelete:CASCADE" json:"-"`
}

func (d *DeliverableDependency) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DeriveStatus returns the status implied by a progress value. 100 is always
// completed and 0 is always upcoming. In between, a deadline that has passed,
// or one due within 3 days while progress is under 75, marks the deliverable
// at risk.
func DeriveStatus(progress int, deadline *time.Time, now time.Time) string {
	if progress >= 100 {
		return DeliverableStatusCompleted
	}
	if progress <= 0 {
		return DeliverableStatusUpcoming
	}
	if deadline != nil {
		daysUntil := int(math.Ceil(deadline.Sub(now).Hours() / 24))
		if daysUntil < 0 || (daysUntil <= 3 && progress < 75) {
			return DeliverableStatusAtRisk
		}
	}
	return DeliverableStatusInProgress
}
