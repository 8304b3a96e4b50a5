package domain

import (
	"time"

	"github.com/google/uuid"
)

// Course binds a course to its logical store names. The three collection
// columns are nullable so pre-migration courses keep working; resolution
// falls back to the slug-based naming convention when they are unset.
type Course struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name             string     `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Slug             string     `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	FlagCollection   *string    `gorm:"column:flag_collection" json:"flag_collection,omitempty"`
	UserCollection   *string    `gorm:"column:user_collection" json:"user_collection,omitempty"`
	LedgerCollection *string    `gorm:"column:ledger_collection" json:"ledger_collection,omitempty"`
	CreatedAt        time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Course) TableName() string {
	return "course"
}
