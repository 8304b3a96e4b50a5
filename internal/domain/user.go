package domain

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the identity records kept per course. Collection scopes the
// row to a course user store; UserID is the external PUID-style identifier
// collaborating systems key on.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Collection  string    `gorm:"uniqueIndex:idx_user_scope_user;not null;column:collection" json:"collection"`
	UserID      string    `gorm:"uniqueIndex:idx_user_scope_user;not null;column:user_id" json:"user_id"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Affiliation string    `gorm:"not null;column:affiliation" json:"affiliation"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
	return "app_user"
}
