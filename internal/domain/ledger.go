package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LedgerRole string

const (
	LedgerRoleStudent    LedgerRole = "Student"
	LedgerRoleInstructor LedgerRole = "instructor"
)

// StruggleProfile is one user's ledger entry within a course-scoped
// collection. StruggleTopics holds a JSON array of normalized labels:
// trimmed, lowercased, deduplicated, sorted. The unique index on
// (collection, user_id) is what makes concurrent entry creation safe.
type StruggleProfile struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Collection     string         `gorm:"uniqueIndex:idx_struggle_profile_scope_user;not null;column:collection" json:"collection"`
	UserID         string         `gorm:"uniqueIndex:idx_struggle_profile_scope_user;not null;column:user_id" json:"user_id"`
	Name           string         `gorm:"not null;column:name" json:"name"`
	Role           LedgerRole     `gorm:"not null;column:role" json:"role"`
	StruggleTopics datatypes.JSON `gorm:"type:jsonb;not null;default:'[]';column:struggle_topics" json:"struggle_topics"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (StruggleProfile) TableName() string {
	return "struggle_profile"
}

func (p *StruggleProfile) TopicList() ([]string, error) {
	if p == nil || len(p.StruggleTopics) == 0 {
		return []string{}, nil
	}
	var topics []string
	if err := json.Unmarshal(p.StruggleTopics, &topics); err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []string{}
	}
	return topics, nil
}

func (p *StruggleProfile) SetTopicList(topics []string) error {
	if topics == nil {
		topics = []string{}
	}
	raw, err := json.Marshal(topics)
	if err != nil {
		return err
	}
	p.StruggleTopics = datatypes.JSON(raw)
	return nil
}
