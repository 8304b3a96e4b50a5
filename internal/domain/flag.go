package domain

import "time"

type FlagType string

const (
	FlagTypeInaccurateResponse FlagType = "inaccurate-response"
	FlagTypeHarassment         FlagType = "harassment"
	FlagTypeInappropriate      FlagType = "inappropriate"
	FlagTypeDishonesty         FlagType = "dishonesty"
	FlagTypeInterfaceBug       FlagType = "interface-bug"
	FlagTypeOther              FlagType = "other"
)

func (t FlagType) Valid() bool {
	switch t {
	case FlagTypeInaccurateResponse, FlagTypeHarassment, FlagTypeInappropriate,
		FlagTypeDishonesty, FlagTypeInterfaceBug, FlagTypeOther:
		return true
	default:
		return false
	}
}

type FlagStatus string

const (
	FlagStatusUnresolved FlagStatus = "unresolved"
	FlagStatusResolved   FlagStatus = "resolved"
)

func (s FlagStatus) Valid() bool {
	return s == FlagStatusUnresolved || s == FlagStatusResolved
}

// ChatFlag is a user-submitted report about a chat exchange. The ID is a
// stable hash of content, user, course and submission date, so resubmitting
// the same report on the same day lands on the same row. ChatContent is a
// snapshot taken at submission time and is never rewritten.
type ChatFlag struct {
	ID            string     `gorm:"primaryKey;column:id" json:"id"`
	Collection    string     `gorm:"index;not null;column:collection" json:"collection"`
	CourseName    string     `gorm:"index;not null;column:course_name" json:"course_name"`
	FlagType      FlagType   `gorm:"not null;column:flag_type" json:"flag_type"`
	ReportType    string     `gorm:"column:report_type" json:"report_type"`
	ChatContent   string     `gorm:"not null;column:chat_content" json:"chat_content"`
	UserID        string     `gorm:"index;not null;column:user_id" json:"user_id"`
	Status        FlagStatus `gorm:"not null;default:'unresolved';column:status" json:"status"`
	Response      string     `gorm:"not null;default:'';column:response" json:"response"`
	LastUpdatedBy *string    `gorm:"column:last_updated_by" json:"last_updated_by,omitempty"`
	LastUpdatedAt *time.Time `gorm:"column:last_updated_at" json:"last_updated_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (ChatFlag) TableName() string {
	return "chat_flag"
}
