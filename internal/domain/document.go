package domain

import (
	"time"

	"github.com/google/uuid"
)

type DocumentSourceType string

const (
	DocumentSourceText DocumentSourceType = "text"
	DocumentSourceFile DocumentSourceType = "file"
)

// CourseDocument is the metadata side of the dual-store document lifecycle.
// VectorRef is the vector id of the first generated chunk; the rest are
// derivable from it and ChunksGenerated. Uploaded stays false until at
// least one vector landed in the index.
type CourseDocument struct {
	ID               uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseName       string             `gorm:"index;not null;column:course_name" json:"course_name"`
	TopicOrWeekTitle string             `gorm:"column:topic_or_week_title" json:"topic_or_week_title"`
	ItemTitle        string             `gorm:"not null;column:item_title" json:"item_title"`
	SourceType       DocumentSourceType `gorm:"not null;column:source_type" json:"source_type"`
	StorageKey       string             `gorm:"column:storage_key" json:"storage_key"`
	Uploaded         bool               `gorm:"not null;default:false;column:uploaded" json:"uploaded"`
	VectorRef        string             `gorm:"column:vector_ref" json:"vector_ref"`
	ChunksGenerated  int                `gorm:"not null;default:0;column:chunks_generated" json:"chunks_generated"`
	CreatedAt        time.Time          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"not null;default:now()" json:"updated_at"`
}

func (CourseDocument) TableName() string {
	return "course_document"
}
