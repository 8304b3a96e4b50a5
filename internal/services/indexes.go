package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
)

// IndexResult reports one index creation attempt. Failures are data: one
// broken index must not block the others.
type IndexResult struct {
	Name    string `json:"name"`
	Created bool   `json:"created"`
	Error   string `json:"error,omitempty"`
}

type flagIndexDefinition struct {
	name string
	stmt string
}

var flagIndexDefinitions = []flagIndexDefinition{
	{
		name: "idx_chat_flag_status_recency",
		stmt: "CREATE INDEX IF NOT EXISTS idx_chat_flag_status_recency ON chat_flag (collection, status, created_at DESC)",
	},
	{
		name: "idx_chat_flag_user",
		stmt: "CREATE INDEX IF NOT EXISTS idx_chat_flag_user ON chat_flag (collection, user_id)",
	},
	{
		name: "idx_chat_flag_course_status",
		stmt: "CREATE INDEX IF NOT EXISTS idx_chat_flag_course_status ON chat_flag (course_name, status)",
	},
	{
		name: "idx_chat_flag_type_status",
		stmt: "CREATE INDEX IF NOT EXISTS idx_chat_flag_type_status ON chat_flag (flag_type, status)",
	},
}

// IndexService maintains the secondary indexes behind the flag query
// patterns (status dashboards, per-user lookups, course and type rollups).
type IndexService interface {
	EnsureFlagIndexes(dbc dbctx.Context) []IndexResult
}

type indexService struct {
	log *logger.Logger
	db  *gorm.DB
}

func NewIndexService(log *logger.Logger, db *gorm.DB) IndexService {
	return &indexService{
		log: log.With("service", "IndexService"),
		db:  db,
	}
}

// EnsureFlagIndexes attempts every flag index independently and reports
// each outcome. Partial success is normal operation, not an error.
func (s *indexService) EnsureFlagIndexes(dbc dbctx.Context) []IndexResult {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}

	results := make([]IndexResult, 0, len(flagIndexDefinitions))
	for _, def := range flagIndexDefinitions {
		result := IndexResult{Name: def.name}
		if err := transaction.WithContext(dbc.Ctx).Exec(def.stmt).Error; err != nil {
			result.Error = fmt.Sprintf("create index %s: %v", def.name, err)
			s.log.Warn("flag index creation failed", "index", def.name, "error", err)
		} else {
			result.Created = true
		}
		results = append(results, result)
	}
	return results
}
