package repos

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
)

type CourseDocumentRepo interface {
	Create(dbc dbctx.Context, doc *domain.CourseDocument) (*domain.CourseDocument, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.CourseDocument, error)
	ListByCourse(dbc dbctx.Context, courseName string) ([]*domain.CourseDocument, error)
	MarkIndexed(dbc dbctx.Context, id uuid.UUID, vectorRef string, chunksGenerated int) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	DeleteByCourse(dbc dbctx.Context, courseName string) (int64, error)
}

type courseDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseDocumentRepo(db *gorm.DB, log *logger.Logger) CourseDocumentRepo {
	return &courseDocumentRepo{
		db:  db,
		log: log.With("repo", "CourseDocumentRepo"),
	}
}

func (r *courseDocumentRepo) Create(dbc dbctx.Context, doc *domain.CourseDocument) (*domain.CourseDocument, error) {
	if doc == nil {
		return nil, fmt.Errorf("missing document")
	}
	if strings.TrimSpace(doc.CourseName) == "" {
		return nil, fmt.Errorf("missing course name")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *courseDocumentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.CourseDocument, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing document id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var doc domain.CourseDocument
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *courseDocumentRepo) ListByCourse(dbc dbctx.Context, courseName string) ([]*domain.CourseDocument, error) {
	if strings.TrimSpace(courseName) == "" {
		return nil, fmt.Errorf("missing course name")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.CourseDocument
	if err := transaction.WithContext(dbc.Ctx).
		Where("course_name = ?", courseName).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkIndexed flips the record to uploaded once vectors confirmed landing
// in the index.
func (r *courseDocumentRepo) MarkIndexed(dbc dbctx.Context, id uuid.UUID, vectorRef string, chunksGenerated int) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing document id")
	}
	if strings.TrimSpace(vectorRef) == "" {
		return fmt.Errorf("missing vector ref")
	}
	if chunksGenerated <= 0 {
		return fmt.Errorf("chunks generated must be positive")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(dbc.Ctx).
		Model(&domain.CourseDocument{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"uploaded":         true,
			"vector_ref":       vectorRef,
			"chunks_generated": chunksGenerated,
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseDocumentRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing document id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&domain.CourseDocument{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseDocumentRepo) DeleteByCourse(dbc dbctx.Context, courseName string) (int64, error) {
	if strings.TrimSpace(courseName) == "" {
		return 0, fmt.Errorf("missing course name")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(dbc.Ctx).
		Where("course_name = ?", courseName).
		Delete(&domain.CourseDocument{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
