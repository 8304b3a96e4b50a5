package repos

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
)

type CourseRepo interface {
	Create(dbc dbctx.Context, course *domain.Course) (*domain.Course, error)
	GetByName(dbc dbctx.Context, name string) (*domain.Course, error)
	List(dbc dbctx.Context) ([]*domain.Course, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, log *logger.Logger) CourseRepo {
	return &courseRepo{
		db:  db,
		log: log.With("repo", "CourseRepo"),
	}
}

func (r *courseRepo) Create(dbc dbctx.Context, course *domain.Course) (*domain.Course, error) {
	if course == nil {
		return nil, fmt.Errorf("missing course")
	}
	if strings.TrimSpace(course.Name) == "" {
		return nil, fmt.Errorf("missing course name")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

func (r *courseRepo) GetByName(dbc dbctx.Context, name string) (*domain.Course, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("missing course name")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var course domain.Course
	if err := transaction.WithContext(dbc.Ctx).
		Where("name = ?", name).
		First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) List(dbc dbctx.Context) ([]*domain.Course, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Course
	if err := transaction.WithContext(dbc.Ctx).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
