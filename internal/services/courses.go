package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/repos"
)

type CreateCourseInput struct {
	Name string

	// Optional store-name overrides. Blank fields fall back to the
	// slug-derived convention at resolve time.
	FlagCollection   *string
	UserCollection   *string
	LedgerCollection *string
}

type CourseService interface {
	Create(dbc dbctx.Context, input CreateCourseInput) (*domain.Course, error)
	Get(dbc dbctx.Context, name string) (*domain.Course, error)
	List(dbc dbctx.Context) ([]*domain.Course, error)
}

type courseService struct {
	log     *logger.Logger
	courses repos.CourseRepo
}

func NewCourseService(log *logger.Logger, courses repos.CourseRepo) CourseService {
	return &courseService{
		log:     log.With("service", "CourseService"),
		courses: courses,
	}
}

func (s *courseService) Create(dbc dbctx.Context, input CreateCourseInput) (*domain.Course, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, &ValidationError{Msg: "course name required"}
	}

	course := &domain.Course{
		Name:             name,
		Slug:             slug.Make(name),
		FlagCollection:   input.FlagCollection,
		UserCollection:   input.UserCollection,
		LedgerCollection: input.LedgerCollection,
	}

	created, err := s.courses.Create(dbc, course)
	if err != nil {
		if repos.IsUniqueViolation(err) {
			s.log.Debug("course already exists", "name", name)
			return s.Get(dbc, name)
		}
		return nil, fmt.Errorf("create course %q: %w", name, err)
	}

	s.log.Info("course created", "name", name, "slug", created.Slug)
	return created, nil
}

func (s *courseService) Get(dbc dbctx.Context, name string) (*domain.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Msg: "course name required"}
	}
	course, err := s.courses.GetByName(dbc, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "course", Key: name}
		}
		return nil, err
	}
	return course, nil
}

func (s *courseService) List(dbc dbctx.Context) ([]*domain.Course, error) {
	return s.courses.List(dbc)
}
