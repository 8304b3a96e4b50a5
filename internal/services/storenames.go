package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/repos"
)

// StoreNames are the three logical collection names a course's records live
// under, plus the slug used as the vector index namespace.
type StoreNames struct {
	ContentFlags   string
	UserLedger     string
	StruggleLedger string
	CourseSlug     string
}

// StoreNameService maps a course name to its store names. Names persisted
// on the course row win; the slug convention covers pre-migration courses.
// Resolutions are cached for the process lifetime since bindings are set
// once at course creation and never renamed.
type StoreNameService interface {
	Resolve(dbc dbctx.Context, courseName string) (StoreNames, error)
}

type storeNameService struct {
	log     *logger.Logger
	courses repos.CourseRepo

	mu    sync.RWMutex
	cache map[string]StoreNames
}

func NewStoreNameService(log *logger.Logger, courses repos.CourseRepo) StoreNameService {
	return &storeNameService{
		log:     log.With("service", "StoreNameService"),
		courses: courses,
		cache:   make(map[string]StoreNames),
	}
}

func (s *storeNameService) Resolve(dbc dbctx.Context, courseName string) (StoreNames, error) {
	name := strings.TrimSpace(courseName)
	if name == "" {
		return StoreNames{}, &ValidationError{Msg: "course name required"}
	}

	s.mu.RLock()
	cached, hit := s.cache[name]
	s.mu.RUnlock()
	if hit {
		return cached, nil
	}

	resolved, err := s.resolve(dbc, name)
	if err != nil {
		return StoreNames{}, err
	}

	s.mu.Lock()
	s.cache[name] = resolved
	s.mu.Unlock()
	return resolved, nil
}

func (s *storeNameService) resolve(dbc dbctx.Context, name string) (StoreNames, error) {
	courseSlug := slug.Make(name)
	out := StoreNames{
		ContentFlags:   courseSlug + "-flags",
		UserLedger:     courseSlug + "-users",
		StruggleLedger: courseSlug + "-ledger",
		CourseSlug:     courseSlug,
	}

	course, err := s.courses.GetByName(dbc, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("course row absent, using naming convention", "course", name, "slug", courseSlug)
			return out, nil
		}
		return StoreNames{}, fmt.Errorf("resolve store names for %q: %w", name, err)
	}

	if course.Slug != "" {
		out.CourseSlug = course.Slug
	}
	if course.FlagCollection != nil && strings.TrimSpace(*course.FlagCollection) != "" {
		out.ContentFlags = strings.TrimSpace(*course.FlagCollection)
	}
	if course.UserCollection != nil && strings.TrimSpace(*course.UserCollection) != "" {
		out.UserLedger = strings.TrimSpace(*course.UserCollection)
	}
	if course.LedgerCollection != nil && strings.TrimSpace(*course.LedgerCollection) != "" {
		out.StruggleLedger = strings.TrimSpace(*course.LedgerCollection)
	}
	return out, nil
}
