package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/repos"
)

type fakeCourseRepo struct {
	byName map[string]*domain.Course
	calls  int
}

func (f *fakeCourseRepo) Create(dbc dbctx.Context, course *domain.Course) (*domain.Course, error) {
	if f.byName == nil {
		f.byName = map[string]*domain.Course{}
	}
	f.byName[course.Name] = course
	return course, nil
}

func (f *fakeCourseRepo) GetByName(dbc dbctx.Context, name string) (*domain.Course, error) {
	f.calls++
	if course, ok := f.byName[name]; ok {
		return course, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCourseRepo) List(dbc dbctx.Context) ([]*domain.Course, error) {
	out := make([]*domain.Course, 0, len(f.byName))
	for _, c := range f.byName {
		out = append(out, c)
	}
	return out, nil
}

var _ repos.CourseRepo = (*fakeCourseRepo)(nil)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testDBC() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}

func TestStoreNamesPrefersPersistedBindings(t *testing.T) {
	flags := "legacy_flag_store"
	ledger := "legacy_ledger_store"
	courses := &fakeCourseRepo{byName: map[string]*domain.Course{
		"APSC 099": {
			Name:             "APSC 099",
			Slug:             "apsc-099",
			FlagCollection:   &flags,
			LedgerCollection: &ledger,
		},
	}}
	svc := NewStoreNameService(testLogger(t), courses)

	names, err := svc.Resolve(testDBC(), "APSC 099")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if names.ContentFlags != flags {
		t.Fatalf("content flags: want=%q got=%q", flags, names.ContentFlags)
	}
	if names.StruggleLedger != ledger {
		t.Fatalf("struggle ledger: want=%q got=%q", ledger, names.StruggleLedger)
	}
	// UserCollection unset on the row, so the convention applies.
	if names.UserLedger != "apsc-099-users" {
		t.Fatalf("user ledger: want=%q got=%q", "apsc-099-users", names.UserLedger)
	}
	if names.CourseSlug != "apsc-099" {
		t.Fatalf("course slug: want=%q got=%q", "apsc-099", names.CourseSlug)
	}
}

func TestStoreNamesFallsBackToConvention(t *testing.T) {
	courses := &fakeCourseRepo{}
	svc := NewStoreNameService(testLogger(t), courses)

	names, err := svc.Resolve(testDBC(), "Thermodynamics II")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if names.ContentFlags != "thermodynamics-ii-flags" {
		t.Fatalf("content flags: got=%q", names.ContentFlags)
	}
	if names.UserLedger != "thermodynamics-ii-users" {
		t.Fatalf("user ledger: got=%q", names.UserLedger)
	}
	if names.StruggleLedger != "thermodynamics-ii-ledger" {
		t.Fatalf("struggle ledger: got=%q", names.StruggleLedger)
	}
}

func TestStoreNamesCachesResolution(t *testing.T) {
	courses := &fakeCourseRepo{}
	svc := NewStoreNameService(testLogger(t), courses)

	if _, err := svc.Resolve(testDBC(), "APSC 099"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := svc.Resolve(testDBC(), "APSC 099"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if courses.calls != 1 {
		t.Fatalf("repo calls: want=1 got=%d", courses.calls)
	}
}

func TestStoreNamesRejectsBlankCourse(t *testing.T) {
	svc := NewStoreNameService(testLogger(t), &fakeCourseRepo{})
	if _, err := svc.Resolve(testDBC(), "   "); err == nil {
		t.Fatalf("expected validation error")
	}
}
