package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/repos/testutil"
)

func TestCourseDocumentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewCourseDocumentRepo(db, testutil.Logger(t))
	courseName := "APSC 099 " + time.Now().UTC().Format("150405.000000000")

	doc := &domain.CourseDocument{
		ID:               uuid.New(),
		CourseName:       courseName,
		TopicOrWeekTitle: "Week 1",
		ItemTitle:        "Syllabus",
		SourceType:       domain.DocumentSourceText,
		StorageKey:       "courses/apsc-099/documents/d1/syllabus.txt",
	}
	created, err := repo.Create(dbc, doc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Uploaded {
		t.Fatalf("new document should not be uploaded")
	}

	if err := repo.MarkIndexed(dbc, created.ID, created.ID.String()+":chunk:0", 4); err != nil {
		t.Fatalf("MarkIndexed: %v", err)
	}
	loaded, err := repo.GetByID(dbc, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !loaded.Uploaded || loaded.ChunksGenerated != 4 {
		t.Fatalf("after MarkIndexed: uploaded=%v chunks=%d", loaded.Uploaded, loaded.ChunksGenerated)
	}
	if loaded.VectorRef != created.ID.String()+":chunk:0" {
		t.Fatalf("vector ref: got=%q", loaded.VectorRef)
	}

	if err := repo.MarkIndexed(dbc, uuid.New(), "x:chunk:0", 1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("MarkIndexed missing: want ErrRecordNotFound, got %v", err)
	}

	second := &domain.CourseDocument{
		ID:         uuid.New(),
		CourseName: courseName,
		ItemTitle:  "Lecture notes",
		SourceType: domain.DocumentSourceFile,
		StorageKey: "courses/apsc-099/documents/d2/notes.pdf",
	}
	if _, err := repo.Create(dbc, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	listed, err := repo.ListByCourse(dbc, courseName)
	if err != nil || len(listed) != 2 {
		t.Fatalf("ListByCourse: err=%v len=%d", err, len(listed))
	}

	if err := repo.Delete(dbc, second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(dbc, second.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Delete missing: want ErrRecordNotFound, got %v", err)
	}

	deleted, err := repo.DeleteByCourse(dbc, courseName)
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteByCourse: err=%v deleted=%d", err, deleted)
	}
}
