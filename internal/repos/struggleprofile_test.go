package repos

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/repos/testutil"
)

func TestStruggleProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewStruggleProfileRepo(db, testutil.Logger(t))
	collection := "apsc-099-ledger-" + time.Now().UTC().Format("150405.000000000")

	profile := &domain.StruggleProfile{
		Collection: collection,
		UserID:     "student-1",
		Name:       "Ada",
		Role:       domain.LedgerRoleStudent,
	}
	if err := profile.SetTopicList([]string{"entropy", "heat"}); err != nil {
		t.Fatalf("SetTopicList: %v", err)
	}
	created, err := repo.Create(dbc, profile)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := &domain.StruggleProfile{
		Collection: collection,
		UserID:     "student-1",
		Name:       "Ada Again",
		Role:       domain.LedgerRoleStudent,
	}
	_ = dup.SetTopicList(nil)
	if _, err := repo.Create(dbc, dup); !IsUniqueViolation(err) {
		t.Fatalf("duplicate create: want unique violation, got %v", err)
	}

	loaded, err := repo.GetByUser(dbc, collection, "student-1")
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	topics, err := loaded.TopicList()
	if err != nil {
		t.Fatalf("TopicList: %v", err)
	}
	if !reflect.DeepEqual(topics, []string{"entropy", "heat"}) {
		t.Fatalf("topics: got=%v", topics)
	}

	if err := loaded.SetTopicList([]string{"entropy", "heat", "ohms law"}); err != nil {
		t.Fatalf("SetTopicList: %v", err)
	}
	if err := repo.UpdateTopics(dbc, created.ID, loaded.StruggleTopics); err != nil {
		t.Fatalf("UpdateTopics: %v", err)
	}

	reloaded, err := repo.GetByUser(dbc, collection, "student-1")
	if err != nil {
		t.Fatalf("GetByUser after update: %v", err)
	}
	topics, _ = reloaded.TopicList()
	if len(topics) != 3 {
		t.Fatalf("topics after update: got=%v", topics)
	}

	if _, err := repo.GetByUser(dbc, collection, "student-2"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByUser missing: want ErrRecordNotFound, got %v", err)
	}

	deleted, err := repo.DeleteByCollection(dbc, collection)
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteByCollection: err=%v deleted=%d", err, deleted)
	}
}
