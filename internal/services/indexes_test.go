package services

import (
	"context"
	"testing"

	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/repos/testutil"
)

func TestEnsureFlagIndexes(t *testing.T) {
	db := testutil.DB(t)
	svc := NewIndexService(testutil.Logger(t), db)

	results := svc.EnsureFlagIndexes(dbctx.Context{Ctx: context.Background()})
	if len(results) != 4 {
		t.Fatalf("index results: want=4 got=%d", len(results))
	}
	seen := map[string]bool{}
	for _, result := range results {
		if !result.Created {
			t.Fatalf("index %s not created: %s", result.Name, result.Error)
		}
		seen[result.Name] = true
	}
	for _, name := range []string{
		"idx_chat_flag_status_recency",
		"idx_chat_flag_user",
		"idx_chat_flag_course_status",
		"idx_chat_flag_type_status",
	} {
		if !seen[name] {
			t.Fatalf("missing index result for %s", name)
		}
	}

	// Re-running must be a no-op thanks to IF NOT EXISTS.
	again := svc.EnsureFlagIndexes(dbctx.Context{Ctx: context.Background()})
	for _, result := range again {
		if !result.Created {
			t.Fatalf("re-run index %s failed: %s", result.Name, result.Error)
		}
	}
}
