package vector

import "context"

// Store is the similarity index consumed by the document lifecycle.
// Namespaces partition vectors per course; filters use the Mongo-style
// operator syntax ($and/$or/$not at the top level, $eq/$ne/$in per field)
// that each adapter translates to its provider's native form.
type Store interface {
	Upsert(ctx context.Context, namespace string, vectors []Vector) error
	DeleteIDs(ctx context.Context, namespace string, ids []string) error
	DeleteByFilter(ctx context.Context, namespace string, filter map[string]any) error
	// ScrollIDs pages through every vector id matching the filter.
	ScrollIDs(ctx context.Context, namespace string, filter map[string]any) ([]string, error)
	// QueryMatches returns ids with their similarity scores (higher is better).
	QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]Match, error)
	// DropAndRecreate wipes the whole backing collection and recreates it
	// empty. Cross-namespace; callers own any metadata cleanup.
	DropAndRecreate(ctx context.Context) error
}

type Vector struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

type Match struct {
	ID    string
	Score float64
}
