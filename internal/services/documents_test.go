package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/vector"
	"github.com/ubc/tlef-engeai-sub001/internal/repos"
)

type fakeDocumentRepo struct {
	docs map[uuid.UUID]*domain.CourseDocument
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: map[uuid.UUID]*domain.CourseDocument{}}
}

func (f *fakeDocumentRepo) Create(dbc dbctx.Context, doc *domain.CourseDocument) (*domain.CourseDocument, error) {
	clone := *doc
	f.docs[doc.ID] = &clone
	out := clone
	return &out, nil
}

func (f *fakeDocumentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.CourseDocument, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *doc
	return &clone, nil
}

func (f *fakeDocumentRepo) ListByCourse(dbc dbctx.Context, courseName string) ([]*domain.CourseDocument, error) {
	out := []*domain.CourseDocument{}
	for _, doc := range f.docs {
		if doc.CourseName == courseName {
			clone := *doc
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepo) MarkIndexed(dbc dbctx.Context, id uuid.UUID, vectorRef string, chunksGenerated int) error {
	doc, ok := f.docs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	doc.Uploaded = true
	doc.VectorRef = vectorRef
	doc.ChunksGenerated = chunksGenerated
	return nil
}

func (f *fakeDocumentRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if _, ok := f.docs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeDocumentRepo) DeleteByCourse(dbc dbctx.Context, courseName string) (int64, error) {
	var n int64
	for id, doc := range f.docs {
		if doc.CourseName == courseName {
			delete(f.docs, id)
			n++
		}
	}
	return n, nil
}

var _ repos.CourseDocumentRepo = (*fakeDocumentRepo)(nil)

type fakeBucket struct {
	objects map[string]string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string]string{}}
}

func (f *fakeBucket) UploadObject(ctx context.Context, key string, body io.Reader) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = string(raw)
	return nil
}

func (f *fakeBucket) DownloadObject(ctx context.Context, key string) (io.ReadCloser, error) {
	content, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q not found", key)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeBucket) DeleteObject(ctx context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeBucket) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	out := []string{}
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out, nil
}

func (f *fakeBucket) DeletePrefix(ctx context.Context, prefix string) error {
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			delete(f.objects, key)
		}
	}
	return nil
}

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{float32(len(inputs[i])), 1, 2}
	}
	return out, nil
}

func (f *fakeEmbedder) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return nil, fmt.Errorf("not implemented")
}

type fakeVectorStore struct {
	upserted        map[string][]vector.Vector
	deletedIDs      [][]string
	deleteIDsErr    error
	deleteFilterErr error
	filterCalls     []map[string]any
	dropped         int
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{upserted: map[string][]vector.Vector{}}
}

func (f *fakeVectorStore) Upsert(ctx context.Context, namespace string, vectors []vector.Vector) error {
	f.upserted[namespace] = append(f.upserted[namespace], vectors...)
	return nil
}

func (f *fakeVectorStore) DeleteIDs(ctx context.Context, namespace string, ids []string) error {
	if f.deleteIDsErr != nil {
		return f.deleteIDsErr
	}
	f.deletedIDs = append(f.deletedIDs, ids)
	return nil
}

func (f *fakeVectorStore) DeleteByFilter(ctx context.Context, namespace string, filter map[string]any) error {
	if f.deleteFilterErr != nil {
		return f.deleteFilterErr
	}
	f.filterCalls = append(f.filterCalls, filter)
	return nil
}

func (f *fakeVectorStore) ScrollIDs(ctx context.Context, namespace string, filter map[string]any) ([]string, error) {
	return nil, nil
}

func (f *fakeVectorStore) QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]vector.Match, error) {
	return nil, nil
}

func (f *fakeVectorStore) DropAndRecreate(ctx context.Context) error {
	f.dropped++
	return nil
}

var _ vector.Store = (*fakeVectorStore)(nil)

func newTestDocumentService(t *testing.T) (DocumentService, *fakeDocumentRepo, *fakeBucket, *fakeVectorStore) {
	t.Helper()
	repo := newFakeDocumentRepo()
	bucket := newFakeBucket()
	store := newFakeVectorStore()
	svc := NewDocumentService(testLogger(t), repo, bucket, &fakeEmbedder{}, store, &stubStoreNames{names: StoreNames{
		ContentFlags:   "apsc-099-flags",
		UserLedger:     "apsc-099-users",
		StruggleLedger: "apsc-099-ledger",
		CourseSlug:     "apsc-099",
	}})
	return svc, repo, bucket, store
}

func TestUploadTextDocument(t *testing.T) {
	svc, repo, bucket, store := newTestDocumentService(t)

	doc, err := svc.Upload(testDBC(), UploadDocumentInput{
		CourseName:       "APSC 099",
		TopicOrWeekTitle: "Week 1",
		ItemTitle:        "Syllabus",
		Text:             "Ohms law relates voltage, current and resistance.\n\nSeries circuits share current.",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !doc.Uploaded {
		t.Fatalf("document should be uploaded")
	}
	if doc.ChunksGenerated != 1 {
		t.Fatalf("chunks: want=1 got=%d", doc.ChunksGenerated)
	}
	if doc.VectorRef != doc.ID.String()+":chunk:0" {
		t.Fatalf("vector ref: got=%q", doc.VectorRef)
	}

	stored := repo.docs[doc.ID]
	if stored == nil || !stored.Uploaded {
		t.Fatalf("stored record not marked indexed: %+v", stored)
	}

	vectors := store.upserted["apsc-099"]
	if len(vectors) != 1 {
		t.Fatalf("indexed vectors: want=1 got=%d", len(vectors))
	}
	if vectors[0].Metadata["courseName"] != "APSC 099" {
		t.Fatalf("vector metadata: got=%v", vectors[0].Metadata)
	}
	if vectors[0].Metadata["documentId"] != doc.ID.String() {
		t.Fatalf("vector document id: got=%v", vectors[0].Metadata["documentId"])
	}

	if _, ok := bucket.objects[doc.StorageKey]; !ok {
		t.Fatalf("source object missing at %q", doc.StorageKey)
	}
}

func TestUploadFileDocument(t *testing.T) {
	svc, _, bucket, _ := newTestDocumentService(t)

	doc, err := svc.Upload(testDBC(), UploadDocumentInput{
		CourseName: "APSC 099",
		ItemTitle:  "Lecture notes",
		File:       strings.NewReader("Kirchhoff current law: currents at a node sum to zero."),
		FileName:   "notes.txt",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.SourceType != domain.DocumentSourceFile {
		t.Fatalf("source type: got=%s", doc.SourceType)
	}
	if !strings.HasSuffix(doc.StorageKey, "/notes.txt") {
		t.Fatalf("storage key: got=%q", doc.StorageKey)
	}
	if bucket.objects[doc.StorageKey] == "" {
		t.Fatalf("file content not persisted")
	}
}

func TestUploadRequiresExactlyOneSource(t *testing.T) {
	svc, _, _, _ := newTestDocumentService(t)

	var typed *ValidationError
	if _, err := svc.Upload(testDBC(), UploadDocumentInput{
		CourseName: "APSC 099",
		ItemTitle:  "Both",
		Text:       "text",
		File:       strings.NewReader("file"),
	}); !errors.As(err, &typed) {
		t.Fatalf("both sources: want ValidationError, got %v", err)
	}

	if _, err := svc.Upload(testDBC(), UploadDocumentInput{
		CourseName: "APSC 099",
		ItemTitle:  "Neither",
	}); !errors.As(err, &typed) {
		t.Fatalf("no source: want ValidationError, got %v", err)
	}
}

func TestUploadZeroChunksLeftUnindexed(t *testing.T) {
	svc, repo, _, store := newTestDocumentService(t)

	doc, err := svc.Upload(testDBC(), UploadDocumentInput{
		CourseName: "APSC 099",
		ItemTitle:  "Empty",
		File:       strings.NewReader("   \n\n   "),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if doc.Uploaded {
		t.Fatalf("empty document should not be uploaded")
	}
	if repo.docs[doc.ID].Uploaded {
		t.Fatalf("stored record should stay unindexed")
	}
	if len(store.upserted) != 0 {
		t.Fatalf("no vectors expected, got=%v", store.upserted)
	}
}

func TestDeleteDocument(t *testing.T) {
	svc, repo, _, store := newTestDocumentService(t)

	doc, err := svc.Upload(testDBC(), UploadDocumentInput{
		CourseName: "APSC 099",
		ItemTitle:  "Syllabus",
		Text:       "Ohms law.",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.Delete(testDBC(), doc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(store.deletedIDs) != 1 || store.deletedIDs[0][0] != doc.ID.String()+":chunk:0" {
		t.Fatalf("deleted vector ids: got=%v", store.deletedIDs)
	}
	if _, ok := repo.docs[doc.ID]; ok {
		t.Fatalf("metadata record still present")
	}

	var notFound *NotFoundError
	if err := svc.Delete(testDBC(), doc.ID); !errors.As(err, &notFound) {
		t.Fatalf("second delete: want NotFoundError, got %v", err)
	}
}

func TestDeleteRefusesBlindDeletion(t *testing.T) {
	svc, repo, _, store := newTestDocumentService(t)

	unindexed := &domain.CourseDocument{
		ID:         uuid.New(),
		CourseName: "APSC 099",
		ItemTitle:  "Never indexed",
		SourceType: domain.DocumentSourceText,
	}
	repo.docs[unindexed.ID] = unindexed

	var notFound *NotFoundError
	if err := svc.Delete(testDBC(), unindexed.ID); !errors.As(err, &notFound) {
		t.Fatalf("want NotFoundError for missing vector ref, got %v", err)
	}
	if len(store.deletedIDs) != 0 {
		t.Fatalf("no vector deletion expected, got=%v", store.deletedIDs)
	}
	if _, ok := repo.docs[unindexed.ID]; !ok {
		t.Fatalf("metadata must not be cleared on refused deletion")
	}
}

func seedWipeDocs(t *testing.T, repo *fakeDocumentRepo, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		id := uuid.New()
		repo.docs[id] = &domain.CourseDocument{
			ID:              id,
			CourseName:      "APSC 099",
			ItemTitle:       fmt.Sprintf("Doc %d", i),
			SourceType:      domain.DocumentSourceText,
			Uploaded:        true,
			VectorRef:       id.String() + ":chunk:0",
			ChunksGenerated: 2,
		}
	}
}

func TestWipeCourseBatchDeleteSucceeds(t *testing.T) {
	svc, repo, _, store := newTestDocumentService(t)
	seedWipeDocs(t, repo, 5)

	result, err := svc.WipeCourse(testDBC(), "APSC 099")
	if err != nil {
		t.Fatalf("WipeCourse: %v", err)
	}
	if result.DeletedCount != 5 {
		t.Fatalf("deleted count: want=5 got=%d", result.DeletedCount)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("errors: want none got=%v", result.Errors)
	}
	if len(store.deletedIDs) != 1 || len(store.deletedIDs[0]) != 10 {
		t.Fatalf("vector ids deleted: got=%v", store.deletedIDs)
	}
	if len(repo.docs) != 0 {
		t.Fatalf("metadata not cleared: %d left", len(repo.docs))
	}
}

func TestWipeCourseFallsBackToFilter(t *testing.T) {
	svc, repo, _, store := newTestDocumentService(t)
	seedWipeDocs(t, repo, 5)
	store.deleteIDsErr = fmt.Errorf("qdrant batch delete exploded")

	result, err := svc.WipeCourse(testDBC(), "APSC 099")
	if err != nil {
		t.Fatalf("WipeCourse: %v", err)
	}
	if result.DeletedCount != 5 {
		t.Fatalf("deleted count: want=5 got=%d", result.DeletedCount)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "batch delete-by-id") {
		t.Fatalf("recovered errors: got=%v", result.Errors)
	}
	if len(store.filterCalls) != 1 || store.filterCalls[0]["courseName"] != "APSC 099" {
		t.Fatalf("filter fallback calls: got=%v", store.filterCalls)
	}
	if len(repo.docs) != 0 {
		t.Fatalf("metadata not cleared after fallback success")
	}
}

func TestWipeCourseBothStrategiesFail(t *testing.T) {
	svc, repo, _, store := newTestDocumentService(t)
	seedWipeDocs(t, repo, 5)
	store.deleteIDsErr = fmt.Errorf("batch down")
	store.deleteFilterErr = fmt.Errorf("filter down")

	var typed *IndexDeletionError
	_, err := svc.WipeCourse(testDBC(), "APSC 099")
	if !errors.As(err, &typed) {
		t.Fatalf("want IndexDeletionError, got %v", err)
	}
	if len(typed.Attempts) != 2 {
		t.Fatalf("attempts: want=2 got=%d", len(typed.Attempts))
	}
	if len(repo.docs) != 5 {
		t.Fatalf("metadata must stay untouched, %d left", len(repo.docs))
	}
}

func TestWipeCourseEmpty(t *testing.T) {
	svc, _, _, store := newTestDocumentService(t)

	result, err := svc.WipeCourse(testDBC(), "APSC 099")
	if err != nil {
		t.Fatalf("WipeCourse: %v", err)
	}
	if result.DeletedCount != 0 || len(result.Errors) != 0 {
		t.Fatalf("empty wipe result: got=%+v", result)
	}
	if len(store.deletedIDs) != 0 {
		t.Fatalf("no vector calls expected for empty course")
	}
}

func TestNuclearReset(t *testing.T) {
	svc, _, _, store := newTestDocumentService(t)

	if err := svc.NuclearReset(testDBC()); err != nil {
		t.Fatalf("NuclearReset: %v", err)
	}
	if store.dropped != 1 {
		t.Fatalf("drop calls: want=1 got=%d", store.dropped)
	}
}

func TestChunkText(t *testing.T) {
	if chunks := chunkText("   "); chunks != nil {
		t.Fatalf("blank text: want nil got=%v", chunks)
	}

	long := strings.Repeat("a", 2500)
	chunks := chunkText(long)
	if len(chunks) != 3 {
		t.Fatalf("long text chunks: want=3 got=%d", len(chunks))
	}
	if len(chunks[0]) != 1000 || len(chunks[2]) != 500 {
		t.Fatalf("chunk sizes: got=%d,%d,%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}

	packed := chunkText("first paragraph\n\nsecond paragraph")
	if len(packed) != 1 {
		t.Fatalf("short paragraphs should pack into one chunk, got=%d", len(packed))
	}
}
