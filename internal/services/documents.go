package services

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/gcs"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/openai"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/vector"
	"github.com/ubc/tlef-engeai-sub001/internal/repos"
)

const (
	chunkTargetRunes   = 1000
	embedBatchSize     = 64
	embedBatchParallel = 4
)

type UploadDocumentInput struct {
	CourseName       string
	TopicOrWeekTitle string
	ItemTitle        string

	// Exactly one of Text or File must be set.
	Text     string
	File     io.Reader
	FileName string
}

// WipeResult reports a bulk wipe. Errors carries failures from strategies
// that were subsequently recovered by a fallback; it is data, not a thrown
// error.
type WipeResult struct {
	DeletedCount int      `json:"deleted_count"`
	Errors       []string `json:"errors"`
}

type DocumentService interface {
	Upload(dbc dbctx.Context, input UploadDocumentInput) (*domain.CourseDocument, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*domain.CourseDocument, error)
	List(dbc dbctx.Context, courseName string) ([]*domain.CourseDocument, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
	WipeCourse(dbc dbctx.Context, courseName string) (*WipeResult, error)
	NuclearReset(dbc dbctx.Context) error
}

type documentService struct {
	log        *logger.Logger
	documents  repos.CourseDocumentRepo
	bucket     gcs.BucketService
	ai         openai.Client
	vectors    vector.Store
	storeNames StoreNameService
}

func NewDocumentService(
	log *logger.Logger,
	documents repos.CourseDocumentRepo,
	bucket gcs.BucketService,
	ai openai.Client,
	vectors vector.Store,
	storeNames StoreNameService,
) DocumentService {
	return &documentService{
		log:        log.With("service", "DocumentService"),
		documents:  documents,
		bucket:     bucket,
		ai:         ai,
		vectors:    vectors,
		storeNames: storeNames,
	}
}

func (s *documentService) Upload(dbc dbctx.Context, input UploadDocumentInput) (*domain.CourseDocument, error) {
	courseName := strings.TrimSpace(input.CourseName)
	itemTitle := strings.TrimSpace(input.ItemTitle)
	if courseName == "" {
		return nil, &ValidationError{Msg: "course name required"}
	}
	if itemTitle == "" {
		return nil, &ValidationError{Msg: "item title required"}
	}

	hasText := strings.TrimSpace(input.Text) != ""
	hasFile := input.File != nil
	if hasText == hasFile {
		return nil, &ValidationError{Msg: "exactly one of raw text or source file must be provided"}
	}

	names, err := s.storeNames.Resolve(dbc, courseName)
	if err != nil {
		return nil, err
	}

	sourceType := domain.DocumentSourceText
	content := input.Text
	fileName := strings.TrimSpace(input.FileName)
	if hasFile {
		sourceType = domain.DocumentSourceFile
		raw, err := io.ReadAll(input.File)
		if err != nil {
			return nil, fmt.Errorf("read source file: %w", err)
		}
		content = string(raw)
		if fileName == "" {
			fileName = "upload"
		}
	} else if fileName == "" {
		fileName = "content.txt"
	}

	doc := &domain.CourseDocument{
		ID:               uuid.New(),
		CourseName:       courseName,
		TopicOrWeekTitle: strings.TrimSpace(input.TopicOrWeekTitle),
		ItemTitle:        itemTitle,
		SourceType:       sourceType,
	}
	doc.StorageKey = fmt.Sprintf("courses/%s/documents/%s/%s", names.CourseSlug, doc.ID, fileName)

	if err := s.bucket.UploadObject(dbc.Ctx, doc.StorageKey, strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("persist source: %w", err)
	}

	created, err := s.documents.Create(dbc, doc)
	if err != nil {
		// Compensate: the record never existed, so the object must not linger.
		if deleteErr := s.bucket.DeleteObject(dbc.Ctx, doc.StorageKey); deleteErr != nil {
			s.log.Warn("orphaned source object after record failure", "key", doc.StorageKey, "error", deleteErr)
		}
		return nil, fmt.Errorf("create document record: %w", err)
	}

	chunks := chunkText(content)
	if len(chunks) == 0 {
		s.log.Warn("document produced zero chunks, left unindexed", "document_id", created.ID, "course", courseName)
		return created, nil
	}

	vectors, err := s.embedChunks(dbc, created, chunks)
	if err != nil {
		return created, fmt.Errorf("embed document %s: %w", created.ID, err)
	}

	if err := s.vectors.Upsert(dbc.Ctx, names.CourseSlug, vectors); err != nil {
		return created, fmt.Errorf("index document %s: %w", created.ID, err)
	}

	if err := s.documents.MarkIndexed(dbc, created.ID, vectors[0].ID, len(vectors)); err != nil {
		return created, fmt.Errorf("mark document indexed: %w", err)
	}
	created.Uploaded = true
	created.VectorRef = vectors[0].ID
	created.ChunksGenerated = len(vectors)

	s.log.Info("document indexed",
		"document_id", created.ID,
		"course", courseName,
		"chunks", len(vectors),
	)
	return created, nil
}

func (s *documentService) embedChunks(dbc dbctx.Context, doc *domain.CourseDocument, chunks []string) ([]vector.Vector, error) {
	out := make([]vector.Vector, len(chunks))

	group, ctx := errgroup.WithContext(dbc.Ctx)
	group.SetLimit(embedBatchParallel)
	var mu sync.Mutex

	for start := 0; start < len(chunks); start += embedBatchSize {
		start := start
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		group.Go(func() error {
			embeddings, err := s.ai.Embed(ctx, chunks[start:end])
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for i, embedding := range embeddings {
				idx := start + i
				out[idx] = vector.Vector{
					ID:     chunkVectorID(doc.ID, idx),
					Values: embedding,
					Metadata: map[string]any{
						"courseName":       doc.CourseName,
						"documentId":       doc.ID.String(),
						"itemTitle":        doc.ItemTitle,
						"topicOrWeekTitle": doc.TopicOrWeekTitle,
						"chunkIndex":       idx,
						"text":             chunks[idx],
					},
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *documentService) Get(dbc dbctx.Context, id uuid.UUID) (*domain.CourseDocument, error) {
	doc, err := s.documents.GetByID(dbc, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "document", Key: id.String()}
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) List(dbc dbctx.Context, courseName string) ([]*domain.CourseDocument, error) {
	if strings.TrimSpace(courseName) == "" {
		return nil, &ValidationError{Msg: "course name required"}
	}
	return s.documents.ListByCourse(dbc, courseName)
}

// Delete removes one document from both stores: vectors first, metadata
// second, so a failure can never leave metadata claiming vectors that are
// already gone. Deletion is never attempted blind.
func (s *documentService) Delete(dbc dbctx.Context, id uuid.UUID) error {
	doc, err := s.Get(dbc, id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(doc.VectorRef) == "" {
		return &NotFoundError{Kind: "document vector ref", Key: id.String()}
	}

	names, err := s.storeNames.Resolve(dbc, doc.CourseName)
	if err != nil {
		return err
	}

	ids := documentVectorIDs(doc)
	if err := s.vectors.DeleteIDs(dbc.Ctx, names.CourseSlug, ids); err != nil {
		return fmt.Errorf("delete vectors for document %s: %w", id, err)
	}

	if doc.StorageKey != "" {
		if err := s.bucket.DeleteObject(dbc.Ctx, doc.StorageKey); err != nil {
			s.log.Warn("source object delete failed", "key", doc.StorageKey, "error", err)
		}
	}

	if err := s.documents.Delete(dbc, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Kind: "document", Key: id.String()}
		}
		return fmt.Errorf("delete document record: %w", err)
	}

	s.log.Info("document deleted", "document_id", id, "course", doc.CourseName, "vectors", len(ids))
	return nil
}

// WipeCourse clears every document under the course from both stores using
// an ordered fallback chain: batch delete-by-id, then delete-by-filter on
// the course scope. Metadata is only cleared after at least one strategy
// succeeded.
func (s *documentService) WipeCourse(dbc dbctx.Context, courseName string) (*WipeResult, error) {
	courseName = strings.TrimSpace(courseName)
	if courseName == "" {
		return nil, &ValidationError{Msg: "course name required"}
	}

	names, err := s.storeNames.Resolve(dbc, courseName)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.ListByCourse(dbc, courseName)
	if err != nil {
		return nil, fmt.Errorf("list documents for wipe: %w", err)
	}

	result := &WipeResult{Errors: []string{}}
	if len(docs) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, documentVectorIDs(doc)...)
	}

	if len(ids) > 0 {
		if err := s.vectors.DeleteIDs(dbc.Ctx, names.CourseSlug, ids); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("batch delete-by-id: %v", err))
			s.log.Warn("batch vector delete failed, trying filter fallback", "course", courseName, "error", err)

			if filterErr := s.vectors.DeleteByFilter(dbc.Ctx, names.CourseSlug, map[string]any{"courseName": courseName}); filterErr != nil {
				return nil, &IndexDeletionError{
					CourseName: courseName,
					Attempts:   []error{err, filterErr},
				}
			}
		}
	}

	deleted, err := s.documents.DeleteByCourse(dbc, courseName)
	if err != nil {
		return nil, fmt.Errorf("clear document metadata: %w", err)
	}
	result.DeletedCount = int(deleted)

	if err := s.bucket.DeletePrefix(dbc.Ctx, fmt.Sprintf("courses/%s/documents/", names.CourseSlug)); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("storage prefix delete: %v", err))
	}

	s.log.Info("course documents wiped",
		"course", courseName,
		"deleted", result.DeletedCount,
		"recovered_errors", len(result.Errors),
	)
	return result, nil
}

// NuclearReset drops the whole vector collection and recreates it empty.
// Cross-course by design; clearing course metadata stays with the caller.
func (s *documentService) NuclearReset(dbc dbctx.Context) error {
	if err := s.vectors.DropAndRecreate(dbc.Ctx); err != nil {
		return fmt.Errorf("nuclear reset: %w", err)
	}
	s.log.Warn("vector index dropped and recreated")
	return nil
}

func chunkVectorID(docID uuid.UUID, index int) string {
	return fmt.Sprintf("%s:chunk:%d", docID, index)
}

func documentVectorIDs(doc *domain.CourseDocument) []string {
	if doc == nil || strings.TrimSpace(doc.VectorRef) == "" {
		return nil
	}
	count := doc.ChunksGenerated
	if count <= 0 {
		count = 1
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, chunkVectorID(doc.ID, i))
	}
	return out
}

// chunkText splits on paragraph boundaries first and packs paragraphs into
// chunks of roughly chunkTargetRunes. A paragraph longer than the target is
// hard-split.
func chunkText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	paragraphs := strings.Split(text, "\n\n")
	chunks := []string{}
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		runes := []rune(paragraph)
		if len(runes) > chunkTargetRunes {
			flush()
			for start := 0; start < len(runes); start += chunkTargetRunes {
				end := start + chunkTargetRunes
				if end > len(runes) {
					end = len(runes)
				}
				chunks = append(chunks, string(runes[start:end]))
			}
			continue
		}
		if current.Len() > 0 && current.Len()+len(paragraph)+2 > chunkTargetRunes {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()
	return chunks
}
