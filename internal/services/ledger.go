package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/normalization"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/repos"
)

// StruggleLedgerService maintains the per-user struggle-topic ledger.
// Entry creation is race-safe through the unique constraint rather than a
// lock: a losing concurrent creator swallows the conflict and re-reads.
// Merges are commutative, so interleaved writers converge.
type StruggleLedgerService interface {
	EnsureEntryExists(dbc dbctx.Context, courseName, userID string) (*domain.StruggleProfile, error)
	MergeTopics(dbc dbctx.Context, courseName, userID string, candidateLabels []string) ([]string, bool, error)
	RemoveTopic(dbc dbctx.Context, courseName, userID, label string) ([]string, bool, error)
	GetTopics(dbc dbctx.Context, courseName, userID string) ([]string, error)
	AnalyzeConversation(dbc dbctx.Context, courseName, userID, conversationText string) ([]string, error)
}

type struggleLedgerService struct {
	log        *logger.Logger
	profiles   repos.StruggleProfileRepo
	identity   IdentityService
	labels     LabelService
	storeNames StoreNameService
}

func NewStruggleLedgerService(
	log *logger.Logger,
	profiles repos.StruggleProfileRepo,
	identity IdentityService,
	labels LabelService,
	storeNames StoreNameService,
) StruggleLedgerService {
	return &struggleLedgerService{
		log:        log.With("service", "StruggleLedgerService"),
		profiles:   profiles,
		identity:   identity,
		labels:     labels,
		storeNames: storeNames,
	}
}

func (s *struggleLedgerService) EnsureEntryExists(dbc dbctx.Context, courseName, userID string) (*domain.StruggleProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, &ValidationError{Msg: "user id required"}
	}

	names, err := s.storeNames.Resolve(dbc, courseName)
	if err != nil {
		return nil, err
	}

	existing, err := s.profiles.GetByUser(dbc, names.StruggleLedger, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("ensure ledger entry: %w", err)
	}

	identity, err := s.identity.Lookup(dbc, courseName, userID)
	if err != nil {
		return nil, err
	}

	profile := &domain.StruggleProfile{
		Collection: names.StruggleLedger,
		UserID:     userID,
		Name:       identity.Name,
		Role:       identity.Role(),
	}
	if err := profile.SetTopicList(nil); err != nil {
		return nil, err
	}

	created, err := s.profiles.Create(dbc, profile)
	if err != nil {
		// A concurrent caller beat us to it; their row is ours too.
		if repos.IsUniqueViolation(err) {
			s.log.Debug("ledger entry creation race swallowed", "collection", names.StruggleLedger, "user_id", userID)
			return s.profiles.GetByUser(dbc, names.StruggleLedger, userID)
		}
		return nil, fmt.Errorf("create ledger entry: %w", err)
	}
	return created, nil
}

// MergeTopics writes the union of existing and candidate labels back only
// when at least one genuinely new label appears. Returns the resulting set
// and whether a write happened.
func (s *struggleLedgerService) MergeTopics(dbc dbctx.Context, courseName, userID string, candidateLabels []string) ([]string, bool, error) {
	candidates := normalization.NormalizeSet(candidateLabels)

	profile, err := s.EnsureEntryExists(dbc, courseName, userID)
	if err != nil {
		return nil, false, err
	}

	existing, err := profile.TopicList()
	if err != nil {
		return nil, false, fmt.Errorf("decode ledger topics: %w", err)
	}

	known := make(map[string]struct{}, len(existing))
	for _, topic := range existing {
		known[topic] = struct{}{}
	}

	added := false
	merged := append([]string{}, existing...)
	for _, candidate := range candidates {
		if _, exists := known[candidate]; exists {
			continue
		}
		known[candidate] = struct{}{}
		merged = append(merged, candidate)
		added = true
	}
	if !added {
		return existing, false, nil
	}
	sort.Strings(merged)

	if err := profile.SetTopicList(merged); err != nil {
		return nil, false, err
	}
	if err := s.profiles.UpdateTopics(dbc, profile.ID, profile.StruggleTopics); err != nil {
		return nil, false, fmt.Errorf("merge topics: %w", err)
	}

	s.log.Info("struggle topics merged",
		"user_id", userID,
		"course", courseName,
		"added", len(merged)-len(existing),
		"total", len(merged),
	)
	return merged, true, nil
}

// RemoveTopic filters the label out case-insensitively and writes back only
// if the set actually shrank.
func (s *struggleLedgerService) RemoveTopic(dbc dbctx.Context, courseName, userID, label string) ([]string, bool, error) {
	target := normalization.NormalizeLabel(label)
	if target == "" {
		return nil, false, &ValidationError{Msg: "label required"}
	}

	profile, err := s.EnsureEntryExists(dbc, courseName, userID)
	if err != nil {
		return nil, false, err
	}

	existing, err := profile.TopicList()
	if err != nil {
		return nil, false, fmt.Errorf("decode ledger topics: %w", err)
	}

	remaining := make([]string, 0, len(existing))
	for _, topic := range existing {
		if topic == target {
			continue
		}
		remaining = append(remaining, topic)
	}
	if len(remaining) == len(existing) {
		return existing, false, nil
	}

	if err := profile.SetTopicList(remaining); err != nil {
		return nil, false, err
	}
	if err := s.profiles.UpdateTopics(dbc, profile.ID, profile.StruggleTopics); err != nil {
		return nil, false, fmt.Errorf("remove topic: %w", err)
	}
	return remaining, true, nil
}

func (s *struggleLedgerService) GetTopics(dbc dbctx.Context, courseName, userID string) ([]string, error) {
	names, err := s.storeNames.Resolve(dbc, courseName)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetByUser(dbc, names.StruggleLedger, strings.TrimSpace(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "ledger entry", Key: userID}
		}
		return nil, err
	}
	return profile.TopicList()
}

// AnalyzeConversation runs label extraction over the conversation and
// merges whatever comes back. An empty extraction is a successful no-op.
func (s *struggleLedgerService) AnalyzeConversation(dbc dbctx.Context, courseName, userID, conversationText string) ([]string, error) {
	labels, err := s.labels.ExtractLabels(dbc, conversationText)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		profile, err := s.EnsureEntryExists(dbc, courseName, userID)
		if err != nil {
			return nil, err
		}
		return profile.TopicList()
	}

	merged, _, err := s.MergeTopics(dbc, courseName, userID, labels)
	return merged, err
}
