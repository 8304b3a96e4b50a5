package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/repos"
)

type SubmitFlagInput struct {
	CourseName  string
	FlagType    domain.FlagType
	ReportType  string
	ChatContent string
	UserID      string
}

type FlagStatistics struct {
	Total          int                       `json:"total"`
	ByStatus       map[domain.FlagStatus]int `json:"by_status"`
	ByType         map[domain.FlagType]int   `json:"by_type"`
	RecentActivity FlagRecentActivity        `json:"recent_activity"`
}

type FlagRecentActivity struct {
	Last24Hours int `json:"last_24_hours"`
	Last7Days   int `json:"last_7_days"`
	Last30Days  int `json:"last_30_days"`
}

type FlagService interface {
	SubmitFlag(dbc dbctx.Context, input SubmitFlagInput) (*domain.ChatFlag, error)
	GetFlag(dbc dbctx.Context, flagID string) (*domain.ChatFlag, error)
	ListFlags(dbc dbctx.Context, courseName string) ([]*domain.ChatFlag, error)
	ApplyStatusChange(dbc dbctx.Context, flagID string, newStatus domain.FlagStatus, response, actorID *string) (*domain.ChatFlag, error)
	ComputeStatistics(dbc dbctx.Context, courseName string) (*FlagStatistics, error)
}

type flagService struct {
	log        *logger.Logger
	flags      repos.FlagRepo
	storeNames StoreNameService
}

func NewFlagService(log *logger.Logger, flags repos.FlagRepo, storeNames StoreNameService) FlagService {
	return &flagService{
		log:        log.With("service", "FlagService"),
		flags:      flags,
		storeNames: storeNames,
	}
}

// ValidateTransition enforces the flag state machine: unresolved and
// resolved flip back and forth, nothing else moves. Pure function so the
// rules are testable without a store.
func ValidateTransition(from, to domain.FlagStatus) error {
	if !from.Valid() || !to.Valid() {
		return &InvalidTransitionError{From: from, To: to, Allowed: allowedTransitions(from)}
	}
	for _, allowed := range allowedTransitions(from) {
		if to == allowed {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to, Allowed: allowedTransitions(from)}
}

func allowedTransitions(from domain.FlagStatus) []domain.FlagStatus {
	switch from {
	case domain.FlagStatusUnresolved:
		return []domain.FlagStatus{domain.FlagStatusResolved}
	case domain.FlagStatusResolved:
		return []domain.FlagStatus{domain.FlagStatusUnresolved}
	default:
		return nil
	}
}

// FlagID derives the stable id for a submission: same content, user,
// course and calendar day always hash to the same flag.
func FlagID(chatContent, userID, courseName string, at time.Time) string {
	day := at.UTC().Format("2006-01-02")
	sum := sha256.Sum256([]byte(chatContent + "|" + userID + "|" + courseName + "|" + day))
	return hex.EncodeToString(sum[:])
}

func (s *flagService) SubmitFlag(dbc dbctx.Context, input SubmitFlagInput) (*domain.ChatFlag, error) {
	courseName := strings.TrimSpace(input.CourseName)
	userID := strings.TrimSpace(input.UserID)
	chatContent := strings.TrimSpace(input.ChatContent)
	if courseName == "" {
		return nil, &ValidationError{Msg: "course name required"}
	}
	if userID == "" {
		return nil, &ValidationError{Msg: "user id required"}
	}
	if chatContent == "" {
		return nil, &ValidationError{Msg: "chat content required"}
	}
	if !input.FlagType.Valid() {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown flag type %q", input.FlagType)}
	}

	names, err := s.storeNames.Resolve(dbc, courseName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	flag := &domain.ChatFlag{
		ID:          FlagID(chatContent, userID, courseName, now),
		Collection:  names.ContentFlags,
		CourseName:  courseName,
		FlagType:    input.FlagType,
		ReportType:  strings.TrimSpace(input.ReportType),
		ChatContent: chatContent,
		UserID:      userID,
		Status:      domain.FlagStatusUnresolved,
		Response:    "",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.flags.Create(dbc, flag)
	if err != nil {
		// Same report on the same day lands on the existing row.
		if repos.IsUniqueViolation(err) {
			s.log.Debug("duplicate flag submission coalesced", "flag_id", flag.ID, "course", courseName)
			return s.flags.GetByID(dbc, flag.ID)
		}
		return nil, fmt.Errorf("submit flag: %w", err)
	}

	s.log.Info("flag submitted", "flag_id", created.ID, "course", courseName, "flag_type", created.FlagType)
	return created, nil
}

func (s *flagService) GetFlag(dbc dbctx.Context, flagID string) (*domain.ChatFlag, error) {
	flag, err := s.flags.GetByID(dbc, flagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "flag", Key: flagID}
		}
		return nil, err
	}
	return flag, nil
}

func (s *flagService) ListFlags(dbc dbctx.Context, courseName string) ([]*domain.ChatFlag, error) {
	names, err := s.storeNames.Resolve(dbc, courseName)
	if err != nil {
		return nil, err
	}
	return s.flags.ListByCollection(dbc, names.ContentFlags)
}

// ApplyStatusChange validates the requested transition against the current
// record before touching the store. Not transactional across readers: a
// concurrent second writer can race the read-validate-write window.
func (s *flagService) ApplyStatusChange(dbc dbctx.Context, flagID string, newStatus domain.FlagStatus, response, actorID *string) (*domain.ChatFlag, error) {
	current, err := s.GetFlag(dbc, flagID)
	if err != nil {
		return nil, err
	}

	if err := ValidateTransition(current.Status, newStatus); err != nil {
		return nil, err
	}

	updated, err := s.flags.UpdateStatus(dbc, flagID, repos.FlagStatusUpdate{
		Status:   newStatus,
		Response: response,
		ActorID:  actorID,
		At:       time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "flag", Key: flagID}
		}
		return nil, fmt.Errorf("apply status change: %w", err)
	}

	s.log.Info("flag status changed",
		"flag_id", flagID,
		"from", current.Status,
		"to", newStatus,
	)
	return updated, nil
}

func (s *flagService) ComputeStatistics(dbc dbctx.Context, courseName string) (*FlagStatistics, error) {
	flags, err := s.ListFlags(dbc, courseName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stats := &FlagStatistics{
		Total:    len(flags),
		ByStatus: map[domain.FlagStatus]int{},
		ByType:   map[domain.FlagType]int{},
	}
	for _, flag := range flags {
		stats.ByStatus[flag.Status]++
		stats.ByType[flag.FlagType]++

		age := now.Sub(flag.CreatedAt)
		if age <= 24*time.Hour {
			stats.RecentActivity.Last24Hours++
		}
		if age <= 7*24*time.Hour {
			stats.RecentActivity.Last7Days++
		}
		if age <= 30*24*time.Hour {
			stats.RecentActivity.Last30Days++
		}
	}
	return stats, nil
}
