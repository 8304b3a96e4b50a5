package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
	"github.com/ubc/tlef-engeai-sub001/internal/repos"
)

// Identity is the minimal user projection the ledger needs.
type Identity struct {
	UserID      string
	Name        string
	Affiliation string
}

// Role maps an external affiliation value onto a ledger role. Only the
// literal "student" affiliation produces a Student; everything else is
// treated as instructor.
func (i Identity) Role() domain.LedgerRole {
	if strings.EqualFold(strings.TrimSpace(i.Affiliation), "student") {
		return domain.LedgerRoleStudent
	}
	return domain.LedgerRoleInstructor
}

type IdentityService interface {
	Lookup(dbc dbctx.Context, courseName, userID string) (*Identity, error)
}

type identityService struct {
	log        *logger.Logger
	users      repos.UserRepo
	storeNames StoreNameService
}

func NewIdentityService(log *logger.Logger, users repos.UserRepo, storeNames StoreNameService) IdentityService {
	return &identityService{
		log:        log.With("service", "IdentityService"),
		users:      users,
		storeNames: storeNames,
	}
}

func (s *identityService) Lookup(dbc dbctx.Context, courseName, userID string) (*Identity, error) {
	names, err := s.storeNames.Resolve(dbc, courseName)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByUserID(dbc, names.UserLedger, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UserNotFoundError{UserID: userID, Collection: names.UserLedger}
		}
		return nil, err
	}
	return &Identity{
		UserID:      user.UserID,
		Name:        user.Name,
		Affiliation: user.Affiliation,
	}, nil
}
