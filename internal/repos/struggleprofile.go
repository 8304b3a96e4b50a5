package repos

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
)

type StruggleProfileRepo interface {
	Create(dbc dbctx.Context, profile *domain.StruggleProfile) (*domain.StruggleProfile, error)
	GetByUser(dbc dbctx.Context, collection, userID string) (*domain.StruggleProfile, error)
	UpdateTopics(dbc dbctx.Context, id uuid.UUID, topics datatypes.JSON) error
	DeleteByCollection(dbc dbctx.Context, collection string) (int64, error)
}

type struggleProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStruggleProfileRepo(db *gorm.DB, log *logger.Logger) StruggleProfileRepo {
	return &struggleProfileRepo{
		db:  db,
		log: log.With("repo", "StruggleProfileRepo"),
	}
}

func (r *struggleProfileRepo) Create(dbc dbctx.Context, profile *domain.StruggleProfile) (*domain.StruggleProfile, error) {
	if profile == nil {
		return nil, fmt.Errorf("missing profile")
	}
	if strings.TrimSpace(profile.Collection) == "" || strings.TrimSpace(profile.UserID) == "" {
		return nil, fmt.Errorf("missing collection or user id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *struggleProfileRepo) GetByUser(dbc dbctx.Context, collection, userID string) (*domain.StruggleProfile, error) {
	if strings.TrimSpace(collection) == "" || strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("missing collection or user id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var profile domain.StruggleProfile
	if err := transaction.WithContext(dbc.Ctx).
		Where("collection = ? AND user_id = ?", collection, userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *struggleProfileRepo) UpdateTopics(dbc dbctx.Context, id uuid.UUID, topics datatypes.JSON) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing profile id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(dbc.Ctx).
		Model(&domain.StruggleProfile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"struggle_topics": topics,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *struggleProfileRepo) DeleteByCollection(dbc dbctx.Context, collection string) (int64, error) {
	if strings.TrimSpace(collection) == "" {
		return 0, fmt.Errorf("missing collection")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(dbc.Ctx).
		Where("collection = ?", collection).
		Delete(&domain.StruggleProfile{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
