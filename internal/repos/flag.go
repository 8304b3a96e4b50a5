package repos

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
)

// FlagStatusUpdate carries the mutable fields of a status change. Response
// and actor are only written when present, so a plain re-open does not
// clobber an earlier resolution note.
type FlagStatusUpdate struct {
	Status   domain.FlagStatus
	Response *string
	ActorID  *string
	At       time.Time
}

type FlagRepo interface {
	Create(dbc dbctx.Context, flag *domain.ChatFlag) (*domain.ChatFlag, error)
	GetByID(dbc dbctx.Context, id string) (*domain.ChatFlag, error)
	ListByCollection(dbc dbctx.Context, collection string) ([]*domain.ChatFlag, error)
	UpdateStatus(dbc dbctx.Context, id string, update FlagStatusUpdate) (*domain.ChatFlag, error)
	DeleteByCollection(dbc dbctx.Context, collection string) (int64, error)
}

type flagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlagRepo(db *gorm.DB, log *logger.Logger) FlagRepo {
	return &flagRepo{
		db:  db,
		log: log.With("repo", "FlagRepo"),
	}
}

func (r *flagRepo) Create(dbc dbctx.Context, flag *domain.ChatFlag) (*domain.ChatFlag, error) {
	if flag == nil {
		return nil, fmt.Errorf("missing flag")
	}
	if strings.TrimSpace(flag.ID) == "" {
		return nil, fmt.Errorf("missing flag id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(flag).Error; err != nil {
		return nil, err
	}
	return flag, nil
}

func (r *flagRepo) GetByID(dbc dbctx.Context, id string) (*domain.ChatFlag, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("missing flag id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var flag domain.ChatFlag
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&flag).Error; err != nil {
		return nil, err
	}
	return &flag, nil
}

func (r *flagRepo) ListByCollection(dbc dbctx.Context, collection string) ([]*domain.ChatFlag, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("missing collection")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.ChatFlag
	if err := transaction.WithContext(dbc.Ctx).
		Where("collection = ?", collection).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *flagRepo) UpdateStatus(dbc dbctx.Context, id string, update FlagStatusUpdate) (*domain.ChatFlag, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("missing flag id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	at := update.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	fields := map[string]any{
		"status":     update.Status,
		"updated_at": at,
	}
	if update.Response != nil {
		fields["response"] = *update.Response
	}
	if update.ActorID != nil {
		fields["last_updated_by"] = *update.ActorID
		fields["last_updated_at"] = at
	}

	result := transaction.WithContext(dbc.Ctx).
		Model(&domain.ChatFlag{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(dbc, id)
}

func (r *flagRepo) DeleteByCollection(dbc dbctx.Context, collection string) (int64, error) {
	if strings.TrimSpace(collection) == "" {
		return 0, fmt.Errorf("missing collection")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(dbc.Ctx).
		Where("collection = ?", collection).
		Delete(&domain.ChatFlag{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
