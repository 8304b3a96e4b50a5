package repos

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ubc/tlef-engeai-sub001/internal/domain"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/dbctx"
	"github.com/ubc/tlef-engeai-sub001/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, user *domain.User) (*domain.User, error)
	GetByUserID(dbc dbctx.Context, collection, userID string) (*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
	return &userRepo{
		db:  db,
		log: log.With("repo", "UserRepo"),
	}
}

func (r *userRepo) Create(dbc dbctx.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, fmt.Errorf("missing user")
	}
	if strings.TrimSpace(user.Collection) == "" || strings.TrimSpace(user.UserID) == "" {
		return nil, fmt.Errorf("missing collection or user id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByUserID(dbc dbctx.Context, collection, userID string) (*domain.User, error) {
	if strings.TrimSpace(collection) == "" || strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("missing collection or user id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var user domain.User
	if err := transaction.WithContext(dbc.Ctx).
		Where("collection = ? AND user_id = ?", collection, userID).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
