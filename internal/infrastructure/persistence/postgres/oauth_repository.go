package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	"github.com/rafabene/avantpro-members/internal/domain/repositories"
)

// OauthRepository implementa repositories.OauthRepository
type OauthRepository struct {
	db *gorm.DB
}

// NewOauthRepository cria um novo OauthRepository
func NewOauthRepository(db *gorm.DB) repositories.OauthRepository {
	return &OauthRepository{db: db}
}

// Save insere ou atualiza pela chave guid
func (r *OauthRepository) Save(ctx context.Context, oauth *entities.Oauth) error {
	model := &OauthModel{
		Guid:            oauth.Guid,
		ResourceOwnerID: oauth.ResourceOwnerID,
		Password:        nullable(oauth.PasswordHash),
		Enabled:         oauth.Enabled,
	}

	db := dbFromContext(ctx, r.db)
	return translateError(db.Save(model).Error)
}

func (r *OauthRepository) FindByGuid(ctx context.Context, guid string) (*entities.Oauth, error) {
	return r.findOne(ctx, "guid = ?", guid)
}

func (r *OauthRepository) FindByResourceOwnerID(ctx context.Context, resourceOwnerID string) (*entities.Oauth, error) {
	return r.findOne(ctx, "resource_owner_id = ?", resourceOwnerID)
}

func (r *OauthRepository) DeleteByGuid(ctx context.Context, guid string) error {
	db := dbFromContext(ctx, r.db)
	return translateError(db.Where("guid = ?", guid).Delete(&OauthModel{}).Error)
}

func (r *OauthRepository) findOne(ctx context.Context, where string, arg any) (*entities.Oauth, error) {
	var model OauthModel

	db := dbFromContext(ctx, r.db)
	if err := db.Where(where, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}

	return &entities.Oauth{
		Guid:            model.Guid,
		ResourceOwnerID: model.ResourceOwnerID,
		PasswordHash:    deref(model.Password),
		Enabled:         model.Enabled,
	}, nil
}
