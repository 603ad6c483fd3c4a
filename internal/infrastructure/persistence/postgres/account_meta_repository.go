package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	"github.com/rafabene/avantpro-members/internal/domain/repositories"
)

// AccountMetaRepository implementa repositories.AccountMetaRepository
type AccountMetaRepository struct {
	db *gorm.DB
}

// NewAccountMetaRepository cria um novo AccountMetaRepository
func NewAccountMetaRepository(db *gorm.DB) repositories.AccountMetaRepository {
	return &AccountMetaRepository{db: db}
}

// Save grava o meta; uma chave existente para o mesmo guid é sobrescrita
func (r *AccountMetaRepository) Save(ctx context.Context, meta *entities.AccountMeta) error {
	if meta.ID == 0 {
		existing, err := r.FindOne(ctx, meta.Guid, meta.Meta)
		if err != nil {
			return err
		}
		if existing != nil {
			meta.ID = existing.ID
		}
	}

	model := &AccountMetaModel{
		ID:    meta.ID,
		Guid:  meta.Guid,
		Meta:  meta.Meta,
		Value: meta.Value,
	}

	db := dbFromContext(ctx, r.db)
	if model.ID == 0 {
		if err := db.Create(model).Error; err != nil {
			return translateError(err)
		}
		meta.ID = model.ID
		return nil
	}

	return translateError(db.Save(model).Error)
}

func (r *AccountMetaRepository) FindByGuid(ctx context.Context, guid string) ([]*entities.AccountMeta, error) {
	var models []*AccountMetaModel

	db := dbFromContext(ctx, r.db)
	if err := db.Where("guid = ?", guid).Order("id ASC").Find(&models).Error; err != nil {
		return nil, translateError(err)
	}

	metas := make([]*entities.AccountMeta, 0, len(models))
	for _, model := range models {
		metas = append(metas, &entities.AccountMeta{
			ID:    model.ID,
			Guid:  model.Guid,
			Meta:  model.Meta,
			Value: model.Value,
		})
	}
	return metas, nil
}

func (r *AccountMetaRepository) FindOne(ctx context.Context, guid, key string) (*entities.AccountMeta, error) {
	var model AccountMetaModel

	db := dbFromContext(ctx, r.db)
	if err := db.Where("guid = ? AND meta = ?", guid, key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}

	return &entities.AccountMeta{ID: model.ID, Guid: model.Guid, Meta: model.Meta, Value: model.Value}, nil
}

func (r *AccountMetaRepository) DeleteByGuid(ctx context.Context, guid string) error {
	db := dbFromContext(ctx, r.db)
	return translateError(db.Where("guid = ?", guid).Delete(&AccountMetaModel{}).Error)
}
