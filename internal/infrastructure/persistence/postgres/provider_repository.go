package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	"github.com/rafabene/avantpro-members/internal/domain/repositories"
)

// ProviderRepository implementa repositories.ProviderRepository
type ProviderRepository struct {
	db *gorm.DB
}

// NewProviderRepository cria um novo ProviderRepository
func NewProviderRepository(db *gorm.DB) repositories.ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) Save(ctx context.Context, provider *entities.Provider) error {
	model := &ProviderModel{
		ID:              provider.ID,
		Guid:            provider.Guid,
		Provider:        provider.Provider,
		ResourceOwnerID: provider.ResourceOwnerID,
		LastUpdate:      provider.LastUpdate.UTC(),
	}

	db := dbFromContext(ctx, r.db)
	if model.ID == 0 {
		if err := db.Create(model).Error; err != nil {
			return translateError(err)
		}
		provider.ID = model.ID
		return nil
	}

	return translateError(db.Save(model).Error)
}

func (r *ProviderRepository) FindByGuid(ctx context.Context, guid string) ([]*entities.Provider, error) {
	var models []*ProviderModel

	db := dbFromContext(ctx, r.db)
	if err := db.Where("guid = ?", guid).Order("id ASC").Find(&models).Error; err != nil {
		return nil, translateError(err)
	}

	providers := make([]*entities.Provider, 0, len(models))
	for _, model := range models {
		providers = append(providers, toProviderEntity(model))
	}
	return providers, nil
}

func (r *ProviderRepository) FindByProvider(ctx context.Context, guid, provider string) (*entities.Provider, error) {
	var model ProviderModel

	db := dbFromContext(ctx, r.db)
	if err := db.Where("guid = ? AND provider = ?", guid, provider).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}

	return toProviderEntity(&model), nil
}

func (r *ProviderRepository) DeleteByGuid(ctx context.Context, guid string) error {
	db := dbFromContext(ctx, r.db)
	return translateError(db.Where("guid = ?", guid).Delete(&ProviderModel{}).Error)
}

func toProviderEntity(model *ProviderModel) *entities.Provider {
	return &entities.Provider{
		ID:              model.ID,
		Guid:            model.Guid,
		Provider:        model.Provider,
		ResourceOwnerID: model.ResourceOwnerID,
		LastUpdate:      model.LastUpdate,
	}
}
