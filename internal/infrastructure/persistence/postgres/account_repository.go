package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	domainerrors "github.com/rafabene/avantpro-members/internal/domain/errors"
	"github.com/rafabene/avantpro-members/internal/domain/events"
	"github.com/rafabene/avantpro-members/internal/domain/repositories"
	"github.com/rafabene/avantpro-members/internal/domain/valueobjects"
)

// AccountRepository implementa repositories.AccountRepository
type AccountRepository struct {
	db     *gorm.DB
	events events.Publisher
}

// NewAccountRepository cria um novo AccountRepository
func NewAccountRepository(db *gorm.DB, publisher events.Publisher) repositories.AccountRepository {
	if publisher == nil {
		publisher = events.NewDispatcher()
	}
	return &AccountRepository{db: db, events: publisher}
}

func (r *AccountRepository) Save(ctx context.Context, account *entities.Account) error {
	if account.HasGuid() {
		return r.Update(ctx, account)
	}
	return r.Insert(ctx, account)
}

func (r *AccountRepository) Insert(ctx context.Context, account *entities.Account) error {
	account.Guid = valueobjects.NewGuid()
	model := r.toModel(account)

	db := dbFromContext(ctx, r.db)
	if err := db.Create(model).Error; err != nil {
		return r.translate(err)
	}

	return nil
}

func (r *AccountRepository) Update(ctx context.Context, account *entities.Account, exclusions ...string) error {
	model := r.toModel(account)
	omit := append([]string{"guid"}, exclusions...)

	db := dbFromContext(ctx, r.db)
	result := db.Model(&AccountModel{}).
		Where("guid = ?", account.Guid).
		Select("*").
		Omit(omit...).
		Updates(model)
	if result.Error != nil {
		return r.translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, account *entities.Account) error {
	existing, err := r.FindByGuid(ctx, account.Guid)
	if err != nil {
		return err
	}
	if existing == nil {
		return domainerrors.ErrAccountNotFound
	}

	if err := r.events.Dispatch(ctx, events.AccountPreDelete, events.NewStorageEvent(existing)); err != nil {
		return err
	}

	db := dbFromContext(ctx, r.db)
	result := db.Where("guid = ?", existing.Guid).Delete(&AccountModel{})
	if result.Error != nil {
		return r.translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAccountNotFound
	}

	return r.events.Dispatch(ctx, events.AccountPostDelete, events.NewStorageEvent(existing))
}

func (r *AccountRepository) FindAll(ctx context.Context) ([]*entities.Account, error) {
	return r.List(ctx, repositories.AccountFilters{})
}

func (r *AccountRepository) FindByGuid(ctx context.Context, guid string) (*entities.Account, error) {
	return r.findOne(ctx, "guid = ?", guid)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entities.Account, error) {
	normalized, err := valueobjects.NewEmail(email)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, "email = ?", normalized.String())
}

// FindByUsername busca pelo displayname; o schema não tem coluna username
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*entities.Account, error) {
	return r.findOne(ctx, "displayname = ?", username)
}

func (r *AccountRepository) FindByEnabled(ctx context.Context, enabled bool) ([]*entities.Account, error) {
	return r.List(ctx, repositories.AccountFilters{Enabled: &enabled})
}

// likeEscaper neutraliza os curingas do LIKE em valores vindos da requisição
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *AccountRepository) List(ctx context.Context, filters repositories.AccountFilters) ([]*entities.Account, error) {
	var models []*AccountModel

	db := dbFromContext(ctx, r.db)
	query := db.Model(&AccountModel{})

	// Aplicar filtros
	if filters.Enabled != nil {
		query = query.Where("enabled = ?", *filters.Enabled)
	}
	if filters.Role != "" {
		// roles é um array JSON serializado
		query = query.Where(`roles LIKE ? ESCAPE '\'`, `%"`+likeEscaper.Replace(filters.Role)+`"%`)
	}

	// Paginação só quando pedida
	if filters.Page > 0 {
		pageSize := filters.PageSize
		if pageSize < 1 {
			pageSize = 20
		}
		if pageSize > 100 {
			pageSize = 100
		}
		query = query.Limit(pageSize).Offset((filters.Page - 1) * pageSize)
	}

	if err := query.Order("email ASC").Find(&models).Error; err != nil {
		return nil, r.translate(err)
	}

	return r.toEntities(models)
}

func (r *AccountRepository) findOne(ctx context.Context, where string, arg any) (*entities.Account, error) {
	var model AccountModel

	db := dbFromContext(ctx, r.db)
	if err := db.Where(where, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, r.translate(err)
	}

	return r.toEntity(&model)
}

func (r *AccountRepository) translate(err error) error {
	err = translateError(err)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainerrors.ErrEmailAlreadyExists
	}
	return err
}

// Conversores
func (r *AccountRepository) toModel(account *entities.Account) *AccountModel {
	roles := account.Roles
	if roles == nil {
		roles = []string{}
	}

	return &AccountModel{
		Guid:        account.Guid,
		Email:       account.Email.String(),
		Displayname: nullable(account.Displayname),
		Enabled:     account.Enabled,
		Roles:       roles,
		LastSeen:    account.LastSeen.UTC(),
		LastIP:      nullable(account.LastIP),
	}
}

func (r *AccountRepository) toEntity(model *AccountModel) (*entities.Account, error) {
	email, err := valueobjects.NewEmail(model.Email)
	if err != nil {
		return nil, err
	}

	roles := model.Roles
	if roles == nil {
		roles = []string{}
	}

	return &entities.Account{
		Guid:        model.Guid,
		Email:       email,
		Displayname: deref(model.Displayname),
		Enabled:     model.Enabled,
		Roles:       roles,
		LastSeen:    model.LastSeen,
		LastIP:      deref(model.LastIP),
	}, nil
}

func (r *AccountRepository) toEntities(models []*AccountModel) ([]*entities.Account, error) {
	accounts := make([]*entities.Account, 0, len(models))

	for _, model := range models {
		entity, err := r.toEntity(model)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, entity)
	}

	return accounts, nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
