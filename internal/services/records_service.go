package services

import (
	"context"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	"github.com/rafabene/avantpro-members/internal/domain/ports"
	"github.com/rafabene/avantpro-members/internal/domain/repositories"
)

// RecordsService é a fachada de leitura e gravação dos registros de membros.
// Usada pela administração e pelas funções de template.
type RecordsService struct {
	accounts  repositories.AccountRepository
	oauths    repositories.OauthRepository
	providers repositories.ProviderRepository
	metas     repositories.AccountMetaRepository
	logger    ports.Logger
}

// NewRecordsService cria um novo RecordsService
func NewRecordsService(
	accounts repositories.AccountRepository,
	oauths repositories.OauthRepository,
	providers repositories.ProviderRepository,
	metas repositories.AccountMetaRepository,
	logger ports.Logger,
) *RecordsService {
	return &RecordsService{
		accounts:  accounts,
		oauths:    oauths,
		providers: providers,
		metas:     metas,
		logger:    logger,
	}
}

func (s *RecordsService) GetAccounts(ctx context.Context) ([]*entities.Account, error) {
	return s.accounts.FindAll(ctx)
}

// ListAccounts aplica os filtros da listagem administrativa
func (s *RecordsService) ListAccounts(ctx context.Context, filters repositories.AccountFilters) ([]*entities.Account, error) {
	return s.accounts.List(ctx, filters)
}

// GetAccountByGuid retorna nil quando a conta não existe
func (s *RecordsService) GetAccountByGuid(ctx context.Context, guid string) (*entities.Account, error) {
	return s.accounts.FindByGuid(ctx, guid)
}

func (s *RecordsService) GetAccountByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return s.accounts.FindByEmail(ctx, email)
}

func (s *RecordsService) GetAccountsByEnableStatus(ctx context.Context, enabled bool) ([]*entities.Account, error) {
	return s.accounts.FindByEnabled(ctx, enabled)
}

func (s *RecordsService) GetAccountMetaAll(ctx context.Context, guid string) ([]*entities.AccountMeta, error) {
	return s.metas.FindByGuid(ctx, guid)
}

func (s *RecordsService) GetProvisionsByGuid(ctx context.Context, guid string) ([]*entities.Provider, error) {
	return s.providers.FindByGuid(ctx, guid)
}

func (s *RecordsService) GetOauthByGuid(ctx context.Context, guid string) (*entities.Oauth, error) {
	return s.oauths.FindByGuid(ctx, guid)
}

func (s *RecordsService) SaveAccount(ctx context.Context, account *entities.Account) error {
	return s.accounts.Save(ctx, account)
}

func (s *RecordsService) SaveOauth(ctx context.Context, oauth *entities.Oauth) error {
	return s.oauths.Save(ctx, oauth)
}

func (s *RecordsService) SaveProvider(ctx context.Context, provider *entities.Provider) error {
	return s.providers.Save(ctx, provider)
}

func (s *RecordsService) SaveAccountMeta(ctx context.Context, meta *entities.AccountMeta) error {
	return s.metas.Save(ctx, meta)
}

// GetMember compõe a conta com todos os seus metadados. Retorna nil quando a
// conta não existe.
func (s *RecordsService) GetMember(ctx context.Context, guid string) (*entities.Member, error) {
	account, err := s.accounts.FindByGuid(ctx, guid)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, nil
	}

	metas, err := s.metas.FindByGuid(ctx, guid)
	if err != nil {
		return nil, err
	}

	return entities.NewMember(account, metas), nil
}
