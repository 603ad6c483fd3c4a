package repositories

import (
	"context"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
)

// AccountRepository define a interface para persistência de contas
type AccountRepository interface {
	// Save atualiza quando a conta já tem GUID, senão insere
	Save(ctx context.Context, account *entities.Account) error
	// Insert sempre gera um GUID novo, ignorando o que vier na entidade
	Insert(ctx context.Context, account *entities.Account) error
	// Update persiste pelo GUID; exclusions são colunas que não devem ser gravadas
	Update(ctx context.Context, account *entities.Account, exclusions ...string) error
	// Delete dispara account.pre_delete e account.post_delete ao redor da remoção
	Delete(ctx context.Context, account *entities.Account) error

	FindAll(ctx context.Context) ([]*entities.Account, error)
	FindByGuid(ctx context.Context, guid string) (*entities.Account, error)
	FindByEmail(ctx context.Context, email string) (*entities.Account, error)
	FindByUsername(ctx context.Context, username string) (*entities.Account, error)
	FindByEnabled(ctx context.Context, enabled bool) ([]*entities.Account, error)
	List(ctx context.Context, filters AccountFilters) ([]*entities.Account, error)
}

// AccountFilters contém filtros para listagem de contas
type AccountFilters struct {
	Enabled  *bool
	Role     string
	Page     int // Página (começa em 1); 0 lista tudo
	PageSize int // Itens por página (default: 20, max: 100)
}

// OauthRepository define a persistência das credenciais
type OauthRepository interface {
	Save(ctx context.Context, oauth *entities.Oauth) error
	FindByGuid(ctx context.Context, guid string) (*entities.Oauth, error)
	FindByResourceOwnerID(ctx context.Context, resourceOwnerID string) (*entities.Oauth, error)
	DeleteByGuid(ctx context.Context, guid string) error
}

// ProviderRepository define a persistência dos providers de identidade
type ProviderRepository interface {
	Save(ctx context.Context, provider *entities.Provider) error
	FindByGuid(ctx context.Context, guid string) ([]*entities.Provider, error)
	FindByProvider(ctx context.Context, guid, provider string) (*entities.Provider, error)
	DeleteByGuid(ctx context.Context, guid string) error
}

// AccountMetaRepository define a persistência dos metadados de conta
type AccountMetaRepository interface {
	Save(ctx context.Context, meta *entities.AccountMeta) error
	FindByGuid(ctx context.Context, guid string) ([]*entities.AccountMeta, error)
	FindOne(ctx context.Context, guid, key string) (*entities.AccountMeta, error)
	DeleteByGuid(ctx context.Context, guid string) error
}
