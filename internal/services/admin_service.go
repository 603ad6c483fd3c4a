package services

import (
	"context"
	"time"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	"github.com/rafabene/avantpro-members/internal/domain/errors"
	"github.com/rafabene/avantpro-members/internal/domain/events"
	"github.com/rafabene/avantpro-members/internal/domain/ports"
	"github.com/rafabene/avantpro-members/internal/domain/repositories"
	"github.com/rafabene/avantpro-members/internal/domain/valueobjects"
)

// AccountAction é uma ação administrativa aplicada a uma conta
type AccountAction func(ctx context.Context, guid string) error

// AdminService contém a lógica de negócio da administração de membros
type AdminService struct {
	accounts  repositories.AccountRepository
	oauths    repositories.OauthRepository
	providers repositories.ProviderRepository
	roles     *RolesService
	uow       ports.UnitOfWork
	events    events.Publisher
	hasher    ports.PasswordHasher
	logger    ports.Logger
}

// NewAdminService cria um novo AdminService
func NewAdminService(
	accounts repositories.AccountRepository,
	oauths repositories.OauthRepository,
	providers repositories.ProviderRepository,
	roles *RolesService,
	uow ports.UnitOfWork,
	publisher events.Publisher,
	hasher ports.PasswordHasher,
	logger ports.Logger,
) *AdminService {
	return &AdminService{
		accounts:  accounts,
		oauths:    oauths,
		providers: providers,
		roles:     roles,
		uow:       uow,
		events:    publisher,
		hasher:    hasher,
		logger:    logger,
	}
}

// ProfileInput representa os dados do formulário de perfil
type ProfileInput struct {
	Displayname string
	Email       string
	Password    string
}

// DeleteAccount remove a conta; o listener de cascata remove os registros dependentes
func (s *AdminService) DeleteAccount(ctx context.Context, guid string) error {
	s.logger.Info("deleting account", "guid", guid)

	return s.atomic(ctx, func(ctx context.Context) error {
		account, err := s.loadAccount(ctx, guid)
		if err != nil {
			return err
		}
		return s.accounts.Delete(ctx, account)
	})
}

func (s *AdminService) EnableAccount(ctx context.Context, guid string) error {
	return s.setEnabled(ctx, guid, true)
}

func (s *AdminService) DisableAccount(ctx context.Context, guid string) error {
	return s.setEnabled(ctx, guid, false)
}

func (s *AdminService) setEnabled(ctx context.Context, guid string, enabled bool) error {
	s.logger.Info("changing account status", "guid", guid, "enabled", enabled)

	return s.atomic(ctx, func(ctx context.Context) error {
		account, err := s.loadAccount(ctx, guid)
		if err != nil {
			return err
		}

		name := events.AccountDisabled
		if enabled {
			account.Enable()
			name = events.AccountEnabled
		} else {
			account.Disable()
		}

		if err := s.accounts.Update(ctx, account); err != nil {
			return err
		}
		return s.events.Dispatch(ctx, name, events.NewStorageEvent(account))
	})
}

// ValidateRole verifica o role sem acessar o banco
func (s *AdminService) ValidateRole(role string) error {
	if role == "" {
		return errors.ErrRoleRequired
	}
	if !s.roles.HasRole(role) {
		return errors.ErrRoleNotFound
	}
	return nil
}

// AddAccountRole adiciona o role ao fim da lista; adicionar um role existente não altera nada
func (s *AdminService) AddAccountRole(ctx context.Context, guid, role string) error {
	if err := s.ValidateRole(role); err != nil {
		return err
	}
	s.logger.Info("adding role", "guid", guid, "role", role)

	return s.atomic(ctx, func(ctx context.Context) error {
		account, err := s.loadAccount(ctx, guid)
		if err != nil {
			return err
		}
		if !account.AddRole(role) {
			return nil
		}

		if err := s.accounts.Update(ctx, account); err != nil {
			return err
		}
		return s.events.Dispatch(ctx, events.AccountRoleAdded, events.NewStorageEvent(account).WithRole(role))
	})
}

// DeleteAccountRole remove o role preservando a ordem dos demais
func (s *AdminService) DeleteAccountRole(ctx context.Context, guid, role string) error {
	if err := s.ValidateRole(role); err != nil {
		return err
	}
	s.logger.Info("removing role", "guid", guid, "role", role)

	return s.atomic(ctx, func(ctx context.Context) error {
		account, err := s.loadAccount(ctx, guid)
		if err != nil {
			return err
		}
		if !account.RemoveRole(role) {
			return nil
		}

		if err := s.accounts.Update(ctx, account); err != nil {
			return err
		}
		return s.events.Dispatch(ctx, events.AccountRoleRemoved, events.NewStorageEvent(account).WithRole(role))
	})
}

// RunBatch aplica a ação a cada guid, em ordem, numa única transação.
// A primeira falha interrompe o lote e desfaz as contas já processadas.
func (s *AdminService) RunBatch(ctx context.Context, guids []string, action AccountAction) error {
	if len(guids) == 0 {
		return errors.ErrNoMembers
	}

	return s.atomic(ctx, func(ctx context.Context) error {
		for _, guid := range guids {
			if err := action(ctx, guid); err != nil {
				s.logger.Warn("batch aborted", "guid", guid, "error", err)
				return err
			}
		}
		return nil
	})
}

// CreateAccount cria a conta habilitada e sem roles, as credenciais e o provider local
func (s *AdminService) CreateAccount(ctx context.Context, input ProfileInput) (*entities.Account, error) {
	s.logger.Info("creating account", "email", input.Email)

	email, err := valueobjects.NewEmail(input.Email)
	if err != nil {
		return nil, err
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &entities.Account{
		Email:       email,
		Displayname: input.Displayname,
		Enabled:     true,
		Roles:       []string{},
		LastSeen:    now,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	err = s.atomic(ctx, func(ctx context.Context) error {
		existing, err := s.accounts.FindByEmail(ctx, email.String())
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.ErrEmailAlreadyExists
		}

		if err := s.accounts.Insert(ctx, account); err != nil {
			return err
		}

		oauth := &entities.Oauth{
			Guid:            account.Guid,
			ResourceOwnerID: account.Guid,
			PasswordHash:    passwordHash,
			Enabled:         true,
		}
		if err := s.oauths.Save(ctx, oauth); err != nil {
			return err
		}

		provider := &entities.Provider{
			Guid:            account.Guid,
			Provider:        entities.ProviderLocal,
			ResourceOwnerID: account.Guid,
			LastUpdate:      now,
		}
		if err := s.providers.Save(ctx, provider); err != nil {
			return err
		}

		return s.events.Dispatch(ctx, events.AccountCreated, events.NewStorageEvent(account))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created", "guid", account.Guid)
	return account, nil
}

// UpdateProfile altera displayname, email e opcionalmente a senha.
// Garante que a conta tenha credenciais e o provider local.
func (s *AdminService) UpdateProfile(ctx context.Context, guid string, input ProfileInput) (*entities.Account, error) {
	s.logger.Info("updating account", "guid", guid)

	email, err := valueobjects.NewEmail(input.Email)
	if err != nil {
		return nil, err
	}

	passwordHash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var account *entities.Account
	err = s.atomic(ctx, func(ctx context.Context) error {
		account, err = s.loadAccount(ctx, guid)
		if err != nil {
			return err
		}

		if email != account.Email {
			existing, err := s.accounts.FindByEmail(ctx, email.String())
			if err != nil {
				return err
			}
			if existing != nil && existing.Guid != account.Guid {
				return errors.ErrEmailAlreadyExists
			}
		}

		account.Email = email
		account.Displayname = input.Displayname
		if err := account.Validate(); err != nil {
			return err
		}
		if err := s.accounts.Update(ctx, account, "enabled", "roles", "lastseen", "lastip"); err != nil {
			return err
		}

		if err := s.ensureOauth(ctx, account.Guid, passwordHash); err != nil {
			return err
		}
		if err := s.ensureLocalProvider(ctx, account.Guid); err != nil {
			return err
		}

		return s.events.Dispatch(ctx, events.AccountUpdated, events.NewStorageEvent(account))
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (s *AdminService) ensureOauth(ctx context.Context, guid, passwordHash string) error {
	oauth, err := s.oauths.FindByGuid(ctx, guid)
	if err != nil {
		return err
	}
	if oauth == nil {
		oauth = &entities.Oauth{Guid: guid, ResourceOwnerID: guid, Enabled: true}
	} else if passwordHash == "" {
		return nil
	}

	if passwordHash != "" {
		oauth.PasswordHash = passwordHash
	}
	return s.oauths.Save(ctx, oauth)
}

func (s *AdminService) ensureLocalProvider(ctx context.Context, guid string) error {
	provider, err := s.providers.FindByProvider(ctx, guid, entities.ProviderLocal)
	if err != nil {
		return err
	}
	if provider == nil {
		provider = &entities.Provider{Guid: guid, Provider: entities.ProviderLocal, ResourceOwnerID: guid}
	}
	provider.LastUpdate = time.Now().UTC()
	return s.providers.Save(ctx, provider)
}

// GetAccount busca uma conta pelo guid validando o formato
func (s *AdminService) GetAccount(ctx context.Context, guid string) (*entities.Account, error) {
	return s.loadAccount(ctx, guid)
}

func (s *AdminService) loadAccount(ctx context.Context, guid string) (*entities.Account, error) {
	canonical, err := valueobjects.ParseGuid(guid)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByGuid(ctx, canonical)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, errors.ErrAccountNotFound
	}
	return account, nil
}

func (s *AdminService) hashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	return s.hasher.Hash(password)
}

// atomic executa fn numa transação e só entrega as notificações de observers
// depois do commit. Dentro de um lote, participa da transação e da fila do lote.
func (s *AdminService) atomic(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := events.QueueFromContext(ctx); ok {
		return s.uow.WithTransaction(ctx, fn)
	}

	ctx, queue := events.WithQueue(ctx)
	if err := s.uow.WithTransaction(ctx, fn); err != nil {
		queue.Discard()
		return err
	}
	queue.Flush()
	return nil
}
