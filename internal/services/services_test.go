package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	domainerrors "github.com/rafabene/avantpro-members/internal/domain/errors"
	"github.com/rafabene/avantpro-members/internal/domain/events"
	"github.com/rafabene/avantpro-members/internal/domain/valueobjects"
	"github.com/rafabene/avantpro-members/internal/infrastructure/logging"
	"github.com/rafabene/avantpro-members/internal/infrastructure/persistence/postgres"
	"github.com/rafabene/avantpro-members/internal/infrastructure/security"
)

type testEnv struct {
	db         *gorm.DB
	dispatcher *events.Dispatcher
	records    *RecordsService
	admin      *AdminService
	observed   []string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), postgres.NewGormConfig(logger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, postgres.Migrate(db))

	log := logging.NewSlogLoggerTo(io.Discard, "error")
	dispatcher := events.NewDispatcher()

	accounts := postgres.NewAccountRepository(db, dispatcher)
	oauths := postgres.NewOauthRepository(db)
	providers := postgres.NewProviderRepository(db)
	metas := postgres.NewAccountMetaRepository(db)
	RegisterCascade(dispatcher, oauths, providers, metas)

	roles := NewRolesService(entities.ParseRoles("participant:Participant,author:Author"))

	env := &testEnv{
		db:         db,
		dispatcher: dispatcher,
		records:    NewRecordsService(accounts, oauths, providers, metas, log),
		// cost mínimo do bcrypt para testes rápidos
		admin: NewAdminService(accounts, oauths, providers, roles, postgres.NewUnitOfWork(db), dispatcher, security.NewBcryptHasher(4), log),
	}
	dispatcher.Observe(events.Wildcard, func(e *events.StorageEvent) {
		env.observed = append(env.observed, e.Name)
	})

	return env
}

func (env *testEnv) create(t *testing.T, email string) *entities.Account {
	t.Helper()
	account, err := env.admin.CreateAccount(context.Background(), ProfileInput{Displayname: "Jane", Email: email})
	require.NoError(t, err)
	return account
}

func TestAdminService_CreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("cria conta habilitada sem roles com oauth e provider local", func(t *testing.T) {
		env := setupTestEnv(t)

		account, err := env.admin.CreateAccount(ctx, ProfileInput{Displayname: "Jane", Email: "jane@x.com"})
		require.NoError(t, err)
		assert.True(t, valueobjects.IsValidGuid(account.Guid))

		stored, err := env.records.GetAccountByEmail(ctx, "jane@x.com")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.True(t, stored.Enabled)
		assert.Empty(t, stored.Roles)

		oauth, err := env.records.GetOauthByGuid(ctx, account.Guid)
		require.NoError(t, err)
		require.NotNil(t, oauth)
		assert.Equal(t, account.Guid, oauth.ResourceOwnerID)
		assert.False(t, oauth.HasPassword())

		providers, err := env.records.GetProvisionsByGuid(ctx, account.Guid)
		require.NoError(t, err)
		require.Len(t, providers, 1)
		assert.True(t, providers[0].IsLocal())

		assert.Equal(t, []string{events.AccountCreated}, env.observed)
	})

	t.Run("senha é gravada com bcrypt", func(t *testing.T) {
		env := setupTestEnv(t)

		account, err := env.admin.CreateAccount(ctx, ProfileInput{Displayname: "Jane", Email: "jane@x.com", Password: "secret123"})
		require.NoError(t, err)

		oauth, err := env.records.GetOauthByGuid(ctx, account.Guid)
		require.NoError(t, err)
		assert.True(t, security.NewBcryptHasher(4).Compare(oauth.PasswordHash, "secret123"))
	})

	t.Run("email duplicado", func(t *testing.T) {
		env := setupTestEnv(t)
		env.create(t, "jane@x.com")

		_, err := env.admin.CreateAccount(ctx, ProfileInput{Displayname: "Other", Email: "Jane@X.com"})
		assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyExists)
	})

	t.Run("email inválido", func(t *testing.T) {
		env := setupTestEnv(t)

		_, err := env.admin.CreateAccount(ctx, ProfileInput{Displayname: "Jane", Email: "nope"})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidEmail)
	})
}

func TestAdminService_StatusAndRoles(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	account := env.create(t, "jane@x.com")
	env.observed = nil

	t.Run("disable e enable", func(t *testing.T) {
		require.NoError(t, env.admin.DisableAccount(ctx, account.Guid))
		stored, _ := env.records.GetAccountByGuid(ctx, account.Guid)
		assert.False(t, stored.Enabled)

		require.NoError(t, env.admin.EnableAccount(ctx, account.Guid))
		stored, _ = env.records.GetAccountByGuid(ctx, account.Guid)
		assert.True(t, stored.Enabled)

		assert.Equal(t, []string{events.AccountDisabled, events.AccountEnabled}, env.observed)
	})

	t.Run("role add é idempotente e preserva a ordem", func(t *testing.T) {
		require.NoError(t, env.admin.AddAccountRole(ctx, account.Guid, "participant"))
		require.NoError(t, env.admin.AddAccountRole(ctx, account.Guid, "author"))
		require.NoError(t, env.admin.AddAccountRole(ctx, account.Guid, "participant"))

		stored, _ := env.records.GetAccountByGuid(ctx, account.Guid)
		assert.Equal(t, []string{"participant", "author"}, stored.Roles)

		require.NoError(t, env.admin.DeleteAccountRole(ctx, account.Guid, "participant"))
		stored, _ = env.records.GetAccountByGuid(ctx, account.Guid)
		assert.Equal(t, []string{"author"}, stored.Roles)
	})

	t.Run("erros de validação", func(t *testing.T) {
		assert.ErrorIs(t, env.admin.AddAccountRole(ctx, account.Guid, ""), domainerrors.ErrRoleRequired)
		assert.ErrorIs(t, env.admin.AddAccountRole(ctx, account.Guid, "ghost"), domainerrors.ErrRoleNotFound)
		assert.ErrorIs(t, env.admin.EnableAccount(ctx, "bad-guid"), domainerrors.ErrInvalidGuid)
		assert.ErrorIs(t, env.admin.EnableAccount(ctx, valueobjects.NewGuid()), domainerrors.ErrAccountNotFound)
	})
}

func TestAdminService_DeleteAccount(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	account := env.create(t, "jane@x.com")
	require.NoError(t, env.records.SaveAccountMeta(ctx, &entities.AccountMeta{Guid: account.Guid, Meta: "city", Value: "Lisboa"}))
	env.observed = nil

	require.NoError(t, env.admin.DeleteAccount(ctx, account.Guid))

	stored, err := env.records.GetAccountByGuid(ctx, account.Guid)
	require.NoError(t, err)
	assert.Nil(t, stored)

	oauth, err := env.records.GetOauthByGuid(ctx, account.Guid)
	require.NoError(t, err)
	assert.Nil(t, oauth)

	providers, err := env.records.GetProvisionsByGuid(ctx, account.Guid)
	require.NoError(t, err)
	assert.Empty(t, providers)

	metas, err := env.records.GetAccountMetaAll(ctx, account.Guid)
	require.NoError(t, err)
	assert.Empty(t, metas)

	assert.Equal(t, []string{events.AccountPreDelete, events.AccountPostDelete}, env.observed)

	assert.ErrorIs(t, env.admin.DeleteAccount(ctx, account.Guid), domainerrors.ErrAccountNotFound)
}

func TestAdminService_RunBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("lista vazia", func(t *testing.T) {
		env := setupTestEnv(t)
		assert.ErrorIs(t, env.admin.RunBatch(ctx, nil, env.admin.DeleteAccount), domainerrors.ErrNoMembers)
	})

	t.Run("aplica em todos", func(t *testing.T) {
		env := setupTestEnv(t)
		a := env.create(t, "a@x.com")
		b := env.create(t, "b@x.com")

		require.NoError(t, env.admin.RunBatch(ctx, []string{a.Guid, b.Guid}, env.admin.DisableAccount))

		disabled, err := env.records.GetAccountsByEnableStatus(ctx, false)
		require.NoError(t, err)
		assert.Len(t, disabled, 2)
	})

	t.Run("falha desfaz os itens anteriores", func(t *testing.T) {
		env := setupTestEnv(t)
		a := env.create(t, "a@x.com")
		env.observed = nil

		err := env.admin.RunBatch(ctx, []string{a.Guid, "bad-guid"}, env.admin.DeleteAccount)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidGuid)

		stored, err := env.records.GetAccountByGuid(ctx, a.Guid)
		require.NoError(t, err)
		require.NotNil(t, stored)

		oauth, err := env.records.GetOauthByGuid(ctx, a.Guid)
		require.NoError(t, err)
		assert.NotNil(t, oauth)

		assert.Empty(t, env.observed)
	})
}

func TestAdminService_GuidEmMaiusculas(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	account := env.create(t, "jane@x.com")
	upper := strings.ToUpper(account.Guid)

	t.Run("GetAccount encontra a conta", func(t *testing.T) {
		found, err := env.admin.GetAccount(ctx, upper)
		require.NoError(t, err)
		assert.Equal(t, account.Guid, found.Guid)
	})

	t.Run("RunBatch desabilita a conta", func(t *testing.T) {
		require.NoError(t, env.admin.RunBatch(ctx, []string{upper}, env.admin.DisableAccount))

		stored, err := env.records.GetAccountByGuid(ctx, account.Guid)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.False(t, stored.Enabled)
	})
}

func TestAdminService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	jane := env.create(t, "jane@x.com")
	env.create(t, "john@x.com")
	require.NoError(t, env.admin.AddAccountRole(ctx, jane.Guid, "author"))

	t.Run("altera perfil sem mexer em roles", func(t *testing.T) {
		updated, err := env.admin.UpdateProfile(ctx, jane.Guid, ProfileInput{Displayname: "Janet", Email: "janet@x.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, "janet@x.com", updated.Email.String())

		stored, _ := env.records.GetAccountByGuid(ctx, jane.Guid)
		assert.Equal(t, "Janet", stored.Displayname)
		assert.Equal(t, []string{"author"}, stored.Roles)
		assert.True(t, stored.Enabled)

		oauth, _ := env.records.GetOauthByGuid(ctx, jane.Guid)
		assert.True(t, oauth.HasPassword())
	})

	t.Run("email de outra conta", func(t *testing.T) {
		_, err := env.admin.UpdateProfile(ctx, jane.Guid, ProfileInput{Displayname: "Janet", Email: "john@x.com"})
		assert.ErrorIs(t, err, domainerrors.ErrEmailAlreadyExists)
	})

	t.Run("recria o provider local", func(t *testing.T) {
		require.NoError(t, postgres.NewProviderRepository(env.db).DeleteByGuid(ctx, jane.Guid))

		_, err := env.admin.UpdateProfile(ctx, jane.Guid, ProfileInput{Displayname: "Janet", Email: "janet@x.com"})
		require.NoError(t, err)

		providers, _ := env.records.GetProvisionsByGuid(ctx, jane.Guid)
		require.Len(t, providers, 1)
		assert.True(t, providers[0].IsLocal())
	})
}

func TestRecordsService_GetMember(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)
	account := env.create(t, "jane@x.com")
	require.NoError(t, env.records.SaveAccountMeta(ctx, &entities.AccountMeta{Guid: account.Guid, Meta: "city", Value: "Lisboa"}))

	member, err := env.records.GetMember(ctx, account.Guid)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, "Lisboa", member.MetaValue("city"))
	assert.Equal(t, "jane@x.com", member.Email.String())

	missing, err := env.records.GetMember(ctx, valueobjects.NewGuid())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRolesService(t *testing.T) {
	roles := NewRolesService(entities.ParseRoles("participant:Participant,author"))

	assert.True(t, roles.HasRole("author"))
	assert.False(t, roles.HasRole("admin"))
	assert.Equal(t, []string{"participant", "author"}, roles.GetRoles().Names())
}

func TestRecordsService_Save(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	t.Run("conta nova recebe guid", func(t *testing.T) {
		account := &entities.Account{Email: valueobjects.MustEmail("new@x.com"), Displayname: "New", Enabled: true}
		require.NoError(t, env.records.SaveAccount(ctx, account))
		require.True(t, valueobjects.IsValidGuid(account.Guid))

		account.Displayname = "Renamed"
		require.NoError(t, env.records.SaveAccount(ctx, account))

		stored, err := env.records.GetAccountByGuid(ctx, account.Guid)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", stored.Displayname)
	})

	t.Run("oauth e providers", func(t *testing.T) {
		account := env.create(t, "jane@x.com")

		require.NoError(t, env.records.SaveOauth(ctx, &entities.Oauth{
			Guid:            account.Guid,
			ResourceOwnerID: account.Guid,
			PasswordHash:    "hash",
			Enabled:         true,
		}))
		oauth, err := env.records.GetOauthByGuid(ctx, account.Guid)
		require.NoError(t, err)
		assert.True(t, oauth.HasPassword())

		require.NoError(t, env.records.SaveProvider(ctx, &entities.Provider{
			Guid:            account.Guid,
			Provider:        "github",
			ResourceOwnerID: "gh-1",
		}))
		providers, err := env.records.GetProvisionsByGuid(ctx, account.Guid)
		require.NoError(t, err)
		assert.Len(t, providers, 2)
	})
}
