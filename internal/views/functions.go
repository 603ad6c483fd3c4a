package views

import (
	"context"
	"html/template"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	"github.com/rafabene/avantpro-members/internal/domain/ports"
	"github.com/rafabene/avantpro-members/internal/forms"
	"github.com/rafabene/avantpro-members/internal/infrastructure/config"
	"github.com/rafabene/avantpro-members/internal/infrastructure/i18n"
	"github.com/rafabene/avantpro-members/internal/infrastructure/session"
)

// BindingNames são as funções de membros disponíveis nos templates
var BindingNames = []string{
	"is_member",
	"member",
	"member_meta",
	"member_has_role",
	"member_providers",
	"members_auth_switcher",
	"members_auth_associate",
	"members_auth_login",
	"members_auth_logout",
	"members_profile_edit",
	"members_profile_register",
}

// MemberRecords é o que as funções de template leem dos registros
type MemberRecords interface {
	GetMember(ctx context.Context, guid string) (*entities.Member, error)
	GetAccountByGuid(ctx context.Context, guid string) (*entities.Account, error)
	GetAccountMetaAll(ctx context.Context, guid string) ([]*entities.AccountMeta, error)
	GetProvisionsByGuid(ctx context.Context, guid string) ([]*entities.Provider, error)
}

// Functions expõe a área de membros aos templates
type Functions struct {
	records   MemberRecords
	forms     *forms.Manager
	renderer  *Renderer
	templates config.TemplatesConfig
	i18n      *i18n.Service
	logger    ports.Logger
}

// NewFunctions cria as funções de template
func NewFunctions(
	records MemberRecords,
	formsManager *forms.Manager,
	renderer *Renderer,
	templates config.TemplatesConfig,
	i18nService *i18n.Service,
	logger ports.Logger,
) *Functions {
	return &Functions{
		records:   records,
		forms:     formsManager,
		renderer:  renderer,
		templates: templates,
		i18n:      i18nService,
		logger:    logger,
	}
}

// FuncMap devolve as funções ligadas à sessão e ao idioma de ctx
func (f *Functions) FuncMap(ctx context.Context) template.FuncMap {
	b := &binding{Functions: f, ctx: ctx, session: session.FromContext(ctx)}

	return template.FuncMap{
		"t":    b.translate,
		"lang": b.language,

		"is_member":                b.isMember,
		"member":                   b.member,
		"member_meta":              b.memberMeta,
		"member_has_role":          b.memberHasRole,
		"member_providers":         b.memberProviders,
		"members_auth_switcher":    b.authSwitcher,
		"members_auth_associate":   b.authAssociate,
		"members_auth_login":       b.authLogin,
		"members_auth_logout":      b.authLogout,
		"members_profile_edit":     b.profileEdit,
		"members_profile_register": b.profileRegister,
	}
}

// binding é o estado de uma renderização
type binding struct {
	*Functions
	ctx     context.Context
	session *session.Session
}

func (b *binding) translate(key string, params ...map[string]interface{}) string {
	if b.i18n == nil {
		return key
	}
	return b.i18n.TContext(b.ctx, key, params...)
}

func (b *binding) language() string {
	fallback := "en"
	if b.i18n != nil {
		fallback = b.i18n.GetDefaultLanguage()
	}
	return i18n.LanguageFromContext(b.ctx, fallback)
}

func (b *binding) isMember() bool {
	return b.session.HasAuthorisation()
}

// resolveGuid usa o guid informado ou o do membro da sessão
func (b *binding) resolveGuid(guid []string) string {
	if len(guid) > 0 && guid[0] != "" {
		return guid[0]
	}
	if b.session.HasAuthorisation() {
		return b.session.GetAuthorisation().Guid
	}
	return ""
}

func (b *binding) member(guid ...string) (*entities.Member, error) {
	id := b.resolveGuid(guid)
	if id == "" {
		return nil, nil
	}
	return b.records.GetMember(b.ctx, id)
}

func (b *binding) memberMeta(guid ...string) ([]*entities.AccountMeta, error) {
	id := b.resolveGuid(guid)
	if id == "" {
		return []*entities.AccountMeta{}, nil
	}
	return b.records.GetAccountMetaAll(b.ctx, id)
}

func (b *binding) memberHasRole(role string) bool {
	return b.session.HasRole(role)
}

func (b *binding) memberProviders(guid ...string) ([]*entities.Provider, error) {
	id := b.resolveGuid(guid)
	if id == "" {
		return []*entities.Provider{}, nil
	}
	return b.records.GetProvisionsByGuid(b.ctx, id)
}

func (b *binding) authSwitcher(tpl ...string) (template.HTML, error) {
	if b.session.HasAuthorisation() {
		return b.authLogout(tpl...)
	}
	return b.authLogin(tpl...)
}

func (b *binding) authAssociate(tpl ...string) (template.HTML, error) {
	if !b.session.HasAuthorisation() {
		return b.authLogin()
	}
	return b.render(b.forms.GetFormAssociate(b.ctx), pick(tpl, b.templates.Associate), nil)
}

func (b *binding) authLogin(tpl ...string) (template.HTML, error) {
	return b.render(b.forms.GetFormLogin(b.ctx), pick(tpl, b.templates.Login), map[string]any{
		"transitional": b.session.IsTransitional(),
	})
}

func (b *binding) authLogout(tpl ...string) (template.HTML, error) {
	return b.render(b.forms.GetFormLogout(b.ctx), pick(tpl, b.templates.Logout), nil)
}

func (b *binding) profileEdit(tpl ...string) (template.HTML, error) {
	if !b.session.HasAuthorisation() {
		return b.authLogin()
	}

	account, err := b.records.GetAccountByGuid(b.ctx, b.session.GetAuthorisation().Guid)
	if err != nil {
		return "", err
	}
	return b.render(b.forms.GetFormProfileEdit(b.ctx, account), pick(tpl, b.templates.Edit), map[string]any{
		"member": account,
	})
}

func (b *binding) profileRegister(tpl ...string) (template.HTML, error) {
	return b.render(b.forms.GetFormProfileRegister(b.ctx), pick(tpl, b.templates.Register), map[string]any{
		"transitional": b.session.IsTransitional(),
	})
}

func (b *binding) render(resolved *forms.ResolvedForm, name string, data map[string]any) (template.HTML, error) {
	html, err := b.forms.RenderForms(b.renderer, resolved, name, data, b.FuncMap(b.ctx))
	if err != nil {
		b.logger.Error("failed to render member widget", "template", name, "error", err)
		return "", err
	}
	return html, nil
}

func pick(tpl []string, fallback string) string {
	if len(tpl) > 0 && tpl[0] != "" {
		return tpl[0]
	}
	return fallback
}
