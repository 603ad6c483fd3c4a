package forms

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	domainerrors "github.com/rafabene/avantpro-members/internal/domain/errors"
	"github.com/rafabene/avantpro-members/internal/infrastructure/config"
)

// Nomes dos formulários expostos aos templates
const (
	FormLogin     = "form_login"
	FormLogout    = "form_logout"
	FormAssociate = "form_associate"
	FormProfile   = "form_profile"
)

// ProfileSubmission são os dados enviados pelo formulário de perfil
type ProfileSubmission struct {
	Displayname string `form:"displayname" json:"displayname" validate:"required,min=2,max=32"`
	Email       string `form:"email" json:"email" validate:"required,email,max=128"`
	Password    string `form:"password" json:"password" validate:"omitempty,min=6,max=72"`
}

// Translator traduz mensagens no idioma do contexto
type Translator interface {
	TContext(ctx context.Context, key string, params ...map[string]interface{}) string
}

// Renderer executa um template nomeado
type Renderer interface {
	Render(w io.Writer, name string, data any, funcs template.FuncMap) error
}

// Field é um campo de formulário pronto para renderizar
type Field struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Error    string
	Required bool
}

// Form descreve um formulário: destino, campos, valores e erros
type Form struct {
	Name   string
	Action string
	Method string
	Submit string
	Fields []*Field
	Errors []string
}

// Field retorna o campo pelo nome ou nil
func (f *Form) Field(name string) *Field {
	for _, field := range f.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

// Valid indica que nenhum campo nem o formulário possuem erro
func (f *Form) Valid() bool {
	if len(f.Errors) > 0 {
		return false
	}
	for _, field := range f.Fields {
		if field.Error != "" {
			return false
		}
	}
	return true
}

// ResolvedForm agrupa os formulários disponíveis para um template
type ResolvedForm struct {
	forms map[string]*Form
}

// NewResolvedForm agrupa os formulários pelo nome
func NewResolvedForm(forms ...*Form) *ResolvedForm {
	r := &ResolvedForm{forms: make(map[string]*Form, len(forms))}
	for _, form := range forms {
		r.forms[form.Name] = form
	}
	return r
}

// GetForm retorna o formulário pelo nome ou nil
func (r *ResolvedForm) GetForm(name string) *Form {
	return r.forms[name]
}

// Manager monta, valida e renderiza formulários
type Manager struct {
	validate   *validator.Validate
	actions    config.FormActions
	translator Translator
}

// NewManager cria um novo Manager
func NewManager(actions config.FormActions, translator Translator) *Manager {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Erros reportados pelo nome do campo do formulário
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Manager{
		validate:   validate,
		actions:    actions,
		translator: translator,
	}
}

func (m *Manager) GetFormLogin(ctx context.Context) *ResolvedForm {
	return NewResolvedForm(&Form{
		Name:   FormLogin,
		Action: m.actions.Login,
		Method: "post",
		Submit: m.t(ctx, "form.login"),
		Fields: []*Field{
			m.field(ctx, "email", "email", true),
			m.field(ctx, "password", "password", true),
		},
	})
}

func (m *Manager) GetFormLogout(ctx context.Context) *ResolvedForm {
	return NewResolvedForm(&Form{
		Name:   FormLogout,
		Action: m.actions.Logout,
		Method: "post",
		Submit: m.t(ctx, "form.logout"),
	})
}

func (m *Manager) GetFormAssociate(ctx context.Context) *ResolvedForm {
	return NewResolvedForm(&Form{
		Name:   FormAssociate,
		Action: m.actions.Associate,
		Method: "post",
		Submit: m.t(ctx, "form.associate"),
		Fields: []*Field{
			m.field(ctx, "email", "email", true),
			m.field(ctx, "password", "password", true),
		},
	})
}

func (m *Manager) GetFormProfileRegister(ctx context.Context) *ResolvedForm {
	return NewResolvedForm(m.ProfileForm(ctx, m.actions.Register, "form.register", ProfileSubmission{}))
}

// GetFormProfileEdit devolve o formulário de perfil preenchido com a conta
func (m *Manager) GetFormProfileEdit(ctx context.Context, account *entities.Account) *ResolvedForm {
	submission := ProfileSubmission{}
	if account != nil {
		submission.Displayname = account.Displayname
		submission.Email = account.Email.String()
	}
	return NewResolvedForm(m.ProfileForm(ctx, m.actions.Edit, "form.save", submission))
}

// ProfileForm monta o formulário de perfil com os valores informados.
// A senha nunca é devolvida ao navegador.
func (m *Manager) ProfileForm(ctx context.Context, action, submitKey string, submission ProfileSubmission) *Form {
	form := &Form{
		Name:   FormProfile,
		Action: action,
		Method: "post",
		Submit: m.t(ctx, submitKey),
		Fields: []*Field{
			m.field(ctx, "displayname", "text", true),
			m.field(ctx, "email", "email", true),
			m.field(ctx, "password", "password", false),
		},
	}
	form.Field("displayname").Value = submission.Displayname
	form.Field("email").Value = submission.Email
	return form
}

// Validate valida a submissão e grava as mensagens traduzidas nos campos.
// Retorna true quando não há erros.
func (m *Manager) Validate(ctx context.Context, form *Form, submission ProfileSubmission) bool {
	err := m.validate.Struct(submission)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		form.Errors = append(form.Errors, m.t(ctx, "validation.invalid"))
		return false
	}

	for _, fe := range validationErrors {
		field := form.Field(fe.Field())
		if field == nil || field.Error != "" {
			continue
		}
		field.Error = m.t(ctx, "validation."+fe.Tag(), map[string]interface{}{"Param": fe.Param()})
	}
	return false
}

// AddError associa um erro de domínio ao campo correspondente
func (m *Manager) AddError(ctx context.Context, form *Form, err error) {
	message := m.t(ctx, errorKey(err))

	switch {
	case errors.Is(err, domainerrors.ErrEmailAlreadyExists), errors.Is(err, domainerrors.ErrInvalidEmail):
		if field := form.Field("email"); field != nil {
			field.Error = message
			return
		}
	}
	form.Errors = append(form.Errors, message)
}

// RenderForms renderiza o template com os formulários resolvidos em "forms"
func (m *Manager) RenderForms(renderer Renderer, resolved *ResolvedForm, name string, data map[string]any, funcs template.FuncMap) (template.HTML, error) {
	if data == nil {
		data = map[string]any{}
	}
	data["forms"] = resolved

	var buf bytes.Buffer
	if err := renderer.Render(&buf, name, data, funcs); err != nil {
		return "", err
	}
	//nolint:gosec // saída de html/template já escapada
	return template.HTML(buf.String()), nil
}

func (m *Manager) field(ctx context.Context, name, fieldType string, required bool) *Field {
	return &Field{
		Name:     name,
		Label:    m.t(ctx, "form."+name),
		Type:     fieldType,
		Required: required,
	}
}

func (m *Manager) t(ctx context.Context, key string, params ...map[string]interface{}) string {
	if m.translator == nil {
		return key
	}
	return m.translator.TContext(ctx, key, params...)
}

func errorKey(err error) string {
	for _, known := range domainerrors.Known {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "error.unexpected"
}
