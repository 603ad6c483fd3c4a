package http

import (
	"bytes"
	"context"
	errs "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	"github.com/rafabene/avantpro-members/internal/domain/errors"
	"github.com/rafabene/avantpro-members/internal/domain/ports"
	"github.com/rafabene/avantpro-members/internal/domain/repositories"
	"github.com/rafabene/avantpro-members/internal/forms"
	"github.com/rafabene/avantpro-members/internal/handlers/dto"
	"github.com/rafabene/avantpro-members/internal/handlers/middleware"
	"github.com/rafabene/avantpro-members/internal/infrastructure/config"
	"github.com/rafabene/avantpro-members/internal/infrastructure/metrics"
	"github.com/rafabene/avantpro-members/internal/infrastructure/session"
	"github.com/rafabene/avantpro-members/internal/services"
	"github.com/rafabene/avantpro-members/internal/views"
)

// BackendHandler lida com a administração de membros
type BackendHandler struct {
	admin     *services.AdminService
	records   *services.RecordsService
	roles     *services.RolesService
	forms     *forms.Manager
	renderer  *views.Renderer
	functions *views.Functions
	flashes   session.FlashBag
	metrics   *metrics.Metrics
	cfg       config.MembersConfig
	logger    ports.Logger
}

// NewBackendHandler cria um novo BackendHandler
func NewBackendHandler(
	admin *services.AdminService,
	records *services.RecordsService,
	roles *services.RolesService,
	formsManager *forms.Manager,
	renderer *views.Renderer,
	functions *views.Functions,
	flashes session.FlashBag,
	m *metrics.Metrics,
	cfg config.MembersConfig,
	logger ports.Logger,
) *BackendHandler {
	return &BackendHandler{
		admin:     admin,
		records:   records,
		roles:     roles,
		forms:     formsManager,
		renderer:  renderer,
		functions: functions,
		flashes:   flashes,
		metrics:   m,
		cfg:       cfg,
		logger:    logger,
	}
}

// RegisterRoutes registra as rotas no grupo já protegido por AdminAuth
func (h *BackendHandler) RegisterRoutes(group *gin.RouterGroup, hub *EventHub) {
	group.GET("", h.ListMembers)
	group.GET("/add", h.AddForm)
	group.POST("/add", h.AddMember)
	group.GET("/edit/:guid", h.EditForm)
	group.POST("/edit/:guid", h.EditMember)
	group.POST("/action/:job", h.RunAction)
	if hub != nil {
		group.GET("/events", hub.Stream)
	}
}

// ListMembers godoc
// @Summary      Lista os membros
// @Description  Página HTML com contas, roles e mensagens pendentes
// @Tags         admin
// @Produce      html
// @Param        role    query  string  false  "Filtra pelo role"
// @Param        status  query  string  false  "enabled ou disabled"
// @Param        page    query  int     false  "Página (20 por página)"
// @Success      200  {string}  string  "HTML"
// @Failure      303  "redirect para o dashboard sem role de administração"
// @Router       /admin/members [get]
func (h *BackendHandler) ListMembers(c *gin.Context) {
	ctx := c.Request.Context()
	filters := h.listFilters(c)
	roles := h.roles.GetRoles()

	accounts, err := h.records.ListAccounts(ctx, filters)
	if err != nil {
		if !errs.Is(err, errors.ErrStorageUnavailable) {
			h.logger.Error("failed to list accounts", "error", err)
			dto.AbortWithProblem(c, dto.ProblemFromError(c, err))
			return
		}

		// Tabelas ainda não criadas: página vazia, sem ações, com aviso
		h.logger.Warn("members storage unavailable", "error", err)
		accounts = []*entities.Account{}
		roles = entities.Roles{}
		h.flash(c, session.FlashError, dto.T(c, "flash.storage_unavailable", map[string]interface{}{"URL": h.cfg.DBCheckURL}))
	}

	h.render(c, http.StatusOK, "admin/members.html", gin.H{
		"Title":    dto.T(c, "admin.title"),
		"Accounts": accounts,
		"Roles":    roles,
		"Filter":   filters,
	})
}

// listFilters lê os filtros da query; role desconhecido é ignorado
func (h *BackendHandler) listFilters(c *gin.Context) repositories.AccountFilters {
	var filters repositories.AccountFilters

	if role := c.Query("role"); role != "" && h.roles.HasRole(role) {
		filters.Role = role
	}

	switch c.Query("status") {
	case "enabled":
		enabled := true
		filters.Enabled = &enabled
	case "disabled":
		enabled := false
		filters.Enabled = &enabled
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		filters.Page = page
	}

	return filters
}

// AddForm exibe o formulário de novo membro
func (h *BackendHandler) AddForm(c *gin.Context) {
	form := h.forms.ProfileForm(c.Request.Context(), h.cfg.AdminPath+"/add", "form.save", forms.ProfileSubmission{})
	h.renderForm(c, "admin/profile_add.html", "admin.add", form, nil)
}

// AddMember godoc
// @Summary      Cria um membro
// @Description  Cria conta habilitada sem roles, credenciais e provider local
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        displayname  formData  string  true   "Nome de exibição (2..32)"
// @Param        email        formData  string  true   "Email"
// @Param        password     formData  string  false  "Senha (6..72)"
// @Success      302  "redirect para a listagem"
// @Success      200  {string}  string  "formulário com erros"
// @Router       /admin/members/add [post]
func (h *BackendHandler) AddMember(c *gin.Context) {
	ctx := c.Request.Context()

	var submission forms.ProfileSubmission
	_ = c.ShouldBind(&submission)

	form := h.forms.ProfileForm(ctx, h.cfg.AdminPath+"/add", "form.save", submission)
	if !h.forms.Validate(ctx, form, submission) {
		h.renderForm(c, "admin/profile_add.html", "admin.add", form, nil)
		return
	}

	account, err := h.admin.CreateAccount(ctx, services.ProfileInput{
		Displayname: submission.Displayname,
		Email:       submission.Email,
		Password:    submission.Password,
	})
	if err != nil {
		h.logger.Warn("failed to create account", "error", err)
		h.forms.AddError(ctx, form, err)
		h.renderForm(c, "admin/profile_add.html", "admin.add", form, nil)
		return
	}

	h.flash(c, session.FlashSuccess, dto.T(c, "flash.account_created", map[string]interface{}{"Email": account.Email.String()}))
	c.Redirect(http.StatusFound, h.cfg.AdminPath)
}

// EditForm exibe o formulário de edição
func (h *BackendHandler) EditForm(c *gin.Context) {
	account, ok := h.loadForEdit(c)
	if !ok {
		return
	}

	form := h.forms.ProfileForm(c.Request.Context(), h.cfg.AdminPath+"/edit/"+account.Guid, "form.save", forms.ProfileSubmission{
		Displayname: account.Displayname,
		Email:       account.Email.String(),
	})
	h.renderForm(c, "admin/profile_edit.html", "admin.edit", form, h.providers(c, account.Guid))
}

// EditMember godoc
// @Summary      Altera um membro
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        guid         path      string  true   "GUID da conta"
// @Param        displayname  formData  string  true   "Nome de exibição (2..32)"
// @Param        email        formData  string  true   "Email"
// @Param        password     formData  string  false  "Nova senha (6..72)"
// @Success      302  "redirect para a listagem"
// @Success      200  {string}  string  "formulário com erros"
// @Router       /admin/members/edit/{guid} [post]
func (h *BackendHandler) EditMember(c *gin.Context) {
	ctx := c.Request.Context()

	account, ok := h.loadForEdit(c)
	if !ok {
		return
	}

	var submission forms.ProfileSubmission
	_ = c.ShouldBind(&submission)

	form := h.forms.ProfileForm(ctx, h.cfg.AdminPath+"/edit/"+account.Guid, "form.save", submission)
	if !h.forms.Validate(ctx, form, submission) {
		h.renderForm(c, "admin/profile_edit.html", "admin.edit", form, h.providers(c, account.Guid))
		return
	}

	updated, err := h.admin.UpdateProfile(ctx, account.Guid, services.ProfileInput{
		Displayname: submission.Displayname,
		Email:       submission.Email,
		Password:    submission.Password,
	})
	if err != nil {
		if errs.Is(err, errors.ErrAccountNotFound) {
			h.redirectWithError(c, "flash.account_not_found", account.Guid)
			return
		}
		h.logger.Warn("failed to update account", "guid", account.Guid, "error", err)
		h.forms.AddError(ctx, form, err)
		h.renderForm(c, "admin/profile_edit.html", "admin.edit", form, h.providers(c, account.Guid))
		return
	}

	h.flash(c, session.FlashSuccess, dto.T(c, "flash.account_updated", map[string]interface{}{"Email": updated.Email.String()}))
	c.Redirect(http.StatusFound, h.cfg.AdminPath)
}

// RunAction godoc
// @Summary      Executa uma ação em lote
// @Description  Aplica a ação a todos os membros numa única transação; a primeira falha desfaz o lote
// @Tags         admin
// @Accept       x-www-form-urlencoded,json
// @Produce      json
// @Param        job      path      string             true   "userDelete, userEnable, userDisable, roleAdd ou roleDel"
// @Param        request  body      dto.ActionRequest  true   "Membros e role"
// @Success      200  {object}  dto.JobResult
// @Failure      500  {object}  dto.JobResult
// @Failure      400  {object}  dto.ProblemResponse
// @Failure      404  {object}  dto.ProblemResponse
// @Router       /admin/members/action/{job} [post]
func (h *BackendHandler) RunAction(c *gin.Context) {
	job := c.Param("job")

	var req dto.ActionRequest
	if err := c.ShouldBind(&req); err != nil && c.ContentType() == gin.MIMEJSON {
		dto.AbortWithProblem(c, dto.ValidationProblem(c, []dto.ValidationError{
			{Field: "body", Message: dto.T(c, "validation.invalid"), Tag: "json"},
		}))
		return
	}
	if len(req.Members) == 0 {
		req.Members = c.PostFormArray("members")
	}

	action, err := h.resolveJob(job, req.Role)
	if errs.Is(err, errUnknownJob) {
		dto.AbortWithProblem(c, dto.NotFoundProblem(c, job))
		return
	}
	if err == nil {
		err = h.admin.RunBatch(c.Request.Context(), req.Members, action)
	}

	h.metrics.ObserveJob(job, err == nil)
	if err != nil {
		h.logger.Warn("admin job failed", "job", job, "members", len(req.Members), "error", err)
		c.JSON(http.StatusInternalServerError, dto.NewJobFailure(job, dto.ErrorMessage(c, err)))
		return
	}

	h.logger.Info("admin job executed", "job", job, "members", len(req.Members))
	c.JSON(http.StatusOK, dto.NewJobSuccess(job))
}

var errUnknownJob = errs.New("unknown job")

// resolveJob valida o role antes de qualquer acesso ao banco
func (h *BackendHandler) resolveJob(job, role string) (services.AccountAction, error) {
	switch job {
	case dto.JobUserDelete:
		return h.admin.DeleteAccount, nil
	case dto.JobUserEnable:
		return h.admin.EnableAccount, nil
	case dto.JobUserDisable:
		return h.admin.DisableAccount, nil
	case dto.JobRoleAdd, dto.JobRoleDel:
		if err := h.admin.ValidateRole(role); err != nil {
			return nil, err
		}
		if job == dto.JobRoleAdd {
			return func(ctx context.Context, guid string) error { return h.admin.AddAccountRole(ctx, guid, role) }, nil
		}
		return func(ctx context.Context, guid string) error { return h.admin.DeleteAccountRole(ctx, guid, role) }, nil
	}
	return nil, errUnknownJob
}

// loadForEdit carrega a conta da rota; GUID inválido ou inexistente volta para a listagem
func (h *BackendHandler) loadForEdit(c *gin.Context) (*entities.Account, bool) {
	guid := c.Param("guid")

	account, err := h.admin.GetAccount(c.Request.Context(), guid)
	switch {
	case err == nil:
		return account, true
	case errs.Is(err, errors.ErrInvalidGuid):
		h.redirectWithError(c, "flash.invalid_guid", guid)
	case errs.Is(err, errors.ErrAccountNotFound):
		h.redirectWithError(c, "flash.account_not_found", guid)
	case errs.Is(err, errors.ErrStorageUnavailable):
		h.flash(c, session.FlashError, dto.T(c, "flash.storage_unavailable", map[string]interface{}{"URL": h.cfg.DBCheckURL}))
		c.Redirect(http.StatusFound, h.cfg.AdminPath)
	default:
		h.logger.Error("failed to load account", "guid", guid, "error", err)
		dto.AbortWithProblem(c, dto.ProblemFromError(c, err))
	}
	return nil, false
}

func (h *BackendHandler) redirectWithError(c *gin.Context, key, guid string) {
	h.flash(c, session.FlashError, dto.T(c, key, map[string]interface{}{"Guid": guid}))
	c.Redirect(http.StatusFound, h.cfg.AdminPath)
}

func (h *BackendHandler) providers(c *gin.Context, guid string) []*entities.Provider {
	providers, err := h.records.GetProvisionsByGuid(c.Request.Context(), guid)
	if err != nil {
		h.logger.Warn("failed to load providers", "guid", guid, "error", err)
		return []*entities.Provider{}
	}
	return providers
}

func (h *BackendHandler) renderForm(c *gin.Context, name, titleKey string, form *forms.Form, providers []*entities.Provider) {
	h.render(c, http.StatusOK, name, gin.H{
		"Title":     dto.T(c, titleKey),
		"Form":      form,
		"Providers": providers,
	})
}

// render completa os dados comuns (flashes, base path) e escreve o HTML
func (h *BackendHandler) render(c *gin.Context, status int, name string, data gin.H) {
	data["BasePath"] = h.cfg.AdminPath
	data["Flashes"] = h.popFlashes(c)

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, data, h.functions.FuncMap(c.Request.Context())); err != nil {
		h.logger.Error("failed to render admin page", "template", name, "error", err)
		dto.AbortWithProblem(c, dto.InternalProblem(c))
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// flashSubject identifica o administrador dono das mensagens
func flashSubject(c *gin.Context) string {
	if claims := middleware.GetAdminClaims(c); claims != nil && claims.Subject != "" {
		return claims.Subject
	}
	return "anonymous"
}

func (h *BackendHandler) flash(c *gin.Context, level, message string) {
	if err := h.flashes.Add(c.Request.Context(), flashSubject(c), session.Flash{Level: level, Message: message}); err != nil {
		h.logger.Warn("failed to store flash", "error", err)
	}
}

func (h *BackendHandler) popFlashes(c *gin.Context) []session.Flash {
	flashes, err := h.flashes.Pop(c.Request.Context(), flashSubject(c))
	if err != nil {
		h.logger.Warn("failed to read flashes", "error", err)
		return []session.Flash{}
	}
	return flashes
}
