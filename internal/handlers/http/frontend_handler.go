package http

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rafabene/avantpro-members/internal/domain/ports"
	"github.com/rafabene/avantpro-members/internal/handlers/dto"
	"github.com/rafabene/avantpro-members/internal/infrastructure/session"
	"github.com/rafabene/avantpro-members/internal/services"
	"github.com/rafabene/avantpro-members/internal/views"
)

// FrontendHandler serve a página pública que usa as funções de membros
type FrontendHandler struct {
	renderer  *views.Renderer
	functions *views.Functions
	roles     *services.RolesService
	logger    ports.Logger
}

// NewFrontendHandler cria um novo FrontendHandler
func NewFrontendHandler(renderer *views.Renderer, functions *views.Functions, roles *services.RolesService, logger ports.Logger) *FrontendHandler {
	return &FrontendHandler{
		renderer:  renderer,
		functions: functions,
		roles:     roles,
		logger:    logger,
	}
}

// Members godoc
// @Summary      Página de membros
// @Description  Mostra login ou o perfil do membro da sessão (cookie members_session)
// @Tags         frontend
// @Produce      html
// @Success      200  {string}  string  "HTML"
// @Router       /members [get]
func (h *FrontendHandler) Members(c *gin.Context) {
	var buf bytes.Buffer
	err := h.renderer.Render(&buf, "frontend/members.html", gin.H{
		"Title":   dto.T(c, "admin.title"),
		"Flashes": []session.Flash{},
		"Roles":   h.roles.GetRoles(),
	}, h.functions.FuncMap(c.Request.Context()))
	if err != nil {
		h.logger.Error("failed to render members page", "error", err)
		dto.AbortWithProblem(c, dto.InternalProblem(c))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
