package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moogar0880/problems"

	domainerrors "github.com/rafabene/avantpro-members/internal/domain/errors"
)

// ProblemResponse segue RFC 7807 (Problem Details for HTTP APIs)
type ProblemResponse struct {
	*problems.Problem
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError representa um erro de validação de campo
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

// NewProblemI18n cria um problem com título e detalhe traduzidos
func NewProblemI18n(c *gin.Context, problemType, titleKey, detailKey string, status int, params ...map[string]interface{}) *ProblemResponse {
	// Pegar base URL da configuração
	baseURL := c.GetString("base_url")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	problem := problems.NewDetailedProblem(status, T(c, detailKey, params...))
	problem.Type = baseURL + problemType
	problem.Title = T(c, titleKey, params...)
	problem.Instance = c.Request.URL.Path

	return &ProblemResponse{Problem: problem}
}

// AbortWithProblem escreve o problem com o media type RFC 7807
func AbortWithProblem(c *gin.Context, problem *ProblemResponse) {
	c.Header("Content-Type", problems.ProblemMediaType)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// Helper functions para respostas de erro comuns com i18n

// ValidationProblem cria uma resposta de erro de validação
func ValidationProblem(c *gin.Context, validationErrors []ValidationError) *ProblemResponse {
	problem := NewProblemI18n(c, domainerrors.ProblemTypeValidation, "error.validation.title", "error.validation.detail", http.StatusBadRequest)
	problem.Errors = validationErrors
	return problem
}

// NotFoundProblem cria uma resposta de erro 404
func NotFoundProblem(c *gin.Context, resource string) *ProblemResponse {
	return NewProblemI18n(c, domainerrors.ProblemTypeNotFound, "error.not_found.title", "error.not_found.detail",
		http.StatusNotFound, map[string]interface{}{"Resource": resource})
}

// ForbiddenProblem cria uma resposta de erro 403
func ForbiddenProblem(c *gin.Context) *ProblemResponse {
	return NewProblemI18n(c, domainerrors.ProblemTypeForbidden, "error.forbidden.title", "error.forbidden.detail", http.StatusForbidden)
}

// InternalProblem cria uma resposta de erro 500
func InternalProblem(c *gin.Context) *ProblemResponse {
	return NewProblemI18n(c, domainerrors.ProblemTypeInternal, "error.internal.title", "error.internal.detail", http.StatusInternalServerError)
}

// ProblemFromError escolhe o problem adequado a um erro de domínio
func ProblemFromError(c *gin.Context, err error) *ProblemResponse {
	switch {
	case errors.Is(err, domainerrors.ErrAccountNotFound):
		return NewProblemI18n(c, domainerrors.ProblemTypeNotFound, "error.not_found.title", ErrorKey(err), http.StatusNotFound)
	case errors.Is(err, domainerrors.ErrEmailAlreadyExists):
		return NewProblemI18n(c, domainerrors.ProblemTypeConflict, "error.conflict.title", ErrorKey(err), http.StatusConflict)
	case errors.Is(err, domainerrors.ErrInvalidGuid), errors.Is(err, domainerrors.ErrInvalidEmail),
		errors.Is(err, domainerrors.ErrRoleRequired), errors.Is(err, domainerrors.ErrRoleNotFound),
		errors.Is(err, domainerrors.ErrNoMembers):
		return NewProblemI18n(c, domainerrors.ProblemTypeBadRequest, "error.validation.title", ErrorKey(err), http.StatusBadRequest)
	case errors.Is(err, domainerrors.ErrStorageUnavailable):
		return NewProblemI18n(c, domainerrors.ProblemTypeUnavailable, "error.unavailable.title", ErrorKey(err), http.StatusServiceUnavailable)
	case errors.Is(err, domainerrors.ErrForbidden):
		return ForbiddenProblem(c)
	}
	return InternalProblem(c)
}
