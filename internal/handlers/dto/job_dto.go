package dto

import (
	"errors"

	domainerrors "github.com/rafabene/avantpro-members/internal/domain/errors"
)

// Nomes das ações em lote da administração
const (
	JobUserDelete  = "userDelete"
	JobUserEnable  = "userEnable"
	JobUserDisable = "userDisable"
	JobRoleAdd     = "roleAdd"
	JobRoleDel     = "roleDel"
)

// ActionRequest é o corpo de POST /action/{job}, por formulário ou JSON
type ActionRequest struct {
	Members []string `form:"members[]" json:"members"`
	Role    string   `form:"role" json:"role"`
}

// JobResult é a resposta das ações em lote
type JobResult struct {
	Job    string `json:"job" example:"userDelete"`
	Result bool   `json:"result" example:"true"`
	Data   string `json:"data" example:""`
}

// NewJobSuccess cria o resultado de sucesso
func NewJobSuccess(job string) JobResult {
	return JobResult{Job: job, Result: true, Data: ""}
}

// NewJobFailure cria o resultado de falha com a mensagem traduzida
func NewJobFailure(job, message string) JobResult {
	return JobResult{Job: job, Result: false, Data: message}
}

// ErrorKey retorna o message id de um erro de domínio ou error.unexpected
func ErrorKey(err error) string {
	for _, known := range domainerrors.Known {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "error.unexpected"
}
