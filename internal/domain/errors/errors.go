package errors

import "errors"

// Business errors
// Nota: Estes são códigos de erro (message IDs para i18n).
// As traduções devem estar em internal/infrastructure/i18n/locales/*.json
var (
	ErrAccountNotFound    = errors.New("error.account_not_found")
	ErrEmailAlreadyExists = errors.New("error.email_already_exists")
	ErrRoleNotFound       = errors.New("error.role_not_found")
	ErrRoleRequired       = errors.New("error.role_required")
	ErrNoMembers          = errors.New("error.no_members")
	ErrUnauthorized       = errors.New("error.unauthorized")
	ErrForbidden          = errors.New("error.forbidden")
)

// Domain errors
// Nota: Estes são códigos de erro (message IDs para i18n).
// As traduções devem estar em internal/infrastructure/i18n/locales/*.json
var (
	ErrInvalidEmail       = errors.New("error.invalid_email")
	ErrInvalidGuid        = errors.New("error.invalid_guid")
	ErrStorageUnavailable = errors.New("error.storage_unavailable")
)

// Known lista todos os erros que possuem tradução, na ordem em que devem
// ser verificados com errors.Is
var Known = []error{
	ErrAccountNotFound,
	ErrEmailAlreadyExists,
	ErrRoleNotFound,
	ErrRoleRequired,
	ErrNoMembers,
	ErrUnauthorized,
	ErrForbidden,
	ErrInvalidEmail,
	ErrInvalidGuid,
	ErrStorageUnavailable,
}

// ProblemType define tipos de problemas (URIs RFC 7807)
// Nota: O domínio base virá de configuração (API_BASE_URL)
//
//nolint:misspell
const (
	ProblemTypeValidation   = "/problems/validation-error"
	ProblemTypeNotFound     = "/problems/not-found"
	ProblemTypeConflict     = "/problems/conflict"
	ProblemTypeUnauthorized = "/problems/unauthorized"
	ProblemTypeForbidden    = "/problems/forbidden"
	ProblemTypeInternal     = "/problems/internal-error"
	ProblemTypeBadRequest   = "/problems/bad-request"
	ProblemTypeUnavailable  = "/problems/storage-unavailable"
)
