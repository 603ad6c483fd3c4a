package valueobjects

import (
	"github.com/google/uuid"

	domainerrors "github.com/rafabene/avantpro-members/internal/domain/errors"
)

// NewGuid gera um novo GUID (UUID v4) para uma conta
func NewGuid() string {
	return uuid.NewString()
}

// ParseGuid valida o formato de um GUID e retorna sua forma canônica
func ParseGuid(guid string) (string, error) {
	id, err := uuid.Parse(guid)
	if err != nil {
		return "", domainerrors.ErrInvalidGuid
	}
	return id.String(), nil
}

// IsValidGuid verifica se a string é um GUID válido
func IsValidGuid(guid string) bool {
	_, err := ParseGuid(guid)
	return err == nil
}
