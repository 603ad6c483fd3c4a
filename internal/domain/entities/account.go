package entities

import (
	"errors"
	"time"

	"github.com/rafabene/avantpro-members/internal/domain/valueobjects"
)

var (
	ErrInvalidAccountData = errors.New("invalid account data")
)

// Account representa a conta de um membro
type Account struct {
	Guid        string
	Email       valueobjects.Email
	Displayname string
	Enabled     bool
	Roles       []string
	LastSeen    time.Time
	LastIP      string
}

// HasGuid indica se a conta já foi persistida
func (a *Account) HasGuid() bool {
	return a.Guid != ""
}

// HasRole verifica se a conta possui o role
func (a *Account) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AddRole adiciona o role no fim da lista, retornando false se já existia
func (a *Account) AddRole(role string) bool {
	if a.HasRole(role) {
		return false
	}
	a.Roles = append(a.Roles, role)
	return true
}

// RemoveRole remove o role preservando a ordem dos demais
func (a *Account) RemoveRole(role string) bool {
	kept := make([]string, 0, len(a.Roles))
	removed := false
	for _, r := range a.Roles {
		if r == role {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	a.Roles = kept
	return removed
}

// Enable habilita a conta
func (a *Account) Enable() {
	a.Enabled = true
}

// Disable desabilita a conta
func (a *Account) Disable() {
	a.Enabled = false
}

// Validate valida regras de negócio da entidade Account
func (a *Account) Validate() error {
	if a.Email.IsZero() {
		return errors.New("email is required")
	}

	if len(a.Displayname) > 32 {
		return errors.New("displayname must be at most 32 characters")
	}

	if len(a.LastIP) > 32 {
		return ErrInvalidAccountData
	}

	return nil
}
