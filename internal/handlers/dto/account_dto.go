package dto

import (
	"time"

	"github.com/rafabene/avantpro-members/internal/domain/entities"
	"github.com/rafabene/avantpro-members/internal/domain/events"
)

// AccountResponse representa uma conta nas respostas e eventos
type AccountResponse struct {
	Guid        string     `json:"guid"`
	Email       string     `json:"email"`
	Displayname string     `json:"displayname,omitempty"`
	Enabled     bool       `json:"enabled"`
	Roles       []string   `json:"roles"`
	LastSeen    *time.Time `json:"lastseen,omitempty"`
}

// ToAccountResponse converte uma entidade Account para AccountResponse
func ToAccountResponse(account *entities.Account) AccountResponse {
	roles := account.Roles
	if roles == nil {
		roles = []string{}
	}

	response := AccountResponse{
		Guid:        account.Guid,
		Email:       account.Email.String(),
		Displayname: account.Displayname,
		Enabled:     account.Enabled,
		Roles:       roles,
	}
	if !account.LastSeen.IsZero() {
		lastSeen := account.LastSeen
		response.LastSeen = &lastSeen
	}
	return response
}

// EventMessage é o payload enviado pelo stream de eventos da administração
type EventMessage struct {
	Event      string          `json:"event"`
	Account    AccountResponse `json:"account"`
	Role       string          `json:"role,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ToEventMessage converte um evento de conta
func ToEventMessage(event *events.StorageEvent) EventMessage {
	return EventMessage{
		Event:      event.Name,
		Account:    ToAccountResponse(event.Account),
		Role:       event.Role,
		OccurredAt: event.OccurredAt,
	}
}
