package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Authorisation é o estado de login de um membro
type Authorisation struct {
	Guid         string    `json:"guid"`
	Roles        []string  `json:"roles"`
	Transitional bool      `json:"transitional"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsExpired indica se a autorização expirou
func (a *Authorisation) IsExpired() bool {
	return !a.ExpiresAt.IsZero() && time.Now().After(a.ExpiresAt)
}

// Store persiste autorizações por id de sessão
type Store interface {
	Get(ctx context.Context, id string) (*Authorisation, error)
	Save(ctx context.Context, id string, auth *Authorisation) error
	Delete(ctx context.Context, id string) error
}

// Session é a visão da sessão do membro na requisição atual
type Session struct {
	id   string
	auth *Authorisation
}

// New cria uma sessão; auth nil representa visitante anônimo
func New(id string, auth *Authorisation) *Session {
	return &Session{id: id, auth: auth}
}

// Anonymous retorna uma sessão sem autorização
func Anonymous() *Session {
	return &Session{}
}

// Resolve carrega a sessão do store; falhas resultam em sessão anônima
func Resolve(ctx context.Context, store Store, id string) (*Session, error) {
	if id == "" {
		return Anonymous(), nil
	}

	auth, err := store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Anonymous(), nil
	}
	if err != nil {
		return Anonymous(), err
	}

	if auth.IsExpired() {
		return Anonymous(), nil
	}

	return New(id, auth), nil
}

// ID retorna o id da sessão
func (s *Session) ID() string {
	return s.id
}

// HasAuthorisation indica se há um membro autenticado
func (s *Session) HasAuthorisation() bool {
	return s.auth != nil && s.auth.Guid != "" && !s.auth.Transitional
}

// GetAuthorisation retorna a autorização ou nil
func (s *Session) GetAuthorisation() *Authorisation {
	return s.auth
}

// HasRole verifica se o membro autenticado possui o role
func (s *Session) HasRole(role string) bool {
	if !s.HasAuthorisation() {
		return false
	}
	for _, r := range s.auth.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsTransitional indica um login externo ainda não associado a uma conta
func (s *Session) IsTransitional() bool {
	return s.auth != nil && s.auth.Transitional
}

type sessionKey struct{}

// WithSession grava a sessão no contexto da requisição
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext retorna a sessão do contexto ou uma sessão anônima
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey{}).(*Session); ok && s != nil {
		return s
	}
	return Anonymous()
}
