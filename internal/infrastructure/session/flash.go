package session

import "context"

// Níveis de flash
const (
	FlashError   = "error"
	FlashSuccess = "success"
	FlashInfo    = "info"
)

// Flash é uma mensagem exibida uma única vez na próxima página
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// FlashBag guarda mensagens por sujeito (id do usuário do backend)
type FlashBag interface {
	Add(ctx context.Context, subject string, flash Flash) error
	Pop(ctx context.Context, subject string) ([]Flash, error)
}
