package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/rafabene/avantpro-members/internal/domain/ports"
	"github.com/rafabene/avantpro-members/internal/infrastructure/session"
)

// MemberSession resolve o cookie de sessão do membro
func MemberSession(store session.Store, cookieName string, logger ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookieName)

		s, err := session.Resolve(c.Request.Context(), store, id)
		if err != nil {
			// Store indisponível: segue como visitante
			logger.Warn("failed to resolve member session", "error", err)
		}

		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), s))
		c.Next()
	}
}
