package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rafabene/avantpro-members/internal/domain/ports"
	"github.com/rafabene/avantpro-members/internal/infrastructure/security"
)

// AdminClaimsContextKey guarda as claims do administrador autenticado
const AdminClaimsContextKey = "admin_claims"

// AdminAuth libera a área administrativa para quem possui algum dos roles de administração
type AdminAuth struct {
	verifier     *security.TokenVerifier
	adminRoles   []string
	cookieName   string
	dashboardURL string
	logger       ports.Logger
}

// NewAdminAuth cria o middleware de autorização
func NewAdminAuth(verifier *security.TokenVerifier, adminRoles []string, cookieName, dashboardURL string, logger ports.Logger) *AdminAuth {
	return &AdminAuth{
		verifier:     verifier,
		adminRoles:   adminRoles,
		cookieName:   cookieName,
		dashboardURL: dashboardURL,
		logger:       logger,
	}
}

// RequireAdmin redireciona (303) para o dashboard quando o token está ausente,
// é inválido ou não possui nenhum dos roles de administração
func (m *AdminAuth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			m.deny(c, "missing admin token")
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.deny(c, "invalid admin token", "error", err)
			return
		}

		if !claims.HasAnyRole(m.adminRoles) {
			m.deny(c, "admin role required", "subject", claims.Subject)
			return
		}

		c.Set(AdminClaimsContextKey, claims)
		c.Next()
	}
}

func (m *AdminAuth) extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, found := strings.CutPrefix(header, "Bearer "); found {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := c.Cookie(m.cookieName); err == nil {
		return cookie
	}

	return ""
}

func (m *AdminAuth) deny(c *gin.Context, reason string, args ...any) {
	m.logger.Debug(reason, append([]any{"path", c.Request.URL.Path}, args...)...)
	c.Redirect(http.StatusSeeOther, m.dashboardURL)
	c.Abort()
}

// GetAdminClaims retorna as claims gravadas por RequireAdmin
func GetAdminClaims(c *gin.Context) *security.AdminClaims {
	value, exists := c.Get(AdminClaimsContextKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*security.AdminClaims)
	return claims
}
