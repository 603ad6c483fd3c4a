package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rafabene/avantpro-members/internal/infrastructure/i18n"
)

const (
	// LanguageContextKey guarda o idioma da requisição no contexto do Gin
	LanguageContextKey = "language"
	// I18nServiceContextKey guarda o *i18n.Service no contexto do Gin
	I18nServiceContextKey = "i18n_service"
	// LanguageCookie guarda a escolha explícita do visitante
	LanguageCookie = "lang"

	languageCookieMaxAge = 365 * 24 * 3600
)

// I18nMiddleware escolhe o idioma de cada requisição
type I18nMiddleware struct {
	i18nService *i18n.Service
}

func NewI18nMiddleware(i18nService *i18n.Service) *I18nMiddleware {
	return &I18nMiddleware{i18nService: i18nService}
}

// DetectLanguage grava o idioma no contexto do Gin e no context.Context
// da requisição, usado por templates e formulários
func (m *I18nMiddleware) DetectLanguage() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := m.resolve(c)

		c.Set(LanguageContextKey, lang)
		c.Set(I18nServiceContextKey, m.i18nService)
		c.Request = c.Request.WithContext(i18n.WithLanguage(c.Request.Context(), lang))

		c.Next()
	}
}

// resolve segue ?lang= (gravado no cookie), cookie, Accept-Language e o padrão
func (m *I18nMiddleware) resolve(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" && m.i18nService.IsLanguageSupported(lang) {
		c.SetCookie(LanguageCookie, lang, languageCookieMaxAge, "/", "", false, true)
		return lang
	}

	if lang, err := c.Cookie(LanguageCookie); err == nil && m.i18nService.IsLanguageSupported(lang) {
		return lang
	}

	if lang := m.parseAcceptLanguage(c.GetHeader("Accept-Language")); lang != "" {
		return lang
	}

	return m.i18nService.GetDefaultLanguage()
}

// parseAcceptLanguage devolve o primeiro idioma suportado, na ordem do header.
// Os pesos q= são ignorados; "en-US" aceita "en" quando só a base existe.
func (m *I18nMiddleware) parseAcceptLanguage(header string) string {
	for _, entry := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(entry, ";")
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}

		if m.i18nService.IsLanguageSupported(tag) {
			return tag
		}
		if base, _, ok := strings.Cut(tag, "-"); ok && m.i18nService.IsLanguageSupported(base) {
			return base
		}
	}
	return ""
}
