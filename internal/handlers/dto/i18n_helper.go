package dto

import (
	"github.com/gin-gonic/gin"

	"github.com/rafabene/avantpro-members/internal/handlers/middleware"
	"github.com/rafabene/avantpro-members/internal/infrastructure/i18n"
)

// T traduz key no idioma da requisição; sem o middleware de i18n devolve a chave.
// Uso: dto.T(c, "flash.account_created", map[string]interface{}{"Email": email})
func T(c *gin.Context, key string, params ...map[string]interface{}) string {
	value, _ := c.Get(middleware.I18nServiceContextKey)
	service, ok := value.(*i18n.Service)
	if !ok {
		return key
	}
	return service.T(GetLanguage(c), key, params...)
}

// GetLanguage retorna o idioma escolhido pelo middleware ou "en"
func GetLanguage(c *gin.Context) string {
	if lang := c.GetString(middleware.LanguageContextKey); lang != "" {
		return lang
	}
	return "en"
}

// ErrorMessage traduz um erro de domínio; erros desconhecidos viram error.unexpected
func ErrorMessage(c *gin.Context, err error) string {
	return T(c, ErrorKey(err))
}
