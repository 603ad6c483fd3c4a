package i18n

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"
)

// Locales contém as traduções embutidas no binário
//
//go:embed locales/*.json
var Locales embed.FS

// catalog são as mensagens de um idioma
type catalog map[string]string

// Service resolve mensagens por idioma. Mensagens com {{.Param}} são
// parseadas uma vez e reaproveitadas.
type Service struct {
	catalogs        map[string]catalog
	defaultLanguage string

	mu       sync.RWMutex
	compiled map[string]*template.Template // "lang\x00key"
}

// NewService carrega as traduções de localesDir; vazio usa as embutidas
func NewService(localesDir, defaultLang string) (*Service, error) {
	if localesDir != "" {
		return NewServiceFS(os.DirFS(localesDir), defaultLang)
	}

	embedded, err := fs.Sub(Locales, "locales")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded locales: %w", err)
	}
	return NewServiceFS(embedded, defaultLang)
}

// NewServiceFS carrega um arquivo <idioma>.json por idioma da raiz de fsys
func NewServiceFS(fsys fs.FS, defaultLang string) (*Service, error) {
	files, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to find locale files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}

	s := &Service{
		catalogs:        make(map[string]catalog, len(files)),
		defaultLanguage: defaultLang,
		compiled:        make(map[string]*template.Template),
	}
	for _, file := range files {
		messages, err := readCatalog(fsys, file)
		if err != nil {
			return nil, err
		}
		s.catalogs[strings.TrimSuffix(path.Base(file), ".json")] = messages
	}

	if _, ok := s.catalogs[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %s not found in locale files", defaultLang)
	}
	return s, nil
}

func readCatalog(fsys fs.FS, file string) (catalog, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale file %s: %w", file, err)
	}

	var messages catalog
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse locale file %s: %w", file, err)
	}
	return messages, nil
}

// T traduz key para lang. A busca segue lang, o idioma base (pt-BR -> pt)
// e o idioma padrão; sem tradução devolve a própria chave.
// params[0] alimenta a interpolação ({{.Email}}, {{.Guid}}...).
func (s *Service) T(lang, key string, params ...map[string]interface{}) string {
	found, message := s.lookup(lang, key)
	if found == "" {
		return key
	}
	if len(params) == 0 || !strings.Contains(message, "{{") {
		return message
	}

	tmpl, err := s.template(found, key, message)
	if err != nil {
		return message
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params[0]); err != nil {
		return message
	}
	return buf.String()
}

// lookup devolve o idioma onde a chave foi encontrada e a mensagem
func (s *Service) lookup(lang, key string) (string, string) {
	candidates := []string{lang}
	if base, _, ok := strings.Cut(lang, "-"); ok {
		candidates = append(candidates, base)
	}
	candidates = append(candidates, s.defaultLanguage)

	for _, candidate := range candidates {
		if message, ok := s.catalogs[candidate][key]; ok {
			return candidate, message
		}
	}
	return "", ""
}

func (s *Service) template(lang, key, message string) (*template.Template, error) {
	id := lang + "\x00" + key

	s.mu.RLock()
	tmpl, ok := s.compiled[id]
	s.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	tmpl, err := template.New(key).Parse(message)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.compiled[id] = tmpl
	s.mu.Unlock()
	return tmpl, nil
}

// GetDefaultLanguage retorna o idioma padrão configurado
func (s *Service) GetDefaultLanguage() string {
	return s.defaultLanguage
}

// GetSupportedLanguages retorna os idiomas carregados em ordem alfabética
func (s *Service) GetSupportedLanguages() []string {
	langs := make([]string, 0, len(s.catalogs))
	for lang := range s.catalogs {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func (s *Service) IsLanguageSupported(lang string) bool {
	_, ok := s.catalogs[lang]
	return ok
}

// Keys retorna as chaves de um idioma ordenadas
func (s *Service) Keys(lang string) []string {
	keys := make([]string, 0, len(s.catalogs[lang]))
	for key := range s.catalogs[lang] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

type languageKey struct{}

// WithLanguage grava o idioma da requisição no context.Context
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageKey{}, lang)
}

// LanguageFromContext retorna o idioma gravado por WithLanguage ou fallback
func LanguageFromContext(ctx context.Context, fallback string) string {
	if lang, ok := ctx.Value(languageKey{}).(string); ok && lang != "" {
		return lang
	}
	return fallback
}

// TContext traduz usando o idioma do contexto
func (s *Service) TContext(ctx context.Context, key string, params ...map[string]interface{}) string {
	return s.T(LanguageFromContext(ctx, s.defaultLanguage), key, params...)
}
