package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates
var templatesFS embed.FS

// Renderer guarda os templates embutidos já parseados.
// Cada renderização trabalha sobre um clone, com as funções da requisição.
type Renderer struct {
	base *template.Template
}

// NewRenderer parseia os templates embutidos
func NewRenderer() (*Renderer, error) {
	base, err := template.New("members").
		Funcs(placeholderFuncs()).
		ParseFS(templatesFS, "templates/*/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{base: base}, nil
}

// Has indica se o template existe
func (r *Renderer) Has(name string) bool {
	return r.base.Lookup(name) != nil
}

// Render executa o template name com data. funcs substitui as funções
// registradas no parse (bindings da sessão atual, tradução).
func (r *Renderer) Render(w io.Writer, name string, data any, funcs template.FuncMap) error {
	if !r.Has(name) {
		return fmt.Errorf("template %q not found", name)
	}

	tpl, err := r.base.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone templates: %w", err)
	}
	if funcs != nil {
		tpl = tpl.Funcs(funcs)
	}

	if err := tpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// placeholderFuncs registra os nomes usados pelos templates; os valores
// reais chegam em Render
func placeholderFuncs() template.FuncMap {
	funcs := template.FuncMap{
		"t":    func(key string, params ...map[string]interface{}) string { return key },
		"lang": func() string { return "" },
	}
	for _, name := range BindingNames {
		funcs[name] = func(args ...string) any { return nil }
	}
	return funcs
}
