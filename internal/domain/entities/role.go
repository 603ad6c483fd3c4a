package entities

import "strings"

// Role representa um papel que pode ser atribuído a membros
type Role struct {
	Name        string
	DisplayName string
}

// Roles é a lista de roles configurados
type Roles []Role

// ParseRoles converte "participant:Participant,editor:Editor" em uma lista de roles.
// Quando o nome de exibição é omitido, o próprio nome é usado.
func ParseRoles(raw string) Roles {
	roles := Roles{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		name, display, found := strings.Cut(item, ":")
		name = strings.TrimSpace(name)
		if !found || strings.TrimSpace(display) == "" {
			display = name
		}
		roles = append(roles, Role{Name: name, DisplayName: strings.TrimSpace(display)})
	}
	return roles
}

// Find busca um role pelo nome
func (r Roles) Find(name string) (Role, bool) {
	for _, role := range r {
		if role.Name == name {
			return role, true
		}
	}
	return Role{}, false
}

// Names retorna os nomes dos roles
func (r Roles) Names() []string {
	names := make([]string, len(r))
	for i, role := range r {
		names[i] = role.Name
	}
	return names
}
