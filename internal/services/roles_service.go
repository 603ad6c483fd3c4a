package services

import (
	"github.com/rafabene/avantpro-members/internal/domain/entities"
)

// RolesService expõe os roles de membros configurados
type RolesService struct {
	roles entities.Roles
}

// NewRolesService cria um novo RolesService
func NewRolesService(roles entities.Roles) *RolesService {
	if roles == nil {
		roles = entities.Roles{}
	}
	return &RolesService{roles: roles}
}

// GetRoles retorna os roles na ordem configurada
func (s *RolesService) GetRoles() entities.Roles {
	return s.roles
}

func (s *RolesService) HasRole(name string) bool {
	_, ok := s.roles.Find(name)
	return ok
}
