package entities

import "time"

// ProviderLocal é o provider de contas com senha local
const ProviderLocal = "local"

// Provider representa uma identidade (local ou OAuth externa) ligada a uma conta
type Provider struct {
	ID              uint
	Guid            string
	Provider        string
	ResourceOwnerID string
	LastUpdate      time.Time
}

// IsLocal indica se é o provider local
func (p *Provider) IsLocal() bool {
	return p.Provider == ProviderLocal
}
