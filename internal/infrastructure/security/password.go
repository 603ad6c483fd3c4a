package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/rafabene/avantpro-members/internal/domain/ports"
)

const (
	BcryptCost        = 12
	MinPasswordLength = 6
	// bcrypt ignora bytes além de 72
	MaxPasswordLength = 72
)

// BcryptHasher implementa ports.PasswordHasher
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher cria um hasher; cost <= 0 usa BcryptCost
func NewBcryptHasher(cost int) ports.PasswordHasher {
	if cost <= 0 {
		cost = BcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return "", fmt.Errorf("password must have between %d and %d characters", MinPasswordLength, MaxPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
