package security

import (
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type BcryptConfig struct {
	Cost int // 0 - bcrypt.DefaultCost
}

func HashPassword(p domain.Password, cfg BcryptConfig) (string, error) {
	cost := bcrypt.DefaultCost
	if cfg.Cost > 0 {
		cost = cfg.Cost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Plain()), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// ComparePassword: false без ошибки, если пароль просто не совпал
func ComparePassword(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
