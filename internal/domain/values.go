package domain

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cwrk-planet/chat-service/internal/errs"

	"github.com/go-playground/validator/v10"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

const (
	MinNameLength = 3
	MaxNameLength = 64
)

var validate = validator.New()

// Name - имя пользователя или канала
type Name string

func NewName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < MinNameLength || n > MaxNameLength {
		return "", errs.ErrInvalidName
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", errs.ErrInvalidName
		}
	}

	return Name(s), nil
}

func (n Name) String() string { return string(n) }

type Email string

func NewEmail(s string) (Email, error) {
	s = normalizeEmail(s)
	if s == "" || validate.Var(s, "required,email") != nil {
		return "", errs.ErrInvalidEmail
	}

	return Email(s), nil
}

func (e Email) String() string { return string(e) }

// PasswordPolicy задаёт ограничения на пароль.
// MaxLength не больше 72: дальше bcrypt не считает.
type PasswordPolicy struct {
	MinLength      int
	MaxLength      int
	MinEntropyBits float64
}

var DefaultPasswordPolicy = PasswordPolicy{
	MinLength:      8,
	MaxLength:      72,
	MinEntropyBits: 50,
}

// Password живёт только между запросом и хешированием
type Password struct {
	plain string
}

func NewPassword(s string, p PasswordPolicy) (Password, error) {
	if p.MinLength <= 0 {
		p.MinLength = DefaultPasswordPolicy.MinLength
	}
	if p.MaxLength <= 0 || p.MaxLength > DefaultPasswordPolicy.MaxLength {
		p.MaxLength = DefaultPasswordPolicy.MaxLength
	}

	if utf8.RuneCountInString(s) < p.MinLength {
		return Password{}, errs.ErrPasswordTooShort
	}
	if len(s) > p.MaxLength {
		return Password{}, errs.ErrPasswordTooLong
	}
	if p.MinEntropyBits > 0 {
		if err := passwordvalidator.Validate(s, p.MinEntropyBits); err != nil {
			return Password{}, errs.ErrPasswordTooWeak
		}
	}

	return Password{plain: s}, nil
}

func (p Password) Plain() string { return p.plain }

func (p Password) String() string { return "***" }

func (p Password) LogValue() slog.Value { return slog.StringValue("***") }

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
