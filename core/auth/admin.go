// Package auth authenticates the back-office administrator.
package auth

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/submitly/backend/core"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HashPassword returns the bcrypt hash to set as ADMIN_PASSWORD_HASH.
func HashPassword(pwd string) (string, error) {
	if pwd == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}
	return string(hash), nil
}

// Admin checks credentials against the configured administrator.
type Admin struct {
	email     string
	hash      []byte
	validator *core.Validator
}

func NewAdmin(conf *core.Config, v *core.Validator) *Admin {
	return &Admin{
		email:     core.CleanString(conf.AdminEmail, true /* lower */),
		hash:      []byte(conf.AdminPasswordHash),
		validator: v,
	}
}

// Authenticate returns the admin identity, or ErrInvalidCredentials.
// Login is disabled while no password hash is configured.
func (a *Admin) Authenticate(creds Credentials) (core.Identity, error) {
	creds.Email = core.CleanString(creds.Email, true /* lower */)
	if err := a.validator.Struct(&creds); err != nil {
		return core.Identity{}, err
	}
	if len(a.hash) == 0 {
		return core.Identity{}, ErrInvalidCredentials
	}

	// the hash is always compared, whatever the email
	pwdErr := bcrypt.CompareHashAndPassword(a.hash, []byte(creds.Password))
	if pwdErr != nil || creds.Email != a.email {
		return core.Identity{}, ErrInvalidCredentials
	}
	return core.Identity{ID: "admin", Email: a.email}, nil
}
