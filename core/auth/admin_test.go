package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/submitly/backend/core"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestAdmin_Authenticate(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	admin := NewAdmin(&core.Config{AdminEmail: "Admin@Submitly.com", AdminPasswordHash: hash}, core.NewValidator())

	tests := []struct {
		name       string
		creds      Credentials
		wantErr    error
		wantFields bool
	}{
		{name: "valid", creds: Credentials{Email: " admin@submitly.com", Password: "s3cret-pass"}},
		{name: "wrong password", creds: Credentials{Email: "admin@submitly.com", Password: "nope"}, wantErr: ErrInvalidCredentials},
		{name: "wrong email", creds: Credentials{Email: "root@submitly.com", Password: "s3cret-pass"}, wantErr: ErrInvalidCredentials},
		{name: "missing fields", creds: Credentials{}, wantFields: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := admin.Authenticate(tt.creds)
			switch {
			case tt.wantFields:
				vErr, ok := err.(*core.ValidationError)
				if assert.True(t, ok, "want *core.ValidationError, got %v", err) {
					assert.True(t, vErr.HasField("email"))
					assert.True(t, vErr.HasField("password"))
				}
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, "admin@submitly.com", id.Email)
			}
		})
	}

	disabled := NewAdmin(&core.Config{AdminEmail: "admin@submitly.com"}, core.NewValidator())
	_, err = disabled.Authenticate(Credentials{Email: "admin@submitly.com", Password: "x"})
	assert.Equal(t, ErrInvalidCredentials, err)
}
