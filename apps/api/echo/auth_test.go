package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/submitly/backend/core"
)

func parseClaims(t *testing.T, env *testEnv, token string) *Claims {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, env.auth.keyFunc)
	require.NoError(t, err)
	return claims
}

func TestAuthApi_Login(t *testing.T) {
	env := newTestEnv(t)
	authFailed := marshalObj(t, httpErr{Error: "authentication failed"})

	runHTTPTests(t, env, []httpTest{
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/auth/admin",
			body:     []byte(`{"email": "admin@submitly.com", "password": "nope"}`),
			wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "wrong email", method: http.MethodPost, path: "/v1/auth/admin",
			body:     marshalObj(t, map[string]string{"email": "ada@example.com", "password": adminPassword}),
			wantCode: http.StatusBadRequest, wantData: authFailed,
		},
		{
			name: "invalid input", method: http.MethodPost, path: "/v1/auth/admin",
			body:     []byte(`{"email": "admin"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"email":    "email must be a valid email address",
				"password": "this field is required",
			}),
		},
	})

	t.Run("success", func(t *testing.T) {
		body := marshalObj(t, map[string]string{"email": " Admin@Submitly.com", "password": adminPassword})
		rec := env.do(newRequest(http.MethodPost, "/v1/auth/admin", body))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp LoginResponse
		decode(t, rec, &resp)
		claims := parseClaims(t, env, resp.Token)
		assert.True(t, claims.IsAdmin)
		assert.Equal(t, adminEmail, claims.Email)
		assert.Equal(t, "Submitly", claims.Issuer)

		rec = env.do(newAuthRequest(http.MethodGet, "/v1/admin/submissions", resp.Token))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAuthApi_Login_Disabled(t *testing.T) {
	env := newTestEnv(t, func(conf *core.Config) { conf.AdminPasswordHash = "" })
	body := marshalObj(t, map[string]string{"email": adminEmail, "password": adminPassword})
	rec := env.do(newRequest(http.MethodPost, "/v1/auth/admin", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthApi_Refresh(t *testing.T) {
	env := newTestEnv(t)
	now := core.NowFunc()

	expired := env.auth.adminClaims(core.Identity{ID: "admin", Email: adminEmail}, now.Add(-5*time.Hour).Unix())
	expiredToken, err := env.auth.GenerateToken(expired)
	require.NoError(t, err)

	orphan := env.auth.newClaims(core.Identity{ID: "x"}, time.Minute)
	orphanToken, err := env.auth.GenerateToken(orphan)
	require.NoError(t, err)

	runHTTPTests(t, env, []httpTest{
		{name: "no token", method: http.MethodPost, path: "/v1/auth/refresh", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "refresh expired", method: http.MethodPost, path: "/v1/auth/refresh", token: expiredToken,
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "no role", method: http.MethodPost, path: "/v1/auth/refresh", token: orphanToken, wantCode: http.StatusForbidden},
	})

	tests := []struct {
		name        string
		token       string
		wantAdmin   bool
		wantStudent bool
	}{
		{name: "admin", token: env.adminToken(t), wantAdmin: true},
		{name: "student", token: env.studentToken(t, "ada@example.com"), wantStudent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := parseClaims(t, env, tt.token)
			rec := env.do(newAuthRequest(http.MethodPost, "/v1/auth/refresh", tt.token))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp LoginResponse
			decode(t, rec, &resp)
			claims := parseClaims(t, env, resp.Token)
			assert.Equal(t, tt.wantAdmin, claims.IsAdmin)
			assert.Equal(t, tt.wantStudent, claims.isStudent())
			assert.Equal(t, orig.OrigIssuedAt, claims.OrigIssuedAt)
			assert.Equal(t, orig.Email, claims.Email)
		})
	}
}

func TestTokenAuth_RejectsForeignClaims(t *testing.T) {
	env := newTestEnv(t)
	invalid := marshalObj(t, httpErr{Error: "invalid or expired jwt"})

	sign := func(edit func(*Claims)) string {
		claims := env.auth.adminClaims(core.Identity{ID: "admin", Email: adminEmail})
		edit(claims)
		token, err := env.auth.GenerateToken(claims)
		require.NoError(t, err)
		return token
	}

	runHTTPTests(t, env, []httpTest{
		{
			name: "other audience", method: http.MethodGet, path: "/v1/admin/submissions",
			token:    sign(func(c *Claims) { c.Audience = jwt.ClaimStrings{"storefront"} }),
			wantCode: http.StatusUnauthorized, wantData: invalid,
		},
		{
			name: "no audience", method: http.MethodGet, path: "/v1/admin/submissions",
			token:    sign(func(c *Claims) { c.Audience = nil }),
			wantCode: http.StatusUnauthorized, wantData: invalid,
		},
		{
			name: "other issuer", method: http.MethodGet, path: "/v1/admin/submissions",
			token:    sign(func(c *Claims) { c.Issuer = "SomeoneElse" }),
			wantCode: http.StatusUnauthorized, wantData: invalid,
		},
		{
			name: "ours", method: http.MethodGet, path: "/v1/admin/submissions",
			token:    sign(func(*Claims) {}),
			wantCode: http.StatusOK,
		},
	})
}
