package echoapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/auth"
)

const (
	contextTokenKey = "userToken"
	bearerPrefix    = "Bearer "
	audience        = "back-office"

	roleStudent = "student"
)

var (
	errUnexpectedSigningMethod = errors.New("unexpected signing method")
	errForeignToken            = errors.New("token audience or issuer mismatch")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"` // -> ADMIN PORTAL
	Role         string `json:"role,omitempty"`     // student -> STUDENT DASHBOARD
}

func (c Claims) identity() core.Identity {
	return core.Identity{ID: c.Subject, Email: c.Email}
}

func (c Claims) isStudent() bool {
	return c.Role == roleStudent && c.Email != ""
}

// tokenAuth issues and verifies the HS256 tokens of admins and students.
type tokenAuth struct {
	key  []byte
	conf *core.Config
}

func newTokenAuth(conf *core.Config) *tokenAuth {
	return &tokenAuth{key: []byte(conf.SecretKey), conf: conf}
}

// adminClaims returns the claims of an authenticated admin.
// origIat is the issue time of the first token of a refresh chain.
func (ta *tokenAuth) adminClaims(id core.Identity, origIat ...int64) *Claims {
	claims := ta.newClaims(id, ta.conf.Server.JWTExpirationDelta, origIat...)
	claims.IsAdmin = true
	return claims
}

// studentClaims returns the claims of a student whose email was verified by the access link.
func (ta *tokenAuth) studentClaims(email string, origIat ...int64) *Claims {
	claims := ta.newClaims(core.Identity{ID: email, Email: email}, ta.conf.Server.StudentTokenDelta, origIat...)
	claims.Role = roleStudent
	return claims
}

func (ta *tokenAuth) newClaims(id core.Identity, ttl time.Duration, origIat ...int64) *Claims {
	now := core.NowFunc()
	oriat := now.Unix()
	if len(origIat) > 0 {
		oriat = origIat[0]
	}
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ta.conf.AppName,
			Subject:   id.ID,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrigIssuedAt: oriat,
		Email:        id.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func (ta *tokenAuth) GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(ta.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (ta *tokenAuth) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errUnexpectedSigningMethod
	}
	return ta.key, nil
}

// issuedByUs checks the claims jwt.ParseWithClaims leaves unverified.
func (ta *tokenAuth) issuedByUs(claims *Claims) bool {
	return claims.VerifyAudience(audience, true) && claims.VerifyIssuer(ta.conf.AppName, true)
}

// middleware rejects requests without a valid bearer token and stores the token in the context.
func (ta *tokenAuth) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return errJWTMissing
			}
			claims := new(Claims)
			token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, bearerPrefix), claims, ta.keyFunc)
			if err == nil && !ta.issuedByUs(claims) {
				err = errForeignToken
			}
			if err != nil || !token.Valid {
				return &echo.HTTPError{Code: errJWTInvalid.Code, Message: errJWTInvalid.Message, Internal: err}
			}
			ctx.Set(contextTokenKey, token)
			return next(ctx)
		}
	}
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// refreshToken re-issues the context token, keeping its original issue time.
func (ta *tokenAuth) refreshToken(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(ta.conf.Server.JWTRefreshExpirationDelta)
	if core.NowFunc().After(expTime) {
		return "", errRefreshExpired
	}

	var newClaims *Claims
	switch {
	case claims.IsAdmin:
		newClaims = ta.adminClaims(claims.identity(), claims.OrigIssuedAt)
	case claims.isStudent():
		newClaims = ta.studentClaims(claims.Email, claims.OrigIssuedAt)
	default:
		return "", errHttpForbidden
	}
	token, err := ta.GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}

type authApi struct {
	admin *auth.Admin
	auth  *tokenAuth
}

func registerAuthAPI(g *echo.Group, jwt, limiter echo.MiddlewareFunc, admin *auth.Admin, ta *tokenAuth) {
	api := authApi{admin: admin, auth: ta}

	ag := g.Group("/auth")
	ag.POST("/admin", api.login, limiter)
	ag.POST("/refresh", api.refresh, jwt)
}

func (api *authApi) login(ctx echo.Context) error {
	var creds auth.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	id, err := api.admin.Authenticate(creds)
	if err != nil {
		if errors.Cause(err) == auth.ErrInvalidCredentials {
			return errAuthenticationFailed
		}
		return err
	}
	token, err := api.auth.GenerateToken(api.auth.adminClaims(id))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) refresh(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

type LoginResponse struct {
	Token string `json:"token"`
}
