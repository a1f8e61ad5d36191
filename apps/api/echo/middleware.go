package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

const (
	retryAfterSeconds = "1"

	hstsMaxAge    = 365 * 24 * 60 * 60 // 1 year, in seconds
	apiContentCSP = "default-src 'none'; frame-ancestors 'none'"
)

// secureHeaders sets the browser hardening headers on every response.
// HSTS is only sent over TLS, or behind a proxy that forwarded https.
func secureHeaders() echo.MiddlewareFunc {
	return middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "0",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            hstsMaxAge,
		HSTSPreloadEnabled:    true,
		ContentSecurityPolicy: apiContentCSP,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	})
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// studentMiddleware only lets through tokens issued by the student access link.
func studentMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.isStudent() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// rateLimiter limits requests per client IP against store.
func rateLimiter(store middleware.RateLimiterStore) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return errors.Wrap(err, "extracting rate limit identifier")
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			if err != nil {
				return errors.Wrapf(err, "rate limiting %s", identifier)
			}
			ctx.Response().Header().Set(echo.HeaderRetryAfter, retryAfterSeconds)
			return errTooManyRequests
		},
	})
}
