// Package middleware contains echo middleware specific to the API server.
package middleware

import (
	"log/slog"
	"strconv"
	"strings"

	"spurt/internal/delivery/api/response"
	deliverycontext "spurt/internal/delivery/context"
	"spurt/internal/domain/entity"
	"spurt/internal/domain/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// Context keys set by Authenticate.
const (
	ctxKeyUserID    = "userID"
	ctxKeyUserEmail = "userEmail"
	ctxKeyRole      = "role"

	bearerPrefix = "Bearer "
)

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenIssuer service.TokenIssuer
	Logger      *slog.Logger
}

// AuthMiddleware validates access tokens and enforces roles.
type AuthMiddleware struct {
	tokenIssuer service.TokenIssuer
	logger      *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{tokenIssuer: params.TokenIssuer, logger: params.Logger}
}

// Authenticate validates the bearer access token and stores its identity on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString, found := strings.CutPrefix(authHeader, bearerPrefix)
		if !found || tokenString == "" {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenIssuer.Validate(tokenString)
		if err != nil {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).Debug("Rejected access token", slog.Any("error", err))

			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		userID, err := strconv.ParseInt(claims.GroupSID, 10, 64)
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
		}

		c.Set(ctxKeyUserID, userID)
		c.Set(ctxKeyUserEmail, claims.Subject)
		c.Set(ctxKeyRole, entity.Role(claims.Role))

		return next(c)
	}
}

// RequireRole rejects requests whose token does not carry role. It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			current, ok := GetRole(c)
			if !ok {
				return response.Forbidden(c, "FORBIDDEN", "Permission denied: role information missing")
			}
			if current != role {
				return response.Forbidden(c, "FORBIDDEN", "Permission denied: require '"+role.String()+"' role")
			}

			return next(c)
		}
	}
}

// GetUserID returns the id of the authenticated user.
func GetUserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(ctxKeyUserID).(int64)

	return id, ok
}

// GetUserEmail returns the email of the authenticated user.
func GetUserEmail(c echo.Context) (string, bool) {
	email, ok := c.Get(ctxKeyUserEmail).(string)

	return email, ok
}

// GetRole returns the role of the authenticated user.
func GetRole(c echo.Context) (entity.Role, bool) {
	role, ok := c.Get(ctxKeyRole).(entity.Role)

	return role, ok
}
