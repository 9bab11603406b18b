package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/showkit/catalog-api/internal/metrics"
	"github.com/showkit/catalog-api/internal/models"
	"github.com/showkit/catalog-api/internal/store"
	apperrors "github.com/showkit/catalog-api/pkg/errors"
)

const userLocalKey = "auth_user"

// AuthMiddleware gates protected routes behind a bearer token. It performs
// authentication only: the token is resolved through the registry and the
// user store, then handed to the handler via Locals. No role checks.
type AuthMiddleware struct {
	registry  store.TokenRegistry
	userStore *store.UserStore
	logger    *logrus.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(registry store.TokenRegistry, userStore *store.UserStore, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		registry:  registry,
		userStore: userStore,
		logger:    logger,
	}
}

// Authenticate validates the bearer token and resolves the acting user
func (a *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := ExtractBearerToken(c)
		if err != nil {
			metrics.RecordTokenValidation("unauthenticated")
			return unauthorizedError(c, apperrors.CodeUnauthenticated, err.Error())
		}

		username, err := a.registry.Validate(c.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrTokenExpired):
				metrics.RecordTokenValidation("expired")
				return unauthorizedError(c, apperrors.CodeTokenExpired, "Token has expired")
			case errors.Is(err, store.ErrTokenNotFound):
				metrics.RecordTokenValidation("unauthenticated")
				return unauthorizedError(c, apperrors.CodeUnauthenticated, "Invalid or expired token")
			default:
				a.logger.WithError(err).Error("Token validation failed")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    apperrors.CodeInternalError,
						"message": "Token validation failed",
					},
				})
			}
		}

		user, err := a.userStore.GetByUsername(username)
		if err != nil {
			// The token outlived its user; treat it as unauthenticated.
			a.logger.WithField("username", username).Warn("Token resolved to unknown user")
			metrics.RecordTokenValidation("unauthenticated")
			return unauthorizedError(c, apperrors.CodeUnauthenticated, "Invalid or expired token")
		}

		metrics.RecordTokenValidation("ok")
		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

// ExtractBearerToken pulls the token out of the Authorization header
func ExtractBearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("Authorization header is required")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", errors.New("Authorization header must be Bearer token")
	}

	token := authHeader[len(bearerPrefix):]
	if token == "" {
		return "", errors.New("Token is required")
	}
	return token, nil
}

// GetUser extracts the authenticated user from context
func GetUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(userLocalKey).(models.User)
	return user, ok
}

// unauthorizedError returns a standardized unauthorized error response
func unauthorizedError(c *fiber.Ctx, code apperrors.ErrorCode, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": fiber.Map{
			"code":     code,
			"message":  message,
			"trace_id": c.Get("X-Request-ID"),
		},
	})
}
