package routes

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/showkit/catalog-api/internal/metrics"
	"github.com/showkit/catalog-api/internal/middleware"
	"github.com/showkit/catalog-api/internal/models"
	"github.com/showkit/catalog-api/internal/store"
	apperrors "github.com/showkit/catalog-api/pkg/errors"
)

// AuthHandler handles the login and token lifecycle endpoints
type AuthHandler struct {
	users    *store.UserStore
	tokens   store.TokenRegistry
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *store.UserStore, tokens store.TokenRegistry, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger,
	}
}

// IssueToken exchanges a username/password pair for a bearer token
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err))
	}

	if details, ok := h.validateStruct(req); !ok {
		return respondError(c, apperrors.NewAppError(apperrors.CodeValidationFailed, "Validation failed", nil).WithDetails(details))
	}

	user, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		h.logger.WithField("username", req.Username).Warn("Login failed")
		return respondError(c, apperrors.NewAppError(apperrors.CodeInvalidCredentials, "Incorrect username or password", err))
	}

	token, expiresAt, err := h.tokens.Issue(c.Context(), user.Username)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue token")
		return respondError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to issue token", err))
	}

	metrics.RecordTokenIssued()
	h.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User logged in successfully")

	return c.JSON(models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// RevokeToken deletes the presented bearer token from the registry
func (h *AuthHandler) RevokeToken(c *fiber.Ctx) error {
	token, err := middleware.ExtractBearerToken(c)
	if err != nil {
		return respondError(c, apperrors.NewAppError(apperrors.CodeUnauthenticated, err.Error(), nil))
	}

	if err := h.tokens.Revoke(c.Context(), token); err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			metrics.RecordTokenRevocation("not_found")
			return respondError(c, apperrors.NewAppError(apperrors.CodeNotFound, "Token not found", err))
		}
		h.logger.WithError(err).Error("Failed to revoke token")
		return respondError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to revoke token", err))
	}

	metrics.RecordTokenRevocation("success")
	return c.JSON(fiber.Map{
		"message": "Token revoked successfully",
	})
}

// Register creates a new user account
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err))
	}

	if details, ok := h.validateStruct(req); !ok {
		return respondError(c, apperrors.NewAppError(apperrors.CodeValidationFailed, "Validation failed", nil).WithDetails(details))
	}

	user, err := h.users.Create(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) || errors.Is(err, store.ErrEmailTaken) {
			return respondError(c, apperrors.NewAppError(apperrors.CodeConflict, err.Error(), err))
		}
		h.logger.WithError(err).Error("Failed to create user")
		return respondError(c, apperrors.NewAppError(apperrors.CodeInternalError, "Failed to create user", err))
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered successfully")

	return c.Status(fiber.StatusCreated).JSON(user)
}

// validateStruct runs validator tags and collects field-level failures
func (h *AuthHandler) validateStruct(v interface{}) (map[string]string, bool) {
	err := h.validate.Struct(v)
	if err == nil {
		return nil, true
	}

	details := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details[e.Field()] = fmt.Sprintf("failed on the '%s' tag", e.Tag())
		}
	}
	return details, false
}
