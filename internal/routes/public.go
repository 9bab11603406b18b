package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/showkit/catalog-api/internal/metrics"
	"github.com/showkit/catalog-api/internal/store"
	apperrors "github.com/showkit/catalog-api/pkg/errors"
)

// PublicItemsHandler exposes the public item collection, read-only and
// without authentication.
type PublicItemsHandler struct {
	store  *store.ItemStore
	logger *logrus.Logger
}

// NewPublicItemsHandler creates a new public items handler
func NewPublicItemsHandler(s *store.ItemStore, logger *logrus.Logger) *PublicItemsHandler {
	return &PublicItemsHandler{
		store:  s,
		logger: logger,
	}
}

// List returns a bounded slice of the public collection
func (h *PublicItemsHandler) List(c *fiber.Ctx) error {
	skip, limit, appErr := parseListParams(c)
	if appErr != nil {
		return respondError(c, appErr)
	}

	metrics.RecordItemOperation("public_items", "list", "success")
	return c.JSON(h.store.List(skip, limit))
}

// Get returns a single public item by id
func (h *PublicItemsHandler) Get(c *fiber.Ctx) error {
	id, appErr := parseItemID(c)
	if appErr != nil {
		return respondError(c, appErr)
	}

	item, err := h.store.Get(id)
	if err != nil {
		metrics.RecordItemOperation("public_items", "get", "not_found")
		return respondError(c, apperrors.NewAppError(apperrors.CodeNotFound, "Public item not found", err))
	}

	metrics.RecordItemOperation("public_items", "get", "success")
	return c.JSON(item)
}
