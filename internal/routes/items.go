package routes

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/showkit/catalog-api/internal/metrics"
	"github.com/showkit/catalog-api/internal/models"
	"github.com/showkit/catalog-api/internal/store"
	apperrors "github.com/showkit/catalog-api/pkg/errors"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// ItemsHandler handles CRUD over the authenticated item collection
type ItemsHandler struct {
	store    *store.ItemStore
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewItemsHandler creates a new items handler
func NewItemsHandler(s *store.ItemStore, logger *logrus.Logger) *ItemsHandler {
	return &ItemsHandler{
		store:    s,
		validate: validator.New(),
		logger:   logger,
	}
}

// List returns a bounded slice of the collection in insertion order
func (h *ItemsHandler) List(c *fiber.Ctx) error {
	skip, limit, appErr := parseListParams(c)
	if appErr != nil {
		return respondError(c, appErr)
	}

	metrics.RecordItemOperation("items", "list", "success")
	return c.JSON(h.store.List(skip, limit))
}

// Get returns a single item by id
func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	id, appErr := parseItemID(c)
	if appErr != nil {
		return respondError(c, appErr)
	}

	item, err := h.store.Get(id)
	if err != nil {
		metrics.RecordItemOperation("items", "get", "not_found")
		return respondError(c, apperrors.NewAppError(apperrors.CodeNotFound, "Item not found", err))
	}

	metrics.RecordItemOperation("items", "get", "success")
	return c.JSON(item)
}

// Create adds a new item with a server-assigned id
func (h *ItemsHandler) Create(c *fiber.Ctx) error {
	payload, appErr := h.parsePayload(c)
	if appErr != nil {
		return respondError(c, appErr)
	}

	item := h.store.Create(*payload)

	metrics.RecordItemOperation("items", "create", "success")
	h.logger.WithFields(logrus.Fields{
		"item_id": item.ID,
		"name":    item.Name,
	}).Info("Item created")

	return c.Status(fiber.StatusCreated).JSON(item)
}

// Replace swaps all fields of an existing item, keeping its id
func (h *ItemsHandler) Replace(c *fiber.Ctx) error {
	id, appErr := parseItemID(c)
	if appErr != nil {
		return respondError(c, appErr)
	}

	payload, appErr := h.parsePayload(c)
	if appErr != nil {
		return respondError(c, appErr)
	}

	item, err := h.store.Replace(id, *payload)
	if err != nil {
		metrics.RecordItemOperation("items", "replace", "not_found")
		return respondError(c, apperrors.NewAppError(apperrors.CodeNotFound, "Item not found", err))
	}

	metrics.RecordItemOperation("items", "replace", "success")
	return c.JSON(item)
}

// Patch merges only the supplied fields into an existing item
func (h *ItemsHandler) Patch(c *fiber.Ctx) error {
	id, appErr := parseItemID(c)
	if appErr != nil {
		return respondError(c, appErr)
	}

	var patch models.ItemPatch
	if err := c.BodyParser(&patch); err != nil {
		return respondError(c, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err))
	}
	if details, ok := h.validateStruct(patch); !ok {
		return respondError(c, apperrors.NewAppError(apperrors.CodeValidationFailed, "Validation failed", nil).WithDetails(details))
	}

	item, err := h.store.Patch(id, patch)
	if err != nil {
		metrics.RecordItemOperation("items", "patch", "not_found")
		return respondError(c, apperrors.NewAppError(apperrors.CodeNotFound, "Item not found", err))
	}

	metrics.RecordItemOperation("items", "patch", "success")
	return c.JSON(item)
}

// Delete removes an item by id
func (h *ItemsHandler) Delete(c *fiber.Ctx) error {
	id, appErr := parseItemID(c)
	if appErr != nil {
		return respondError(c, appErr)
	}

	if err := h.store.Delete(id); err != nil {
		metrics.RecordItemOperation("items", "delete", "not_found")
		return respondError(c, apperrors.NewAppError(apperrors.CodeNotFound, "Item not found", err))
	}

	metrics.RecordItemOperation("items", "delete", "success")
	h.logger.WithField("item_id", id).Info("Item deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

// parsePayload decodes and validates a create/replace body
func (h *ItemsHandler) parsePayload(c *fiber.Ctx) (*models.ItemPayload, *apperrors.AppError) {
	var payload models.ItemPayload
	if err := c.BodyParser(&payload); err != nil {
		return nil, apperrors.NewAppError(apperrors.CodeBadRequest, "Invalid request body", err)
	}
	if details, ok := h.validateStruct(payload); !ok {
		return nil, apperrors.NewAppError(apperrors.CodeValidationFailed, "Validation failed", nil).WithDetails(details)
	}
	return &payload, nil
}

// validateStruct runs validator tags and collects field-level failures
func (h *ItemsHandler) validateStruct(v interface{}) (map[string]string, bool) {
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

// parseItemID reads the :id path parameter
func parseItemID(c *fiber.Ctx) (int, *apperrors.AppError) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return 0, apperrors.NewAppError(apperrors.CodeBadRequest, "Item id must be an integer", err)
	}
	return id, nil
}

// parseListParams reads and bounds the skip/limit query parameters.
// Negative or oversized values are rejected explicitly rather than
// silently clamped.
func parseListParams(c *fiber.Ctx) (int, int, *apperrors.AppError) {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", defaultListLimit)

	details := make(map[string]string)
	if skip < 0 {
		details["skip"] = "must be greater than or equal to 0"
	}
	if limit < 1 || limit > maxListLimit {
		details["limit"] = "must be between 1 and " + strconv.Itoa(maxListLimit)
	}
	if len(details) > 0 {
		return 0, 0, apperrors.NewAppError(apperrors.CodeValidationFailed, "Validation failed", nil).WithDetails(details)
	}
	return skip, limit, nil
}
