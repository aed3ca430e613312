package handler

import (
	"errors"
	"strconv"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func actorFrom(c *fiber.Ctx) model.Actor {
	id, _ := c.Locals("user_id").(string)
	name, _ := c.Locals("user_name").(string)
	email, _ := c.Locals("user_email").(string)
	return model.Actor{ID: id, Name: name, Email: email}
}

// Helper untuk parse UUID dari path param
func parseUUID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, apperror.Validation(param, "must be a valid UUID")
	}
	return id, nil
}

// parseFilter reads search, category, page and limit. Missing page/limit
// fall back to defaults; malformed ones are rejected.
func parseFilter(c *fiber.Ctx) (model.ProductFilter, error) {
	filter := model.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     defaultPage,
		Limit:    defaultLimit,
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return filter, apperror.Validation("page", "must be an integer")
		}
		filter.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return filter, apperror.Validation("limit", "must be an integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

// StatusOf maps an error kind onto its HTTP status.
func StatusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindUnavailable:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// NewErrorHandler is installed as fiber.Config.ErrorHandler; handlers just
// return the error.
func NewErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, logger, err)
	}
}

func writeError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status := StatusOf(err)
	body := fiber.Map{"error": err.Error()}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body["error"] = appErr.Message
		if appErr.Field != "" {
			body["field"] = appErr.Field
		}
	}
	// Store details stay in the logs
	if status >= fiber.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err))
	}
	switch status {
	case fiber.StatusServiceUnavailable:
		body = fiber.Map{"error": "service unavailable"}
	case fiber.StatusInternalServerError:
		body = fiber.Map{"error": "internal server error"}
	}
	return c.Status(status).JSON(body)
}

func invalidJSON() error {
	return apperror.Validation("body", "invalid JSON")
}
