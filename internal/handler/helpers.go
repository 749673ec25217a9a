package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/assignment-tracker/internal/middleware"
	"github.com/noah-isme/assignment-tracker/internal/service"
	"github.com/noah-isme/assignment-tracker/internal/utils"
)

const persistenceWarning = "changes were applied but could not be saved"

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if id := middleware.GetRequestID(c); id != "" {
			logger = base.With().Str("request_id", id).Logger()
		}
	}
	return &logger
}

// respond sends data with status, downgrading a failed save to a warning and
// mapping every other error to its HTTP status.
func respond(c *fiber.Ctx, logger zerolog.Logger, status int, message string, data interface{}, err error) error {
	if err == nil {
		return utils.SendSuccessWithStatus(c, status, message, data)
	}
	if service.IsPersistenceWarning(err) {
		requestLogger(logger, c).Warn().Err(err).Msg("responding with persistence warning")
		return utils.SendWarning(c, status, message, data, persistenceWarning)
	}
	return sendServiceError(c, logger, err)
}

func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var (
		validationErr    *service.ValidationError
		validationErrors validator.ValidationErrors
	)
	switch {
	case errors.As(err, &validationErr):
		return utils.Fail(c, fiber.StatusBadRequest, validationErr.Error(), fiber.Map{"kind": validationErr.Kind})
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotSignedIn), errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

var errInvalidBody = errors.New("invalid request body")

// bindBody decodes the JSON body into payload and validates it when validate is set.
func bindBody(c *fiber.Ctx, validate *validator.Validate, payload interface{}) error {
	if err := c.BodyParser(payload); err != nil {
		return errInvalidBody
	}
	if validate == nil {
		return nil
	}
	if err := validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return validationErrors
		}
		return errInvalidBody
	}
	return nil
}
