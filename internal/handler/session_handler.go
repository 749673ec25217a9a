package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/assignment-tracker/internal/dto"
	"github.com/noah-isme/assignment-tracker/internal/service"
	"github.com/noah-isme/assignment-tracker/internal/utils"
)

// SessionHandler wires sign-in, sign-up, preference and account routes.
type SessionHandler struct {
	service   service.SessionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service service.SessionService, validator *validator.Validate, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register attaches session endpoints to the router group.
func (h *SessionHandler) Register(router fiber.Router, loginLimiter fiber.Handler) {
	if loginLimiter == nil {
		loginLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Get("", h.current)
	router.Post("/login", loginLimiter, h.login)
	router.Post("/logout", h.logout)
	router.Post("/signup", h.signup)
	router.Patch("/prefs", h.updatePrefs)
}

// RegisterUsers attaches account management endpoints.
func (h *SessionHandler) RegisterUsers(router fiber.Router) {
	router.Delete("/:id", h.deleteUser)
}

func (h *SessionHandler) current(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "session retrieved", h.service.Current())
}

func (h *SessionHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := bindBody(c, h.validator, &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := h.service.Login(c.UserContext(), payload)
	return respond(c, h.logger, fiber.StatusOK, "signed in", session, err)
}

func (h *SessionHandler) logout(c *fiber.Ctx) error {
	err := h.service.Logout(c.UserContext())
	return respond(c, h.logger, fiber.StatusOK, "signed out", h.service.Current(), err)
}

func (h *SessionHandler) signup(c *fiber.Ctx) error {
	var payload dto.SignupRequest
	if err := bindBody(c, nil, &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	session, err := h.service.Signup(c.UserContext(), payload)
	return respond(c, h.logger, fiber.StatusCreated, "account created", session, err)
}

func (h *SessionHandler) updatePrefs(c *fiber.Ctx) error {
	var payload dto.PrefsUpdateRequest
	if err := bindBody(c, nil, &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	prefs, err := h.service.UpdatePrefs(c.UserContext(), payload)
	return respond(c, h.logger, fiber.StatusOK, "preferences updated", prefs, err)
}

func (h *SessionHandler) deleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	err := h.service.DeleteUser(c.UserContext(), id)
	return respond(c, h.logger, fiber.StatusOK, "user deleted", fiber.Map{"id": id}, err)
}
