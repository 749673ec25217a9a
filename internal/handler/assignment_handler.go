package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/assignment-tracker/internal/dto"
	"github.com/noah-isme/assignment-tracker/internal/service"
	"github.com/noah-isme/assignment-tracker/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler. Payload validation happens in
// the service so that each failure maps to its validation kind.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
}

// RegisterCourses attaches course-scoped endpoints.
func (h *AssignmentHandler) RegisterCourses(router fiber.Router) {
	router.Post("/:id/groups", h.createGroup)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	var query dto.AssignmentListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	assignments, err := h.service.List(c.UserContext(), query)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentDraft
	if err := bindBody(c, nil, &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Create(c.UserContext(), payload)
	return respond(c, h.logger, fiber.StatusCreated, "assignment created", assignment, err)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	var payload dto.AssignmentUpdateRequest
	if err := bindBody(c, nil, &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Update(c.UserContext(), c.Params("id"), payload)
	return respond(c, h.logger, fiber.StatusOK, "assignment updated", assignment, err)
}

func (h *AssignmentHandler) createGroup(c *fiber.Ctx) error {
	var payload dto.GroupCreateRequest
	if err := bindBody(c, nil, &payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	group, err := h.service.CreateGroup(c.UserContext(), c.Params("id"), payload)
	return respond(c, h.logger, fiber.StatusCreated, "group created", group, err)
}
