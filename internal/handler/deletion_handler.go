package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/assignment-tracker/internal/dto"
	"github.com/noah-isme/assignment-tracker/internal/service"
	"github.com/noah-isme/assignment-tracker/internal/utils"
)

// DeletionHandler exposes optimistic delete with undo for the signed-in admin.
type DeletionHandler struct {
	sessions service.SessionService
	logger   zerolog.Logger
}

// NewDeletionHandler constructs the handler.
func NewDeletionHandler(sessions service.SessionService, logger zerolog.Logger) *DeletionHandler {
	return &DeletionHandler{
		sessions: sessions,
		logger:   logger.With().Str("component", "deletion_handler").Logger(),
	}
}

// Register attaches deletion endpoints to the router group.
func (h *DeletionHandler) Register(router fiber.Router) {
	router.Get("", h.current)
	router.Post("/confirm", h.confirm)
	router.Post("/cancel", h.cancel)
	router.Post("/undo", h.undo)
	router.Post("/dismiss", h.dismiss)
	router.Post("/request/:id", h.request)
}

func (h *DeletionHandler) current(c *fiber.Ctx) error {
	protocol, err := h.sessions.Deletion()
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "deletion retrieved", deletionView(protocol))
}

func (h *DeletionHandler) request(c *fiber.Ctx) error {
	protocol, err := h.sessions.Deletion()
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	if err := protocol.RequestDelete(c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "confirmation required", deletionView(protocol))
}

func (h *DeletionHandler) confirm(c *fiber.Ctx) error {
	protocol, err := h.sessions.Deletion()
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	_, err = protocol.ConfirmDelete(c.UserContext())
	return respond(c, h.logger, fiber.StatusOK, "assignment deleted", deletionView(protocol), err)
}

func (h *DeletionHandler) cancel(c *fiber.Ctx) error {
	protocol, err := h.sessions.Deletion()
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	protocol.Cancel()
	return utils.SendSuccess(c, "deletion cancelled", deletionView(protocol))
}

func (h *DeletionHandler) undo(c *fiber.Ctx) error {
	protocol, err := h.sessions.Deletion()
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	err = protocol.Undo(c.UserContext())
	return respond(c, h.logger, fiber.StatusOK, "deletion undone", deletionView(protocol), err)
}

func (h *DeletionHandler) dismiss(c *fiber.Ctx) error {
	protocol, err := h.sessions.Deletion()
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	protocol.Dismiss()
	return utils.SendSuccess(c, "notification dismissed", deletionView(protocol))
}

func deletionView(protocol *service.DeleteUndoProtocol) dto.DeletionView {
	view := dto.DeletionView{State: string(protocol.CurrentState())}
	if prompt, ok := protocol.Prompt(); ok {
		view.Prompt = &dto.PromptView{Title: prompt.Title, Body: prompt.Body}
	}
	if notification := protocol.PendingNotification(); notification != nil {
		view.Notification = &dto.NotificationView{
			Message:      notification.Message,
			RemovedTitle: notification.RemovedTitle,
			AssignmentID: notification.AssignmentID,
			ActionLabel:  "Undo",
		}
	}
	return view
}
