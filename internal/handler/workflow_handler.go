package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/assignment-tracker/internal/dto"
	"github.com/noah-isme/assignment-tracker/internal/service"
	"github.com/noah-isme/assignment-tracker/internal/utils"
)

// WorkflowHandler exposes the submission confirm sequence of the signed-in student.
type WorkflowHandler struct {
	sessions service.SessionService
	logger   zerolog.Logger
}

// NewWorkflowHandler constructs the handler.
func NewWorkflowHandler(sessions service.SessionService, logger zerolog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		sessions: sessions,
		logger:   logger.With().Str("component", "workflow_handler").Logger(),
	}
}

// Register attaches workflow endpoints to the router group.
func (h *WorkflowHandler) Register(router fiber.Router) {
	router.Get("", h.current)
	router.Post("/mark/:id", h.initiateMark)
	router.Post("/unmark/:id", h.initiateUnmark)
	router.Post("/confirm", h.confirm)
	router.Post("/cancel", h.cancel)
}

func (h *WorkflowHandler) current(c *fiber.Ctx) error {
	workflow, err := h.sessions.Workflow()
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "workflow retrieved", workflowView(workflow))
}

func (h *WorkflowHandler) initiateMark(c *fiber.Ctx) error {
	return h.initiate(c, (*service.SubmissionWorkflow).InitiateMark)
}

func (h *WorkflowHandler) initiateUnmark(c *fiber.Ctx) error {
	return h.initiate(c, (*service.SubmissionWorkflow).InitiateUnmark)
}

func (h *WorkflowHandler) initiate(c *fiber.Ctx, start func(*service.SubmissionWorkflow, string) error) error {
	workflow, err := h.sessions.Workflow()
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	if err := start(workflow, c.Params("id")); err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "confirmation required", workflowView(workflow))
}

func (h *WorkflowHandler) confirm(c *fiber.Ctx) error {
	workflow, err := h.sessions.Workflow()
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	_, err = workflow.ConfirmStep(c.UserContext())
	return respond(c, h.logger, fiber.StatusOK, "workflow advanced", workflowView(workflow), err)
}

func (h *WorkflowHandler) cancel(c *fiber.Ctx) error {
	workflow, err := h.sessions.Workflow()
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	workflow.Cancel()
	return utils.SendSuccess(c, "workflow cancelled", workflowView(workflow))
}

func workflowView(workflow *service.SubmissionWorkflow) dto.WorkflowView {
	view := dto.WorkflowView{State: string(workflow.CurrentState())}
	if selection, ok := workflow.Selection(); ok {
		view.AssignmentID = selection.AssignmentID
		view.ActorKey = selection.ActorKey
		view.Action = string(selection.Action)
	}
	if prompt, ok := workflow.Prompt(); ok {
		view.Prompt = &dto.PromptView{Title: prompt.Title, Body: prompt.Body}
	}
	return view
}
