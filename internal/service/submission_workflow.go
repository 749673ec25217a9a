package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/assignment-tracker/internal/models"
	"github.com/noah-isme/assignment-tracker/internal/observability"
)

// WorkflowState is a step of the submission confirm sequence.
type WorkflowState string

const (
	WorkflowIdle                  WorkflowState = "idle"
	WorkflowAwaitingFirstConfirm  WorkflowState = "awaiting_first_confirm"
	WorkflowAwaitingFinalConfirm  WorkflowState = "awaiting_final_confirm"
	WorkflowAwaitingUnmarkConfirm WorkflowState = "awaiting_unmark_confirm"
)

// WorkflowAction is the change a workflow will apply once confirmed.
type WorkflowAction string

const (
	ActionMark   WorkflowAction = "mark"
	ActionUnmark WorkflowAction = "unmark"
)

// WorkflowSelection identifies the in-flight workflow.
type WorkflowSelection struct {
	AssignmentID string         `json:"assignmentId"`
	ActorKey     string         `json:"actorKey"`
	Action       WorkflowAction `json:"action"`
}

// Prompt is the text shown while a confirmation is pending.
type Prompt struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

var workflowPrompts = map[WorkflowState]Prompt{
	WorkflowAwaitingFirstConfirm: {
		Title: "Have you submitted your work?",
		Body:  `Click "Confirm" to acknowledge that you have submitted to the external submission link. You will be asked to confirm one more time.`,
	},
	WorkflowAwaitingFinalConfirm: {
		Title: "Final confirmation",
		Body:  "This will mark the assignment as submitted for you. This action is persistent in your browser.",
	},
	WorkflowAwaitingUnmarkConfirm: {
		Title: "Revert submission?",
		Body:  "This will mark the assignment as not submitted again. Use this if you marked it by mistake.",
	},
}

// SubmissionWorkflow drives the staged confirmation for one signed-in student.
// Marking needs two confirmations, unmarking one. Only one selection is in
// flight at a time.
type SubmissionWorkflow struct {
	mu        sync.Mutex
	owner     AssignmentsOwner
	actor     models.User
	state     WorkflowState
	selection *WorkflowSelection
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSubmissionWorkflow binds a workflow to the acting user.
func NewSubmissionWorkflow(owner AssignmentsOwner, actor models.User, logger zerolog.Logger) *SubmissionWorkflow {
	return &SubmissionWorkflow{
		owner:  owner,
		actor:  actor,
		state:  WorkflowIdle,
		logger: logger.With().Str("component", "submission_workflow").Str("actor", actor.ID).Logger(),
		now:    time.Now,
	}
}

// InitiateMark starts the two-step mark sequence for assignmentID.
func (w *SubmissionWorkflow) InitiateMark(assignmentID string) error {
	return w.initiate(assignmentID, ActionMark, WorkflowAwaitingFirstConfirm)
}

// InitiateUnmark starts the one-step unmark sequence for assignmentID.
func (w *SubmissionWorkflow) InitiateUnmark(assignmentID string) error {
	return w.initiate(assignmentID, ActionUnmark, WorkflowAwaitingUnmarkConfirm)
}

func (w *SubmissionWorkflow) initiate(assignmentID string, action WorkflowAction, target WorkflowState) error {
	assignment, ok := FindAssignment(w.owner.Assignments(), assignmentID)
	if !ok {
		return ErrAssignmentNotFound
	}

	key, err := ResolveActorKey(w.actor, assignment, w.owner.Groups())
	if err != nil {
		w.logger.Warn().Str("assignment_id", assignmentID).Str("action", string(action)).Msg("submission change refused")
		observability.WorkflowTransitions().WithLabelValues("submission", "rejected").Inc()
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != WorkflowIdle {
		w.logger.Debug().Str("previous", string(w.state)).Msg("replacing in-flight workflow")
		observability.WorkflowTransitions().WithLabelValues("submission", "superseded").Inc()
	}

	w.state = target
	w.selection = &WorkflowSelection{AssignmentID: assignmentID, ActorKey: key, Action: action}
	observability.WorkflowTransitions().WithLabelValues("submission", "initiate_"+string(action)).Inc()
	w.logger.Debug().Str("assignment_id", assignmentID).Str("state", string(target)).Msg("workflow started")
	return nil
}

// ConfirmStep advances the workflow. The mark path writes on its second
// confirmation, the unmark path on its first. Confirming while idle does
// nothing. The returned state is the one the workflow is left in.
func (w *SubmissionWorkflow) ConfirmStep(ctx context.Context) (WorkflowState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case WorkflowIdle:
		return WorkflowIdle, nil
	case WorkflowAwaitingFirstConfirm:
		w.state = WorkflowAwaitingFinalConfirm
		observability.WorkflowTransitions().WithLabelValues("submission", "confirm_first").Inc()
		w.logger.Debug().Str("assignment_id", w.selection.AssignmentID).Msg("awaiting final confirmation")
		return w.state, nil
	}

	selection := *w.selection
	w.reset()

	err := w.apply(ctx, selection)
	if errors.Is(err, ErrAssignmentNotFound) && selection.Action == ActionUnmark {
		return WorkflowIdle, nil
	}
	return WorkflowIdle, err
}

func (w *SubmissionWorkflow) apply(ctx context.Context, selection WorkflowSelection) error {
	assignment, ok := FindAssignment(w.owner.Assignments(), selection.AssignmentID)
	if !ok {
		return ErrAssignmentNotFound
	}
	// Group leadership may have changed since initiation.
	key, err := ResolveActorKey(w.actor, assignment, w.owner.Groups())
	if err != nil || key != selection.ActorKey {
		w.logger.Warn().Str("assignment_id", selection.AssignmentID).Msg("actor no longer owns the submission")
		return ErrUnauthorized
	}

	at := w.now().UTC()
	err = w.owner.UpdateAssignments(ctx, "submission."+string(selection.Action), func(current []models.Assignment) ([]models.Assignment, error) {
		if _, ok := FindAssignment(current, selection.AssignmentID); !ok {
			return nil, ErrAssignmentNotFound
		}
		if selection.Action == ActionMark {
			return MarkSubmitted(current, selection.AssignmentID, selection.ActorKey, w.actor.ID, at), nil
		}
		return UnmarkSubmitted(current, selection.AssignmentID, selection.ActorKey), nil
	})
	if err != nil && !IsPersistenceWarning(err) {
		return err
	}

	observability.WorkflowTransitions().WithLabelValues("submission", "confirm_"+string(selection.Action)).Inc()
	observability.SubmissionChanges().WithLabelValues(string(selection.Action)).Inc()
	w.logger.Info().
		Str("assignment_id", selection.AssignmentID).
		Str("key", selection.ActorKey).
		Str("action", string(selection.Action)).
		Msg("submission updated")

	eventType := EventSubmissionMarked
	if selection.Action == ActionUnmark {
		eventType = EventSubmissionUnmarked
	}
	w.owner.Record(ctx, Event{
		Type:         eventType,
		ActorID:      w.actor.ID,
		AssignmentID: selection.AssignmentID,
		Key:          selection.ActorKey,
		At:           at,
	})

	return err
}

// Cancel returns to idle from any state without side effects.
func (w *SubmissionWorkflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == WorkflowIdle {
		return
	}
	observability.WorkflowTransitions().WithLabelValues("submission", "cancel").Inc()
	w.logger.Debug().Str("state", string(w.state)).Msg("workflow cancelled")
	w.reset()
}

// CurrentState reports the active step.
func (w *SubmissionWorkflow) CurrentState() WorkflowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Selection reports the in-flight assignment and action, if any.
func (w *SubmissionWorkflow) Selection() (WorkflowSelection, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selection == nil {
		return WorkflowSelection{}, false
	}
	return *w.selection, true
}

// Prompt returns the confirmation text for the active step.
func (w *SubmissionWorkflow) Prompt() (Prompt, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prompt, ok := workflowPrompts[w.state]
	return prompt, ok
}

func (w *SubmissionWorkflow) reset() {
	w.state = WorkflowIdle
	w.selection = nil
}
