package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/assignment-tracker/internal/models"
	"github.com/noah-isme/assignment-tracker/internal/observability"
)

// DeletionState is the protocol's externally visible step.
type DeletionState string

const (
	DeletionPresent              DeletionState = "present"
	DeletionAwaitingConfirmation DeletionState = "awaiting_confirmation"
	DeletionPendingUndo          DeletionState = "pending_undo"
)

// UndoNotification describes the live undo affordance.
type UndoNotification struct {
	Message      string `json:"message"`
	RemovedTitle string `json:"removedTitle"`
	AssignmentID string `json:"assignmentId"`
}

type pendingDeletion struct {
	removed models.Assignment
	index   int
}

// DeleteUndoProtocol removes assignments optimistically and keeps a single
// slot from which the last removal can be restored. Expiry of that slot is
// up to the caller via Dismiss.
type DeleteUndoProtocol struct {
	mu          sync.Mutex
	owner       AssignmentsOwner
	actor       models.User
	targetID    string
	targetTitle string
	pending     *pendingDeletion
	logger      zerolog.Logger
}

// NewDeleteUndoProtocol binds the protocol to the acting user.
func NewDeleteUndoProtocol(owner AssignmentsOwner, actor models.User, logger zerolog.Logger) *DeleteUndoProtocol {
	return &DeleteUndoProtocol{
		owner:  owner,
		actor:  actor,
		logger: logger.With().Str("component", "delete_undo").Str("actor", actor.ID).Logger(),
	}
}

// RequestDelete asks for confirmation before removing assignmentID. Only the
// admin who created the assignment may delete it.
func (p *DeleteUndoProtocol) RequestDelete(assignmentID string) error {
	assignment, ok := FindAssignment(p.owner.Assignments(), assignmentID)
	if !ok {
		return ErrAssignmentNotFound
	}
	if !CanManageAssignment(p.actor, assignment) {
		p.logger.Warn().Str("assignment_id", assignmentID).Msg("delete refused")
		observability.WorkflowTransitions().WithLabelValues("deletion", "rejected").Inc()
		return ErrUnauthorized
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.targetID = assignment.ID
	p.targetTitle = assignment.Title
	observability.WorkflowTransitions().WithLabelValues("deletion", "request").Inc()
	p.logger.Debug().Str("assignment_id", assignmentID).Msg("awaiting delete confirmation")
	return nil
}

// ConfirmDelete removes the requested assignment and persists at once. A
// previous undo slot is finalized first. Without a pending request it
// returns nil and does nothing.
func (p *DeleteUndoProtocol) ConfirmDelete(ctx context.Context) (*UndoNotification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.targetID == "" {
		return nil, nil
	}
	targetID := p.targetID
	p.targetID, p.targetTitle = "", ""

	var (
		removed models.Assignment
		index   int
	)
	err := p.owner.UpdateAssignments(ctx, "assignment.delete", func(current []models.Assignment) ([]models.Assignment, error) {
		next, gone, at, err := RemoveAssignment(current, targetID)
		if err != nil {
			return nil, err
		}
		removed, index = gone, at
		return next, nil
	})
	if err != nil && !IsPersistenceWarning(err) {
		return nil, err
	}

	if p.pending != nil {
		p.finalize("superseded")
	}
	p.pending = &pendingDeletion{removed: removed, index: index}

	observability.WorkflowTransitions().WithLabelValues("deletion", "confirm").Inc()
	observability.Deletions().WithLabelValues("deleted").Inc()
	p.logger.Info().Str("assignment_id", removed.ID).Int("index", index).Msg("assignment deleted")
	p.owner.Record(ctx, Event{Type: EventAssignmentDeleted, ActorID: p.actor.ID, AssignmentID: removed.ID})

	return p.notification(), err
}

// Cancel drops an unconfirmed delete request. A live undo slot is kept.
func (p *DeleteUndoProtocol) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.targetID == "" {
		return
	}
	observability.WorkflowTransitions().WithLabelValues("deletion", "cancel").Inc()
	p.logger.Debug().Str("assignment_id", p.targetID).Msg("delete cancelled")
	p.targetID, p.targetTitle = "", ""
}

// Undo restores the last removal while its slot is live. With no live slot,
// or when the id is back in the collection already, it does nothing.
func (p *DeleteUndoProtocol) Undo(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending == nil {
		return nil
	}
	slot := *p.pending
	p.pending = nil

	restored := false
	err := p.owner.UpdateAssignments(ctx, "assignment.restore", func(current []models.Assignment) ([]models.Assignment, error) {
		if _, exists := FindAssignment(current, slot.removed.ID); exists {
			return nil, errNoChange
		}
		restored = true
		return RestoreAssignment(current, slot.removed, slot.index), nil
	})
	if !restored || (err != nil && !IsPersistenceWarning(err)) {
		return err
	}

	observability.WorkflowTransitions().WithLabelValues("deletion", "undo").Inc()
	observability.Deletions().WithLabelValues("undone").Inc()
	p.logger.Info().Str("assignment_id", slot.removed.ID).Int("index", slot.index).Msg("assignment restored")
	p.owner.Record(ctx, Event{Type: EventAssignmentRestored, ActorID: p.actor.ID, AssignmentID: slot.removed.ID})
	return err
}

// Dismiss closes the undo slot, making the last deletion permanent.
func (p *DeleteUndoProtocol) Dismiss() {
	p.release("dismissed")
}

// release finalizes a live undo slot and drops any unconfirmed request.
func (p *DeleteUndoProtocol) release(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending != nil {
		p.finalize(reason)
	}
	if reason != "dismissed" {
		p.targetID, p.targetTitle = "", ""
	}
}

// CurrentState reports the protocol step. A request awaiting confirmation
// takes precedence over a live undo slot.
func (p *DeleteUndoProtocol) CurrentState() DeletionState {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.targetID != "":
		return DeletionAwaitingConfirmation
	case p.pending != nil:
		return DeletionPendingUndo
	default:
		return DeletionPresent
	}
}

// PendingNotification returns the live undo slot, or nil.
func (p *DeleteUndoProtocol) PendingNotification() *UndoNotification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notification()
}

// Prompt returns the confirmation text while a request is pending.
func (p *DeleteUndoProtocol) Prompt() (Prompt, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.targetID == "" {
		return Prompt{}, false
	}
	return Prompt{
		Title: "Delete assignment?",
		Body:  fmt.Sprintf("%q will be removed for everyone. You can undo right after.", p.targetTitle),
	}, true
}

func (p *DeleteUndoProtocol) notification() *UndoNotification {
	if p.pending == nil {
		return nil
	}
	return &UndoNotification{
		Message:      "Deleted: " + p.pending.removed.Title,
		RemovedTitle: p.pending.removed.Title,
		AssignmentID: p.pending.removed.ID,
	}
}

func (p *DeleteUndoProtocol) finalize(reason string) {
	observability.Deletions().WithLabelValues("finalized").Inc()
	p.logger.Debug().Str("assignment_id", p.pending.removed.ID).Str("reason", reason).Msg("deletion finalized")
	p.pending = nil
}
