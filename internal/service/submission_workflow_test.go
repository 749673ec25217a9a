package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assignment-tracker/internal/models"
)

func newTestWorkflow(t *testing.T, state *AppState, userID string) *SubmissionWorkflow {
	t.Helper()
	workflow := NewSubmissionWorkflow(state, userByID(t, state.Snapshot(), userID), zerolog.Nop())
	workflow.now = func() time.Time { return fixedNow }
	return workflow
}

func TestWorkflowMarkThenUnmarkScenario(t *testing.T) {
	snapshot := models.Snapshot{
		Users:       []models.User{{ID: "s1", Role: models.RoleStudent}},
		Assignments: singleAssignment(),
	}
	state, repo, publisher := newTestState(t, snapshot)
	workflow := newTestWorkflow(t, state, "s1")
	ctx := context.Background()

	require.NoError(t, workflow.InitiateMark("a1"))
	require.Equal(t, WorkflowAwaitingFirstConfirm, workflow.CurrentState())

	next, err := workflow.ConfirmStep(ctx)
	require.NoError(t, err)
	require.Equal(t, WorkflowAwaitingFinalConfirm, next)
	require.False(t, state.Assignments()[0].Submissions["s1"].Submitted)
	require.Zero(t, repo.saves)

	next, err = workflow.ConfirmStep(ctx)
	require.NoError(t, err)
	require.Equal(t, WorkflowIdle, next)
	record := state.Assignments()[0].Submissions["s1"]
	require.True(t, record.Submitted)
	require.NotNil(t, record.Timestamp)
	require.True(t, record.Timestamp.Equal(fixedNow))
	require.Equal(t, "s1", *record.SubmittedBy)
	require.Equal(t, 1, repo.saves)

	require.NoError(t, workflow.InitiateUnmark("a1"))
	require.Equal(t, WorkflowAwaitingUnmarkConfirm, workflow.CurrentState())
	next, err = workflow.ConfirmStep(ctx)
	require.NoError(t, err)
	require.Equal(t, WorkflowIdle, next)
	require.Equal(t, models.Submission{}, state.Assignments()[0].Submissions["s1"])
	require.Equal(t, 2, repo.saves)

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	require.False(t, stored.Assignments[0].Submissions["s1"].Submitted)
	require.Equal(t, []string{EventSubmissionMarked, EventSubmissionUnmarked}, publisher.types())
}

func TestWorkflowCancelMutatesNothing(t *testing.T) {
	state, repo, _ := newTestState(t, groupFixture())
	workflow := newTestWorkflow(t, state, "s1")
	before := state.Assignments()

	require.NoError(t, workflow.InitiateMark("a1"))
	workflow.Cancel()
	require.Equal(t, WorkflowIdle, workflow.CurrentState())

	require.NoError(t, workflow.InitiateMark("a1"))
	_, err := workflow.ConfirmStep(context.Background())
	require.NoError(t, err)
	workflow.Cancel()

	require.NoError(t, workflow.InitiateUnmark("a1"))
	workflow.Cancel()

	_, ok := workflow.Selection()
	require.False(t, ok)
	require.Equal(t, before, state.Assignments())
	require.Zero(t, repo.saves)
}

func TestWorkflowConfirmWhileIdleDoesNothing(t *testing.T) {
	state, repo, _ := newTestState(t, groupFixture())
	workflow := newTestWorkflow(t, state, "s1")

	next, err := workflow.ConfirmStep(context.Background())
	require.NoError(t, err)
	require.Equal(t, WorkflowIdle, next)
	require.Zero(t, repo.saves)
}

func TestWorkflowGroupLeaderOnly(t *testing.T) {
	state, _, _ := newTestState(t, groupFixture())
	ctx := context.Background()

	member := newTestWorkflow(t, state, "s2")
	require.ErrorIs(t, member.InitiateMark("a2"), ErrUnauthorized)
	require.ErrorIs(t, member.InitiateUnmark("a2"), ErrUnauthorized)
	require.Equal(t, WorkflowIdle, member.CurrentState())

	outsider := newTestWorkflow(t, state, "s3")
	require.ErrorIs(t, outsider.InitiateMark("a2"), ErrUnauthorized)

	leader := newTestWorkflow(t, state, "s1")
	require.NoError(t, leader.InitiateMark("a2"))
	selection, ok := leader.Selection()
	require.True(t, ok)
	require.Equal(t, "g1", selection.ActorKey)

	_, err := leader.ConfirmStep(ctx)
	require.NoError(t, err)
	_, err = leader.ConfirmStep(ctx)
	require.NoError(t, err)

	assignment, ok := FindAssignment(state.Assignments(), "a2")
	require.True(t, ok)
	require.True(t, assignment.Submissions["g1"].Submitted)
	require.Equal(t, "s1", *assignment.Submissions["g1"].SubmittedBy)
	require.NotContains(t, assignment.Submissions, "s1")
	requireInvariants(t, state.Assignments())
}

func TestWorkflowRejectsUnassignedAndAdmins(t *testing.T) {
	state, _, _ := newTestState(t, groupFixture())

	require.ErrorIs(t, newTestWorkflow(t, state, "s1").InitiateMark("a3"), ErrUnauthorized)
	require.ErrorIs(t, newTestWorkflow(t, state, "t1").InitiateMark("a1"), ErrUnauthorized)
	require.ErrorIs(t, newTestWorkflow(t, state, "s1").InitiateMark("missing"), ErrAssignmentNotFound)
}

func TestWorkflowRejectedInitiationKeepsInFlightSelection(t *testing.T) {
	state, _, _ := newTestState(t, groupFixture())
	workflow := newTestWorkflow(t, state, "s1")

	require.NoError(t, workflow.InitiateMark("a1"))
	require.ErrorIs(t, workflow.InitiateMark("a3"), ErrUnauthorized)

	selection, ok := workflow.Selection()
	require.True(t, ok)
	require.Equal(t, "a1", selection.AssignmentID)
	require.Equal(t, WorkflowAwaitingFirstConfirm, workflow.CurrentState())
}

func TestWorkflowNewSelectionReplacesPrevious(t *testing.T) {
	state, _, _ := newTestState(t, groupFixture())
	workflow := newTestWorkflow(t, state, "s1")
	ctx := context.Background()

	require.NoError(t, workflow.InitiateMark("a1"))
	_, err := workflow.ConfirmStep(ctx)
	require.NoError(t, err)

	require.NoError(t, workflow.InitiateUnmark("a2"))
	require.Equal(t, WorkflowAwaitingUnmarkConfirm, workflow.CurrentState())
	_, err = workflow.ConfirmStep(ctx)
	require.NoError(t, err)

	a1, _ := FindAssignment(state.Assignments(), "a1")
	require.False(t, a1.Submissions["s1"].Submitted)
}

func TestWorkflowPromptsFollowState(t *testing.T) {
	state, _, _ := newTestState(t, groupFixture())
	workflow := newTestWorkflow(t, state, "s1")

	_, ok := workflow.Prompt()
	require.False(t, ok)

	require.NoError(t, workflow.InitiateMark("a1"))
	prompt, ok := workflow.Prompt()
	require.True(t, ok)
	require.Equal(t, "Have you submitted your work?", prompt.Title)

	_, err := workflow.ConfirmStep(context.Background())
	require.NoError(t, err)
	prompt, _ = workflow.Prompt()
	require.Equal(t, "Final confirmation", prompt.Title)

	require.NoError(t, workflow.InitiateUnmark("a1"))
	prompt, _ = workflow.Prompt()
	require.Equal(t, "Revert submission?", prompt.Title)
}

func TestWorkflowLeadershipCheckedAgainAtConfirm(t *testing.T) {
	state, _, _ := newTestState(t, groupFixture())
	leader := newTestWorkflow(t, state, "s1")
	ctx := context.Background()

	require.NoError(t, leader.InitiateMark("a2"))
	_, err := leader.ConfirmStep(ctx)
	require.NoError(t, err)

	_, err = state.Update(ctx, "test.handover", func(current models.Snapshot) (models.Snapshot, error) {
		current.Groups[0].LeaderID = "s2"
		return current, nil
	})
	require.NoError(t, err)

	next, err := leader.ConfirmStep(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, WorkflowIdle, next)
	a2, _ := FindAssignment(state.Assignments(), "a2")
	require.False(t, a2.Submissions["g1"].Submitted)
}

func TestWorkflowUnmarkOfDeletedAssignmentIsSilent(t *testing.T) {
	state, _, _ := newTestState(t, groupFixture())
	workflow := newTestWorkflow(t, state, "s1")
	ctx := context.Background()

	require.NoError(t, workflow.InitiateUnmark("a1"))
	require.NoError(t, state.UpdateAssignments(ctx, "test.remove", func(current []models.Assignment) ([]models.Assignment, error) {
		next, _, _, err := RemoveAssignment(current, "a1")
		return next, err
	}))

	next, err := workflow.ConfirmStep(ctx)
	require.NoError(t, err)
	require.Equal(t, WorkflowIdle, next)

	require.NoError(t, workflow.InitiateMark("a2"))
	require.NoError(t, state.UpdateAssignments(ctx, "test.remove", func(current []models.Assignment) ([]models.Assignment, error) {
		next, _, _, err := RemoveAssignment(current, "a2")
		return next, err
	}))
	_, err = workflow.ConfirmStep(ctx)
	require.NoError(t, err)
	_, err = workflow.ConfirmStep(ctx)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestWorkflowPersistenceFailureKeepsSnapshot(t *testing.T) {
	state, repo, publisher := newTestState(t, groupFixture())
	repo.saveErr = errDiskFull
	workflow := newTestWorkflow(t, state, "s1")
	ctx := context.Background()

	require.NoError(t, workflow.InitiateUnmark("a1"))
	require.NoError(t, workflow.InitiateMark("a1"))
	_, err := workflow.ConfirmStep(ctx)
	require.NoError(t, err)
	next, err := workflow.ConfirmStep(ctx)

	require.True(t, IsPersistenceWarning(err))
	require.ErrorIs(t, err, errDiskFull)
	require.Equal(t, WorkflowIdle, next)
	a1, _ := FindAssignment(state.Assignments(), "a1")
	require.True(t, a1.Submissions["s1"].Submitted)
	require.Equal(t, []string{EventPersistenceFailed, EventSubmissionMarked}, publisher.types())
}
