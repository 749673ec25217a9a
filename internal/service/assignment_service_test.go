package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assignment-tracker/internal/dto"
	"github.com/noah-isme/assignment-tracker/internal/models"
)

func TestAssignmentListForStudent(t *testing.T) {
	fixture := groupFixture()
	fixture.Assignments[1].Submissions["g1"] = models.NewSubmittedRecord("s1", fixedNow)
	state, _, _ := newTestState(t, fixture)
	svc := NewAssignmentService(state, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.List(ctx, dto.AssignmentListQuery{})
	require.ErrorIs(t, err, ErrNotSignedIn)

	signIn(t, state, "s2")
	list, err := svc.List(ctx, dto.AssignmentListQuery{})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	// sorted by due date: a2 (Nov 1) before a3 (Dec 1)
	require.Equal(t, "a2", list.Items[0].ID)
	require.Empty(t, list.Items[0].ActorKey, "members cannot change the group record")
	require.True(t, list.Items[0].Status.Submitted)
	require.Equal(t, "s2", list.Items[1].ActorKey)
	require.Equal(t, dto.StudentSummary{Completed: 1, Total: 2, Percent: 50}, *list.Summary)

	filtered, err := svc.List(ctx, dto.AssignmentListQuery{Query: "READ", SortBy: "title"})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	require.Equal(t, 2, filtered.Summary.Total)

	signIn(t, state, "s1")
	list, err = svc.List(ctx, dto.AssignmentListQuery{SortBy: "title"})
	require.NoError(t, err)
	require.Equal(t, "Essay", list.Items[0].Title)
	require.Equal(t, "g1", list.Items[1].ActorKey)

	_, err = svc.List(ctx, dto.AssignmentListQuery{SortBy: "random"})
	require.Error(t, err)
}

func TestAssignmentListForAdmin(t *testing.T) {
	state, _, _ := newTestState(t, groupFixture())
	svc := NewAssignmentService(state, zerolog.Nop())

	signIn(t, state, "t2")
	list, err := svc.List(context.Background(), dto.AssignmentListQuery{})
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	require.Nil(t, list.Summary)
	require.Nil(t, list.Items[0].Status)
}

func TestAssignmentCreateUsesCourseRoster(t *testing.T) {
	state, repo, publisher := newTestState(t, groupFixture())
	svc := NewAssignmentService(state, zerolog.Nop())
	ctx := context.Background()

	signIn(t, state, "s1")
	_, err := svc.Create(ctx, dto.AssignmentDraft{CourseID: "c1", Title: "Quiz", DueDate: "2025-11-30"})
	require.ErrorIs(t, err, ErrUnauthorized)

	signIn(t, state, "t1")
	_, err = svc.Create(ctx, dto.AssignmentDraft{CourseID: "c9", Title: "Quiz", DueDate: "2025-11-30"})
	require.ErrorIs(t, err, ErrCourseNotFound)

	view, err := svc.Create(ctx, dto.AssignmentDraft{CourseID: "c1", Title: "Quiz", DueDate: "2025-11-30", StudentIDs: []string{"t2"}})
	require.NoError(t, err)
	require.Equal(t, []string{"s1", "s2", "s3"}, view.AssignedTo)
	require.Equal(t, "t1", view.CreatedBy)
	require.Len(t, state.Assignments(), 4)

	_, err = svc.Create(ctx, dto.AssignmentDraft{CourseID: "c1", Title: "Team", DueDate: "2025-11-30", SubmissionType: "group", AssignedGroupIDs: []string{"ghost"}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindNoGroupSelected, verr.Kind)

	group, err := svc.Create(ctx, dto.AssignmentDraft{CourseID: "c1", Title: "Team", DueDate: "2025-11-30", SubmissionType: "group", AssignedGroupIDs: []string{"g1", "ghost"}})
	require.NoError(t, err)
	require.Equal(t, []string{"g1"}, group.AssignedTo)

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored.Assignments, 5)
	requireInvariants(t, stored.Assignments)
	require.Contains(t, publisher.types(), EventAssignmentCreated)
}

func TestAssignmentUpdateOnlyByCreator(t *testing.T) {
	state, _, _ := newTestState(t, groupFixture())
	svc := NewAssignmentService(state, zerolog.Nop())
	ctx := context.Background()
	title := "Essay (revised)"

	signIn(t, state, "t2")
	_, err := svc.Update(ctx, "a1", dto.AssignmentUpdateRequest{Title: &title})
	require.ErrorIs(t, err, ErrUnauthorized)

	signIn(t, state, "t1")
	view, err := svc.Update(ctx, "a1", dto.AssignmentUpdateRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, title, view.Title)

	_, err = svc.Update(ctx, "zz", dto.AssignmentUpdateRequest{Title: &title})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestAssignmentCreateGroupByInstructor(t *testing.T) {
	state, _, _ := newTestState(t, groupFixture())
	svc := NewAssignmentService(state, zerolog.Nop())
	ctx := context.Background()

	signIn(t, state, "s3")
	_, err := svc.CreateGroup(ctx, "c1", dto.GroupCreateRequest{Name: "Solo", LeaderID: "s3"})
	require.ErrorIs(t, err, ErrUnauthorized)

	signIn(t, state, "t1")
	group, err := svc.CreateGroup(ctx, "c1", dto.GroupCreateRequest{Name: "Solo", LeaderID: "s3"})
	require.NoError(t, err)
	require.Equal(t, "s3", group.LeaderID)
	require.Len(t, state.Groups(), 2)
}
