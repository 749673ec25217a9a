package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assignment-tracker/internal/dto"
	"github.com/noah-isme/assignment-tracker/internal/models"
)

func singleAssignment() []models.Assignment {
	return []models.Assignment{{
		ID:          "a1",
		Title:       "Essay",
		DueDate:     "2025-11-10",
		CreatedBy:   "t1",
		AssignedTo:  []string{"s1"},
		Submissions: map[string]models.Submission{"s1": models.NewPendingSubmission()},
	}}
}

func TestMarkSubmittedIsIdempotentOnFlag(t *testing.T) {
	original := singleAssignment()
	first := MarkSubmitted(original, "a1", "s1", "s1", fixedNow)
	second := MarkSubmitted(first, "a1", "s1", "s1", fixedNow.Add(time.Minute))

	once := first[0].Submissions["s1"]
	twice := second[0].Submissions["s1"]
	require.True(t, once.Submitted)
	require.Equal(t, once.Submitted, twice.Submitted)
	require.Equal(t, *once.SubmittedBy, *twice.SubmittedBy)
	require.True(t, twice.Timestamp.After(*once.Timestamp))

	// the input is never touched
	require.False(t, original[0].Submissions["s1"].Submitted)
	require.False(t, first[0].Submissions["s1"].Timestamp.Equal(*twice.Timestamp))
}

func TestMarkAndUnmarkIgnoreUnknownTargets(t *testing.T) {
	original := singleAssignment()

	require.Equal(t, original, MarkSubmitted(original, "missing", "s1", "s1", fixedNow))
	require.Equal(t, original, MarkSubmitted(original, "a1", "s9", "s9", fixedNow))
	require.Equal(t, original, UnmarkSubmitted(original, "a1", "s9"))
	_, exists := MarkSubmitted(original, "a1", "s9", "s9", fixedNow)[0].Submissions["s9"]
	require.False(t, exists)
}

func TestUnmarkSubmittedResetsRecord(t *testing.T) {
	marked := MarkSubmitted(singleAssignment(), "a1", "s1", "s1", fixedNow)
	unmarked := UnmarkSubmitted(marked, "a1", "s1")

	require.Equal(t, models.Submission{}, unmarked[0].Submissions["s1"])
	require.True(t, marked[0].Submissions["s1"].Submitted)
}

func TestCreateAssignmentValidation(t *testing.T) {
	cases := []struct {
		name  string
		draft dto.AssignmentDraft
		kind  ValidationKind
	}{
		{"blank title", dto.AssignmentDraft{Title: "   ", DueDate: "2025-11-10"}, KindMissingTitle},
		{"markup only title", dto.AssignmentDraft{Title: "<b></b>", DueDate: "2025-11-10"}, KindMissingTitle},
		{"missing due date", dto.AssignmentDraft{Title: "Essay"}, KindMissingDueDate},
		{"unparseable due date", dto.AssignmentDraft{Title: "Essay", DueDate: "next tuesday"}, KindMissingDueDate},
		{"group without groups", dto.AssignmentDraft{Title: "Essay", DueDate: "2025-11-10", SubmissionType: "group", AssignedGroupIDs: []string{" "}}, KindNoGroupSelected},
		{"unknown type", dto.AssignmentDraft{Title: "Essay", DueDate: "2025-11-10", SubmissionType: "pairs"}, KindInvalidSubmissionType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			original := singleAssignment()
			next, _, err := CreateAssignment(original, tc.draft, "t1")

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.kind, verr.Kind)
			require.Equal(t, original, next)
		})
	}
}

func TestCreateAssignmentAppendsWithPendingRecords(t *testing.T) {
	original := singleAssignment()

	next, created, err := CreateAssignment(original, dto.AssignmentDraft{
		CourseID:    "c1",
		Title:       "  <script>x</script>Lab Report ",
		Description: "Measure <i>g</i>",
		DueDate:     "2025-11-15T17:00",
		StudentIDs:  []string{"s1", "s2", "s1", ""},
	}, "t1")
	require.NoError(t, err)

	require.Len(t, original, 1)
	require.Len(t, next, 2)
	require.Equal(t, created.ID, next[1].ID)
	require.Regexp(t, `^c1_a_`, created.ID)
	require.Equal(t, "Lab Report", created.Title)
	require.Equal(t, "Measure g", created.Description)
	require.Equal(t, "2025-11-15T17:00:00Z", created.DueDate)
	require.Equal(t, models.SubmissionTypeIndividual, created.SubmissionType)
	require.Equal(t, []string{"s1", "s2"}, created.AssignedTo)
	require.Equal(t, models.Submission{}, created.Submissions["s2"])
	requireInvariants(t, next)

	_, again, err := CreateAssignment(next, dto.AssignmentDraft{Title: "Lab Report", DueDate: "2025-11-15"}, "t1")
	require.NoError(t, err)
	require.NotEqual(t, created.ID, again.ID)
	require.Regexp(t, `^a_`, again.ID)
}

func TestCreateGroupAssignmentKeysByGroup(t *testing.T) {
	_, created, err := CreateAssignment(nil, dto.AssignmentDraft{
		Title:            "Project",
		DueDate:          "2025-11-15",
		SubmissionType:   "Group",
		AssignedGroupIDs: []string{"g1", "g2"},
		StudentIDs:       []string{"s1"},
	}, "t1")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionTypeGroup, created.SubmissionType)
	require.Equal(t, []string{"g1", "g2"}, created.AssignedTo)
	require.Contains(t, created.Submissions, "g1")
	require.NotContains(t, created.Submissions, "s1")
}

func TestRemoveAndRestoreRoundTrip(t *testing.T) {
	fixture := groupFixture().Assignments

	for index, target := range fixture {
		remaining, removed, at, err := RemoveAssignment(fixture, target.ID)
		require.NoError(t, err)
		require.Equal(t, index, at)
		require.Len(t, remaining, len(fixture)-1)
		require.Len(t, fixture, 3)

		require.Equal(t, fixture, RestoreAssignment(remaining, removed, at))
	}

	_, _, _, err := RemoveAssignment(fixture, "missing")
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestRestoreAssignmentClampsIndex(t *testing.T) {
	fixture := groupFixture().Assignments
	removed := models.Assignment{ID: "ax", Title: "Extra"}

	tail := RestoreAssignment(fixture, removed, 99)
	require.Equal(t, "ax", tail[len(tail)-1].ID)

	head := RestoreAssignment(fixture, removed, -4)
	require.Equal(t, "ax", head[0].ID)
	require.Len(t, fixture, 3)
}

func TestTransformSequencesPreserveInvariants(t *testing.T) {
	assignments := groupFixture().Assignments
	var err error

	assignments, created, err := CreateAssignment(assignments, dto.AssignmentDraft{Title: "Quiz", DueDate: "2025-10-30", StudentIDs: []string{"s1", "s2"}}, "t1")
	require.NoError(t, err)
	requireInvariants(t, assignments)

	assignments = MarkSubmitted(assignments, created.ID, "s2", "s2", fixedNow)
	assignments = MarkSubmitted(assignments, "a2", "g1", "s1", fixedNow)
	assignments = UnmarkSubmitted(assignments, "a2", "g1")
	requireInvariants(t, assignments)

	remaining, removed, index, err := RemoveAssignment(assignments, "a1")
	require.NoError(t, err)
	requireInvariants(t, remaining)

	remaining = MarkSubmitted(remaining, created.ID, "s1", "s1", fixedNow)
	assignments = RestoreAssignment(remaining, removed, index)
	requireInvariants(t, assignments)
	require.Equal(t, "a1", assignments[0].ID)
	require.Equal(t, 100, assignments[len(assignments)-1].SubmittedPercent())
}

func TestUpdateAssignmentKeepsSubmissions(t *testing.T) {
	original := MarkSubmitted(singleAssignment(), "a1", "s1", "s1", fixedNow)
	title := "Essay v2"
	due := "2025-12-01"

	next, updated, err := UpdateAssignment(original, "a1", dto.AssignmentUpdateRequest{Title: &title, DueDate: &due})
	require.NoError(t, err)
	require.Equal(t, "Essay v2", updated.Title)
	require.Equal(t, "2025-12-01T00:00:00Z", next[0].DueDate)
	require.True(t, next[0].Submissions["s1"].Submitted)
	require.Equal(t, "Essay", original[0].Title)

	blank := " "
	_, _, err = UpdateAssignment(original, "a1", dto.AssignmentUpdateRequest{Title: &blank})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindMissingTitle, verr.Kind)

	_, _, err = UpdateAssignment(original, "nope", dto.AssignmentUpdateRequest{})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}
