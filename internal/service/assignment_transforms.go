package service

import (
	"errors"
	"html"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/assignment-tracker/internal/dto"
	"github.com/noah-isme/assignment-tracker/internal/models"
)

// The functions in this file never modify their input collection. Each one
// returns a freshly built slice so a caller can install it as the next snapshot.

var (
	draftValidator = validator.New(validator.WithRequiredStructEnabled())
	textPolicy     = bluemonday.StrictPolicy()
)

// MarkSubmitted flips the record for actorKey to submitted at the given instant.
// Unknown assignment ids or keys leave the collection unchanged.
func MarkSubmitted(assignments []models.Assignment, assignmentID, actorKey, actorUserID string, at time.Time) []models.Assignment {
	return replaceSubmission(assignments, assignmentID, actorKey, models.NewSubmittedRecord(actorUserID, at))
}

// UnmarkSubmitted resets the record for actorKey. Unknown ids or keys are a no-op.
func UnmarkSubmitted(assignments []models.Assignment, assignmentID, actorKey string) []models.Assignment {
	return replaceSubmission(assignments, assignmentID, actorKey, models.NewPendingSubmission())
}

func replaceSubmission(assignments []models.Assignment, assignmentID, key string, record models.Submission) []models.Assignment {
	next := make([]models.Assignment, len(assignments))
	for i, assignment := range assignments {
		if assignment.ID != assignmentID {
			next[i] = assignment
			continue
		}
		if _, ok := assignment.Submissions[key]; !ok {
			next[i] = assignment
			continue
		}

		updated := assignment.Clone()
		updated.Submissions[key] = record
		next[i] = updated
	}
	return next
}

// CreateAssignment validates draft and appends the new assignment. Every
// assignee receives an unsubmitted record.
func CreateAssignment(assignments []models.Assignment, draft dto.AssignmentDraft, createdBy string) ([]models.Assignment, models.Assignment, error) {
	draft.Title = cleanText(draft.Title)
	draft.Description = cleanText(draft.Description)
	draft.DueDate = strings.TrimSpace(draft.DueDate)
	draft.SubmissionType = strings.ToLower(strings.TrimSpace(draft.SubmissionType))

	if err := validateDraft(draft); err != nil {
		return assignments, models.Assignment{}, err
	}

	due, err := models.ParseDueDate(draft.DueDate)
	if err != nil {
		return assignments, models.Assignment{}, newValidationError(KindMissingDueDate)
	}

	kind := models.SubmissionTypeIndividual
	assignees := uniqueNonEmpty(draft.StudentIDs)
	if draft.SubmissionType == string(models.SubmissionTypeGroup) {
		kind = models.SubmissionTypeGroup
		assignees = uniqueNonEmpty(draft.AssignedGroupIDs)
		if len(assignees) == 0 {
			return assignments, models.Assignment{}, newValidationError(KindNoGroupSelected)
		}
	}

	submissions := make(map[string]models.Submission, len(assignees))
	for _, key := range assignees {
		submissions[key] = models.NewPendingSubmission()
	}

	created := models.Assignment{
		ID:             newAssignmentID(draft.CourseID),
		CourseID:       strings.TrimSpace(draft.CourseID),
		Title:          draft.Title,
		Description:    draft.Description,
		DueDate:        due.Format(time.RFC3339),
		DriveLink:      strings.TrimSpace(draft.DriveLink),
		CreatedBy:      createdBy,
		SubmissionType: kind,
		AssignedTo:     assignees,
		Submissions:    submissions,
	}

	next := make([]models.Assignment, 0, len(assignments)+1)
	next = append(next, assignments...)
	next = append(next, created)

	return next, created.Clone(), nil
}

// UpdateAssignment edits the descriptive fields of one assignment. Assignees
// and submission records are left untouched.
func UpdateAssignment(assignments []models.Assignment, assignmentID string, payload dto.AssignmentUpdateRequest) ([]models.Assignment, models.Assignment, error) {
	index := indexOfAssignment(assignments, assignmentID)
	if index < 0 {
		return assignments, models.Assignment{}, ErrAssignmentNotFound
	}

	updated := assignments[index].Clone()
	if payload.Title != nil {
		title := cleanText(*payload.Title)
		if title == "" {
			return assignments, models.Assignment{}, newValidationError(KindMissingTitle)
		}
		updated.Title = title
	}
	if payload.Description != nil {
		updated.Description = cleanText(*payload.Description)
	}
	if payload.DueDate != nil {
		due, err := models.ParseDueDate(*payload.DueDate)
		if err != nil {
			return assignments, models.Assignment{}, newValidationError(KindMissingDueDate)
		}
		updated.DueDate = due.Format(time.RFC3339)
	}
	if payload.DriveLink != nil {
		updated.DriveLink = strings.TrimSpace(*payload.DriveLink)
	}

	next := make([]models.Assignment, len(assignments))
	copy(next, assignments)
	next[index] = updated

	return next, updated.Clone(), nil
}

// RemoveAssignment drops one assignment and reports where it was.
func RemoveAssignment(assignments []models.Assignment, assignmentID string) ([]models.Assignment, models.Assignment, int, error) {
	index := indexOfAssignment(assignments, assignmentID)
	if index < 0 {
		return assignments, models.Assignment{}, -1, ErrAssignmentNotFound
	}

	next := make([]models.Assignment, 0, len(assignments)-1)
	next = append(next, assignments[:index]...)
	next = append(next, assignments[index+1:]...)

	return next, assignments[index].Clone(), index, nil
}

// RestoreAssignment reinserts removed at index, clamped to the collection bounds.
func RestoreAssignment(assignments []models.Assignment, removed models.Assignment, index int) []models.Assignment {
	if index < 0 {
		index = 0
	}
	if index > len(assignments) {
		index = len(assignments)
	}

	next := make([]models.Assignment, 0, len(assignments)+1)
	next = append(next, assignments[:index]...)
	next = append(next, removed.Clone())
	next = append(next, assignments[index:]...)
	return next
}

// FindAssignment returns the assignment with the given id.
func FindAssignment(assignments []models.Assignment, assignmentID string) (models.Assignment, bool) {
	index := indexOfAssignment(assignments, assignmentID)
	if index < 0 {
		return models.Assignment{}, false
	}
	return assignments[index], true
}

func indexOfAssignment(assignments []models.Assignment, assignmentID string) int {
	for i, assignment := range assignments {
		if assignment.ID == assignmentID {
			return i
		}
	}
	return -1
}

func validateDraft(draft dto.AssignmentDraft) error {
	err := draftValidator.Struct(draft)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	failed := make(map[string]bool, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		failed[fieldErr.Field()] = true
	}

	switch {
	case failed["Title"]:
		return newValidationError(KindMissingTitle)
	case failed["DueDate"]:
		return newValidationError(KindMissingDueDate)
	default:
		return newValidationError(KindInvalidSubmissionType)
	}
}

// cleanText strips markup and surrounding whitespace from free text.
func cleanText(value string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(value)))
}

func newAssignmentID(courseID string) string {
	suffix := uuid.NewString()
	if courseID = strings.TrimSpace(courseID); courseID != "" {
		return courseID + "_a_" + suffix
	}
	return "a_" + suffix
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
