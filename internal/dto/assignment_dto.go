package dto

import (
	"time"

	"github.com/noah-isme/assignment-tracker/internal/models"
)

// AssignmentDraft describes the payload for creating a new assignment.
type AssignmentDraft struct {
	CourseID         string   `json:"courseId"`
	Title            string   `json:"title" validate:"required"`
	Description      string   `json:"description"`
	DueDate          string   `json:"dueDate" validate:"required"`
	DriveLink        string   `json:"driveLink"`
	SubmissionType   string   `json:"submissionType" validate:"omitempty,oneof=individual group"`
	AssignedGroupIDs []string `json:"assignedGroupIds"`
	// StudentIDs is the roster individual assignments are handed to. It is
	// filled from the course, never from the request body.
	StudentIDs []string `json:"-"`
}

// AssignmentUpdateRequest describes the payload for editing an assignment.
type AssignmentUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	DriveLink   *string `json:"driveLink"`
}

// AssignmentListQuery filters and orders a listing.
type AssignmentListQuery struct {
	Query  string `query:"q"`
	SortBy string `query:"sort" validate:"omitempty,oneof=due dueDate title"`
}

// SubmissionView is the serialized form of one submission record.
type SubmissionView struct {
	Submitted   bool       `json:"submitted"`
	Timestamp   *time.Time `json:"timestamp"`
	SubmittedBy *string    `json:"submittedBy"`
}

// AssignmentView is the serialized representation returned to the presentation layer.
type AssignmentView struct {
	ID               string                    `json:"id"`
	CourseID         string                    `json:"courseId,omitempty"`
	Title            string                    `json:"title"`
	Description      string                    `json:"description"`
	DueDate          string                    `json:"dueDate"`
	DriveLink        string                    `json:"driveLink"`
	CreatedBy        string                    `json:"createdBy"`
	SubmissionType   models.SubmissionType     `json:"submissionType"`
	AssignedTo       []string                  `json:"assignedTo"`
	Submissions      map[string]SubmissionView `json:"submissions"`
	SubmittedPercent int                       `json:"submittedPercent"`
	// ActorKey and Status are set for student listings only.
	ActorKey string          `json:"actorKey,omitempty"`
	Status   *SubmissionView `json:"status,omitempty"`
}

// StudentSummary counts a student's submitted assignments.
type StudentSummary struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// AssignmentListResponse is returned by the listing endpoint.
type AssignmentListResponse struct {
	Items   []AssignmentView `json:"items"`
	Summary *StudentSummary  `json:"summary,omitempty"`
}

// NewSubmissionView converts a model into a DTO.
func NewSubmissionView(sub models.Submission) SubmissionView {
	return SubmissionView{Submitted: sub.Submitted, Timestamp: sub.Timestamp, SubmittedBy: sub.SubmittedBy}
}

// NewAssignmentView converts a model into a DTO.
func NewAssignmentView(model models.Assignment) AssignmentView {
	submissions := make(map[string]SubmissionView, len(model.Submissions))
	for key, sub := range model.Submissions {
		submissions[key] = NewSubmissionView(sub)
	}

	assignedTo := model.AssignedTo
	if assignedTo == nil {
		assignedTo = []string{}
	}

	return AssignmentView{
		ID:               model.ID,
		CourseID:         model.CourseID,
		Title:            model.Title,
		Description:      model.Description,
		DueDate:          model.DueDate,
		DriveLink:        model.DriveLink,
		CreatedBy:        model.CreatedBy,
		SubmissionType:   model.Kind(),
		AssignedTo:       assignedTo,
		Submissions:      submissions,
		SubmittedPercent: model.SubmittedPercent(),
	}
}

// NewAssignmentViewSlice converts a slice of models into DTOs.
func NewAssignmentViewSlice(assignments []models.Assignment) []AssignmentView {
	views := make([]AssignmentView, 0, len(assignments))
	for _, assignment := range assignments {
		views = append(views, NewAssignmentView(assignment))
	}
	return views
}
