package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SubmissionType selects the assignee key space of an assignment.
type SubmissionType string

const (
	// SubmissionTypeIndividual keys submissions by student id.
	SubmissionTypeIndividual SubmissionType = "individual"
	// SubmissionTypeGroup keys submissions by group id.
	SubmissionTypeGroup SubmissionType = "group"
)

// dueDateLayouts are the accepted due date encodings, most specific first.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Assignment is a unit of work handed to students or groups.
type Assignment struct {
	ID             string                `json:"id"`
	CourseID       string                `json:"courseId,omitempty"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	DueDate        string                `json:"dueDate"`
	DriveLink      string                `json:"driveLink"`
	CreatedBy      string                `json:"createdBy"`
	SubmissionType SubmissionType        `json:"submissionType,omitempty"`
	AssignedTo     []string              `json:"assignedTo"`
	Submissions    map[string]Submission `json:"submissions"`
}

// Kind returns the submission type, treating a missing value as individual.
func (a Assignment) Kind() SubmissionType {
	if a.SubmissionType == SubmissionTypeGroup {
		return SubmissionTypeGroup
	}
	return SubmissionTypeIndividual
}

// IsAssigned reports whether key is one of the assignees.
func (a Assignment) IsAssigned(key string) bool {
	for _, assignee := range a.AssignedTo {
		if assignee == key {
			return true
		}
	}
	return false
}

// SubmissionFor returns the record for key, or an unsubmitted record when absent.
func (a Assignment) SubmissionFor(key string) Submission {
	if sub, ok := a.Submissions[key]; ok {
		return sub
	}
	return Submission{}
}

// Due parses the due date.
func (a Assignment) Due() (time.Time, error) {
	return ParseDueDate(a.DueDate)
}

// SubmittedPercent returns the rounded share of assignees that have submitted.
func (a Assignment) SubmittedPercent() int {
	total := len(a.AssignedTo)
	if total == 0 {
		return 0
	}

	done := 0
	for _, key := range a.AssignedTo {
		if a.Submissions[key].Done() {
			done++
		}
	}

	return int(math.Round(float64(done) / float64(total) * 100))
}

// Clone returns a deep copy so callers can derive a new snapshot without aliasing.
func (a Assignment) Clone() Assignment {
	out := a
	if a.AssignedTo != nil {
		out.AssignedTo = append([]string(nil), a.AssignedTo...)
	}
	if a.Submissions != nil {
		out.Submissions = make(map[string]Submission, len(a.Submissions))
		for key, sub := range a.Submissions {
			out.Submissions[key] = sub.Clone()
		}
	}
	return out
}

// CheckInvariants verifies that the submissions map mirrors assignedTo and that
// every record is internally consistent.
func (a Assignment) CheckInvariants() error {
	if len(a.Submissions) != len(a.AssignedTo) {
		return fmt.Errorf("assignment %s: %d submissions for %d assignees", a.ID, len(a.Submissions), len(a.AssignedTo))
	}
	for _, key := range a.AssignedTo {
		sub, ok := a.Submissions[key]
		if !ok {
			return fmt.Errorf("assignment %s: assignee %s has no submission", a.ID, key)
		}
		if err := sub.Validate(); err != nil {
			return fmt.Errorf("assignment %s: assignee %s: %w", a.ID, key, err)
		}
	}
	return nil
}

// ParseDueDate accepts RFC 3339 instants as well as the date-only and
// datetime-local forms produced by date pickers. Zone-less values are UTC.
func ParseDueDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("due date is empty")
	}

	for _, layout := range dueDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised due date %q", value)
}

// CloneAssignments copies a collection element by element.
func CloneAssignments(assignments []Assignment) []Assignment {
	out := make([]Assignment, len(assignments))
	for i, assignment := range assignments {
		out[i] = assignment.Clone()
	}
	return out
}
