package models

import (
	"errors"
	"time"
)

// Submission records whether an assignee has handed in their work. Records
// written by older versions may carry Acknowledged instead of Submitted.
type Submission struct {
	Submitted    bool       `json:"submitted"`
	Acknowledged bool       `json:"acknowledged,omitempty"`
	Timestamp    *time.Time `json:"timestamp"`
	SubmittedBy  *string    `json:"submittedBy"`
	Extra        Extra      `json:"-"`
}

type submissionFields Submission

// UnmarshalJSON keeps undeclared fields in Extra.
func (s *Submission) UnmarshalJSON(data []byte) error {
	var fields submissionFields
	extra, err := decodeWithExtra(data, &fields)
	if err != nil {
		return err
	}
	*s = Submission(fields)
	s.Extra = extra
	return nil
}

// MarshalJSON writes Extra back next to the declared fields.
func (s Submission) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(submissionFields(s), s.Extra)
}

// Done reports whether the record counts toward progress.
func (s Submission) Done() bool {
	return s.Submitted || s.Acknowledged
}

// NewPendingSubmission returns the record every assignee starts with.
func NewPendingSubmission() Submission {
	return Submission{}
}

// NewSubmittedRecord returns a submitted record stamped at the given instant.
func NewSubmittedRecord(by string, at time.Time) Submission {
	stamp := at.UTC()
	actor := by
	return Submission{Submitted: true, Timestamp: &stamp, SubmittedBy: &actor}
}

// Validate enforces the submitted/timestamp pairing.
func (s Submission) Validate() error {
	if !s.Submitted {
		if s.Acknowledged {
			return nil
		}
		if s.Timestamp != nil || s.SubmittedBy != nil {
			return errors.New("unsubmitted record carries a timestamp or submitter")
		}
		return nil
	}
	if s.Timestamp == nil || s.Timestamp.IsZero() {
		return errors.New("submitted record has no timestamp")
	}
	return nil
}

// Clone copies the pointer fields.
func (s Submission) Clone() Submission {
	out := Submission{Submitted: s.Submitted, Acknowledged: s.Acknowledged, Extra: s.Extra.Clone()}
	if s.Timestamp != nil {
		stamp := *s.Timestamp
		out.Timestamp = &stamp
	}
	if s.SubmittedBy != nil {
		by := *s.SubmittedBy
		out.SubmittedBy = &by
	}
	return out
}
