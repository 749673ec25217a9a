package dto

// PromptView is confirmation text for the presentation layer.
type PromptView struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// WorkflowView reports the submission workflow.
type WorkflowView struct {
	State        string      `json:"state"`
	AssignmentID string      `json:"assignmentId,omitempty"`
	ActorKey     string      `json:"actorKey,omitempty"`
	Action       string      `json:"action,omitempty"`
	Prompt       *PromptView `json:"prompt,omitempty"`
}

// NotificationView is the live undo affordance.
type NotificationView struct {
	Message      string `json:"message"`
	RemovedTitle string `json:"removedTitle"`
	AssignmentID string `json:"assignmentId"`
	ActionLabel  string `json:"actionLabel"`
}

// DeletionView reports the delete/undo protocol.
type DeletionView struct {
	State        string            `json:"state"`
	Prompt       *PromptView       `json:"prompt,omitempty"`
	Notification *NotificationView `json:"notification"`
}
