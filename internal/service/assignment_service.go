package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/assignment-tracker/internal/dto"
	"github.com/noah-isme/assignment-tracker/internal/models"
)

// AssignmentService exposes assignment use cases for the signed-in user.
type AssignmentService interface {
	List(ctx context.Context, query dto.AssignmentListQuery) (dto.AssignmentListResponse, error)
	Create(ctx context.Context, payload dto.AssignmentDraft) (dto.AssignmentView, error)
	Update(ctx context.Context, id string, payload dto.AssignmentUpdateRequest) (dto.AssignmentView, error)
	CreateGroup(ctx context.Context, courseID string, payload dto.GroupCreateRequest) (models.Group, error)
}

type assignmentService struct {
	state  *AppState
	logger zerolog.Logger
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(state *AppState, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		state:  state,
		logger: logger.With().Str("component", "assignment_service").Logger(),
	}
}

// List returns every assignment to admins. Students only see what is assigned
// to them, directly or through a group, together with a progress summary.
func (s *assignmentService) List(ctx context.Context, query dto.AssignmentListQuery) (dto.AssignmentListResponse, error) {
	if err := draftValidator.Struct(query); err != nil {
		return dto.AssignmentListResponse{}, err
	}

	snapshot := s.state.Snapshot()
	user, ok := snapshot.CurrentUser()
	if !ok {
		return dto.AssignmentListResponse{}, ErrNotSignedIn
	}

	sortBy := query.SortBy
	if sortBy == "" {
		sortBy = snapshot.PrefsFor(user.ID).SortBy
	}
	visible := filterByTitle(snapshot.Assignments, query.Query)
	sortAssignments(visible, sortBy)

	if !user.IsStudent() {
		return dto.AssignmentListResponse{Items: dto.NewAssignmentViewSlice(visible)}, nil
	}

	items := make([]dto.AssignmentView, 0, len(visible))
	for _, assignment := range visible {
		key, ok := viewerKey(user, assignment, snapshot.Groups)
		if !ok {
			continue
		}
		view := dto.NewAssignmentView(assignment)
		status := dto.NewSubmissionView(assignment.SubmissionFor(key))
		view.Status = &status
		if actorKey, err := ResolveActorKey(user, assignment, snapshot.Groups); err == nil {
			view.ActorKey = actorKey
		}
		items = append(items, view)
	}

	summary := studentSummary(user, snapshot.Assignments, snapshot.Groups)
	return dto.AssignmentListResponse{Items: items, Summary: &summary}, nil
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentDraft) (dto.AssignmentView, error) {
	var created models.Assignment
	_, err := s.state.Update(ctx, "assignment.create", func(current models.Snapshot) (models.Snapshot, error) {
		user, ok := current.CurrentUser()
		if !ok {
			return current, ErrNotSignedIn
		}

		var course *models.Course
		if courseID := strings.TrimSpace(payload.CourseID); courseID != "" {
			found, ok := models.FindCourse(current.Courses, courseID)
			if !ok {
				return current, ErrCourseNotFound
			}
			course = &found
		}
		if !CanCreateAssignment(user, course) {
			return current, ErrUnauthorized
		}

		draft := payload
		draft.StudentIDs = rosterFor(current, course)
		draft.AssignedGroupIDs = knownGroups(current.Groups, course, payload.AssignedGroupIDs)

		next, assignment, err := CreateAssignment(current.Assignments, draft, user.ID)
		if err != nil {
			return current, err
		}
		created = assignment
		current.Assignments = next
		return current, nil
	})
	if err != nil && !IsPersistenceWarning(err) {
		return dto.AssignmentView{}, err
	}

	s.logger.Info().Str("assignment_id", created.ID).Int("assignees", len(created.AssignedTo)).Msg("assignment created")
	s.state.Record(ctx, Event{Type: EventAssignmentCreated, ActorID: created.CreatedBy, AssignmentID: created.ID})
	return dto.NewAssignmentView(created), err
}

func (s *assignmentService) Update(ctx context.Context, id string, payload dto.AssignmentUpdateRequest) (dto.AssignmentView, error) {
	var (
		updated models.Assignment
		actorID string
	)
	_, err := s.state.Update(ctx, "assignment.update", func(current models.Snapshot) (models.Snapshot, error) {
		user, ok := current.CurrentUser()
		if !ok {
			return current, ErrNotSignedIn
		}
		existing, ok := FindAssignment(current.Assignments, id)
		if !ok {
			return current, ErrAssignmentNotFound
		}
		if !CanManageAssignment(user, existing) {
			return current, ErrUnauthorized
		}

		next, assignment, err := UpdateAssignment(current.Assignments, id, payload)
		if err != nil {
			return current, err
		}
		updated, actorID = assignment, user.ID
		current.Assignments = next
		return current, nil
	})
	if err != nil && !IsPersistenceWarning(err) {
		return dto.AssignmentView{}, err
	}

	s.logger.Info().Str("assignment_id", id).Msg("assignment updated")
	s.state.Record(ctx, Event{Type: EventAssignmentUpdated, ActorID: actorID, AssignmentID: id})
	return dto.NewAssignmentView(updated), err
}

func (s *assignmentService) CreateGroup(ctx context.Context, courseID string, payload dto.GroupCreateRequest) (models.Group, error) {
	var created models.Group
	_, err := s.state.Update(ctx, "group.create", func(current models.Snapshot) (models.Snapshot, error) {
		user, ok := current.CurrentUser()
		if !ok {
			return current, ErrNotSignedIn
		}
		course, ok := models.FindCourse(current.Courses, courseID)
		if !ok {
			return current, ErrCourseNotFound
		}
		if !CanCreateAssignment(user, &course) {
			return current, ErrUnauthorized
		}

		next, group, err := CreateGroup(current, courseID, payload)
		if err != nil {
			return current, err
		}
		created = group
		return next, nil
	})
	if err != nil && !IsPersistenceWarning(err) {
		return models.Group{}, err
	}

	s.logger.Info().Str("group_id", created.ID).Str("course_id", courseID).Msg("group created")
	return created, err
}

// studentSummary counts submitted records over everything assigned to user,
// ignoring any listing filter.
func studentSummary(user models.User, assignments []models.Assignment, groups []models.Group) dto.StudentSummary {
	summary := dto.StudentSummary{}
	for _, assignment := range assignments {
		key, ok := viewerKey(user, assignment, groups)
		if !ok {
			continue
		}
		summary.Total++
		if assignment.SubmissionFor(key).Done() {
			summary.Completed++
		}
	}
	if summary.Total > 0 {
		summary.Percent = int(math.Round(float64(summary.Completed) / float64(summary.Total) * 100))
	}
	return summary
}

// rosterFor returns the students an individual assignment goes to: the
// course roster, or every student when no course is given.
func rosterFor(snapshot models.Snapshot, course *models.Course) []string {
	if course != nil {
		return append([]string(nil), course.StudentIDs...)
	}
	var ids []string
	for _, user := range snapshot.Users {
		if user.IsStudent() {
			ids = append(ids, user.ID)
		}
	}
	return ids
}

// knownGroups drops ids that do not name a group of the course.
func knownGroups(groups []models.Group, course *models.Course, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		group, ok := models.FindGroup(groups, strings.TrimSpace(id))
		if !ok {
			continue
		}
		if course != nil && group.CourseID != course.ID {
			continue
		}
		out = append(out, group.ID)
	}
	return out
}

func filterByTitle(assignments []models.Assignment, query string) []models.Assignment {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Assignment, 0, len(assignments))
	for _, assignment := range assignments {
		if needle == "" || strings.Contains(strings.ToLower(assignment.Title), needle) {
			out = append(out, assignment)
		}
	}
	return out
}

// sortAssignments orders by title or by due date. Unparseable due dates sort last.
func sortAssignments(assignments []models.Assignment, sortBy string) {
	if sortBy == "title" {
		sort.SliceStable(assignments, func(i, j int) bool {
			return strings.ToLower(assignments[i].Title) < strings.ToLower(assignments[j].Title)
		})
		return
	}

	due := func(a models.Assignment) (time.Time, bool) {
		parsed, err := a.Due()
		return parsed, err == nil
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		left, lok := due(assignments[i])
		right, rok := due(assignments[j])
		if lok != rok {
			return lok
		}
		return left.Before(right)
	})
}
