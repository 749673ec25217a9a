package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/assignment-tracker/internal/dto"
	"github.com/noah-isme/assignment-tracker/internal/models"
)

// CreateUser appends a new account and makes it the current user. Accounts
// default to the admin role.
func CreateUser(snapshot models.Snapshot, payload dto.SignupRequest) (models.Snapshot, models.User, error) {
	if err := draftValidator.Struct(payload); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			return snapshot, models.User{}, newValidationError(KindInvalidAccount)
		}
		return snapshot, models.User{}, err
	}

	suffix := uuid.NewString()
	fullName := cleanText(payload.FullName)
	username := strings.TrimSpace(payload.Username)
	if fullName == "" {
		fullName = username
	}
	if fullName == "" {
		fullName = "User"
	}
	if username == "" {
		username = "user" + suffix[:8]
	}

	role := models.RoleAdmin
	if payload.Role == string(models.RoleStudent) {
		role = models.RoleStudent
	}

	user := models.User{
		ID:          "u_" + suffix,
		DisplayName: fullName,
		FullName:    fullName,
		Username:    username,
		Email:       strings.TrimSpace(payload.Email),
		Role:        role,
		Password:    payload.Password,
	}

	next := snapshot.Clone()
	next.Users = append(next.Users, user)
	id := user.ID
	next.CurrentUserID = &id
	return next, user, nil
}

// DeleteUser removes an account and its memberships. Courses and groups drop
// the id; a group that loses its leader promotes its first remaining member
// and is dropped once empty. Individual slots of the user disappear from
// assignedTo and submissions together. Group slots and authored assignments
// stay.
func DeleteUser(snapshot models.Snapshot, userID string) (models.Snapshot, error) {
	if _, ok := models.FindUser(snapshot.Users, userID); !ok {
		return snapshot, ErrUserNotFound
	}

	next := snapshot.Clone()

	users := make([]models.User, 0, len(next.Users)-1)
	for _, user := range next.Users {
		if user.ID != userID {
			users = append(users, user)
		}
	}
	next.Users = users

	for i := range next.Courses {
		next.Courses[i].StudentIDs = withoutValue(next.Courses[i].StudentIDs, userID)
	}

	if next.Groups != nil {
		groups := make([]models.Group, 0, len(next.Groups))
		for _, group := range next.Groups {
			group.MemberIDs = withoutValue(group.MemberIDs, userID)
			if len(group.MemberIDs) == 0 {
				continue
			}
			if group.LeaderID == userID {
				group.LeaderID = group.MemberIDs[0]
			}
			groups = append(groups, group)
		}
		next.Groups = groups
	}

	for i, assignment := range next.Assignments {
		if assignment.Kind() != models.SubmissionTypeIndividual || !assignment.IsAssigned(userID) {
			continue
		}
		assignment.AssignedTo = withoutValue(assignment.AssignedTo, userID)
		delete(assignment.Submissions, userID)
		next.Assignments[i] = assignment
	}

	delete(next.PrefsByUser, userID)
	if next.CurrentUserID != nil && *next.CurrentUserID == userID {
		next.CurrentUserID = nil
	}
	return next, nil
}

// CreateGroup adds a group led by one of the course's students. The leader
// is its only member at first.
func CreateGroup(snapshot models.Snapshot, courseID string, payload dto.GroupCreateRequest) (models.Snapshot, models.Group, error) {
	course, ok := models.FindCourse(snapshot.Courses, courseID)
	if !ok {
		return snapshot, models.Group{}, ErrCourseNotFound
	}

	name := cleanText(payload.Name)
	if name == "" {
		return snapshot, models.Group{}, newValidationError(KindMissingGroupName)
	}
	leaderID := strings.TrimSpace(payload.LeaderID)
	if leaderID == "" || !course.HasStudent(leaderID) {
		return snapshot, models.Group{}, newValidationError(KindInvalidLeader)
	}

	group := models.Group{
		ID:        course.ID + "_g_" + uuid.NewString(),
		CourseID:  course.ID,
		Name:      name,
		LeaderID:  leaderID,
		MemberIDs: []string{leaderID},
	}

	next := snapshot.Clone()
	next.Groups = append(next.Groups, group)
	return next, group, nil
}

// MergePrefs overlays the provided fields onto userID's preferences.
func MergePrefs(snapshot models.Snapshot, userID string, payload dto.PrefsUpdateRequest) models.Snapshot {
	prefs := snapshot.PrefsFor(userID)
	if payload.Dark != nil {
		prefs.Dark = *payload.Dark
	}
	if payload.Layout != nil {
		prefs.Layout = models.Layout(*payload.Layout)
	}
	if payload.SortBy != nil {
		prefs.SortBy = *payload.SortBy
	}

	next := snapshot.Clone()
	next.PrefsByUser[userID] = prefs
	return next
}

func withoutValue(values []string, target string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value != target {
			out = append(out, value)
		}
	}
	return out
}
