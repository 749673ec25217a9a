package service

import "github.com/noah-isme/assignment-tracker/internal/models"

// CanCreateAssignment allows admins and the instructor of the target course.
func CanCreateAssignment(user models.User, course *models.Course) bool {
	if user.IsAdmin() {
		return true
	}
	return course != nil && course.InstructorID != "" && course.InstructorID == user.ID
}

// CanManageAssignment allows only the admin who created the assignment to edit or delete it.
func CanManageAssignment(user models.User, assignment models.Assignment) bool {
	return user.IsAdmin() && assignment.CreatedBy == user.ID
}

// ResolveActorKey returns the submissions key user may flip on assignment.
// Individual slots belong to the assigned student. Group slots belong to the
// leader of an assigned group; other members are read-only.
func ResolveActorKey(user models.User, assignment models.Assignment, groups []models.Group) (string, error) {
	if !user.IsStudent() {
		return "", ErrUnauthorized
	}

	if assignment.Kind() == models.SubmissionTypeIndividual {
		if assignment.IsAssigned(user.ID) {
			return user.ID, nil
		}
		return "", ErrUnauthorized
	}

	group, ok := groupForAssignment(user.ID, assignment, groups)
	if !ok || !group.IsLeader(user.ID) {
		return "", ErrUnauthorized
	}
	return group.ID, nil
}

// viewerKey returns the key whose record a student sees on assignment,
// whether or not they may change it.
func viewerKey(user models.User, assignment models.Assignment, groups []models.Group) (string, bool) {
	if assignment.Kind() == models.SubmissionTypeIndividual {
		return user.ID, assignment.IsAssigned(user.ID)
	}
	group, ok := groupForAssignment(user.ID, assignment, groups)
	if !ok {
		return "", false
	}
	return group.ID, true
}

func groupForAssignment(userID string, assignment models.Assignment, groups []models.Group) (models.Group, bool) {
	for _, key := range assignment.AssignedTo {
		group, ok := models.FindGroup(groups, key)
		if ok && group.HasMember(userID) {
			return group, true
		}
	}
	return models.Group{}, false
}
