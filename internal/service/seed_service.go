package service

import (
	"time"

	"github.com/noah-isme/assignment-tracker/internal/models"
)

const demoAdminID = "u_admin_1"

// DemoSnapshot returns the state a fresh install starts from: one instructor,
// two students, one course and two assignments.
func DemoSnapshot() models.Snapshot {
	submittedAt := time.Date(2025, time.October, 20, 12, 0, 0, 0, time.UTC)

	return models.Snapshot{
		Users: []models.User{
			{ID: demoAdminID, Name: "Prof. Ada Lovelace", Role: models.RoleAdmin, Password: models.DefaultPassword},
			{ID: "u_student_1", Name: "Alice Johnson", Role: models.RoleStudent, Password: models.DefaultPassword},
			{ID: "u_student_2", Name: "Bob Smith", Role: models.RoleStudent, Password: models.DefaultPassword},
		},
		Courses: []models.Course{
			{
				ID:           "c1",
				Title:        "Introduction to Computing",
				Code:         "CS101",
				Term:         "Fall 2025",
				InstructorID: demoAdminID,
				StudentIDs:   []string{"u_student_1", "u_student_2"},
			},
		},
		Groups: []models.Group{},
		Assignments: []models.Assignment{
			{
				ID:          "a1",
				Title:       "Essay: History of Computing",
				Description: "Write a 1500-word essay on a computing pioneer.",
				DueDate:     "2025-11-10",
				DriveLink:   "https://drive.example.com/essay-a1",
				CreatedBy:   demoAdminID,
				AssignedTo:  []string{"u_student_1", "u_student_2"},
				Submissions: map[string]models.Submission{
					"u_student_1": models.NewPendingSubmission(),
					"u_student_2": {Submitted: true, Timestamp: &submittedAt},
				},
			},
			{
				ID:          "a2",
				Title:       "Project: Simple Web App",
				Description: "Build a small React app and deploy to Netlify or Vercel.",
				DueDate:     "2025-11-20",
				DriveLink:   "https://drive.example.com/project-a2",
				CreatedBy:   demoAdminID,
				AssignedTo:  []string{"u_student_1"},
				Submissions: map[string]models.Submission{
					"u_student_1": models.NewPendingSubmission(),
				},
			},
		},
		PrefsByUser: map[string]models.Prefs{},
	}
}
