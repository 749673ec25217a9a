package models

// Course groups students under one instructor.
type Course struct {
	ID           string   `json:"id"`
	Title        string   `json:"title,omitempty"`
	Code         string   `json:"code,omitempty"`
	Term         string   `json:"term,omitempty"`
	InstructorID string   `json:"instructorId"`
	StudentIDs   []string `json:"studentIds"`
}

// HasStudent reports whether userID is enrolled.
func (c Course) HasStudent(userID string) bool {
	return containsString(c.StudentIDs, userID)
}

// FindCourse returns the course with the given id.
func FindCourse(courses []Course, id string) (Course, bool) {
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
