package models

// Layout is the preferred assignment list presentation.
type Layout string

const (
	LayoutGrid Layout = "grid"
	LayoutList Layout = "list"
)

// Prefs are per-user presentation settings.
type Prefs struct {
	Dark   bool   `json:"dark"`
	Layout Layout `json:"layout"`
	SortBy string `json:"sortBy"`
}

// DefaultPrefs returns the settings used before a user changes anything.
func DefaultPrefs() Prefs {
	return Prefs{Dark: false, Layout: LayoutGrid, SortBy: "dueDate"}
}

// Snapshot is the whole persisted application state.
type Snapshot struct {
	Users         []User           `json:"users"`
	Assignments   []Assignment     `json:"assignments"`
	Courses       []Course         `json:"courses,omitempty"`
	Groups        []Group          `json:"groups,omitempty"`
	CurrentUserID *string          `json:"currentUserId"`
	PrefsByUser   map[string]Prefs `json:"prefsByUser"`
}

// CurrentUser resolves CurrentUserID against Users.
func (s Snapshot) CurrentUser() (User, bool) {
	if s.CurrentUserID == nil {
		return User{}, false
	}
	return FindUser(s.Users, *s.CurrentUserID)
}

// PrefsFor returns the stored preferences for userID or the defaults.
func (s Snapshot) PrefsFor(userID string) Prefs {
	if prefs, ok := s.PrefsByUser[userID]; ok {
		return prefs
	}
	return DefaultPrefs()
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Assignments: CloneAssignments(s.Assignments)}
	if s.Users != nil {
		out.Users = make([]User, len(s.Users))
		for i, u := range s.Users {
			out.Users[i] = u.Clone()
		}
	}
	if s.Courses != nil {
		out.Courses = make([]Course, len(s.Courses))
		for i, c := range s.Courses {
			c.StudentIDs = append([]string(nil), c.StudentIDs...)
			out.Courses[i] = c
		}
	}
	if s.Groups != nil {
		out.Groups = make([]Group, len(s.Groups))
		for i, g := range s.Groups {
			g.MemberIDs = append([]string(nil), g.MemberIDs...)
			out.Groups[i] = g
		}
	}
	if s.CurrentUserID != nil {
		id := *s.CurrentUserID
		out.CurrentUserID = &id
	}
	out.PrefsByUser = make(map[string]Prefs, len(s.PrefsByUser))
	for k, v := range s.PrefsByUser {
		out.PrefsByUser[k] = v
	}
	return out
}
