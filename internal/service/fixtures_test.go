package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/assignment-tracker/internal/models"
	"github.com/noah-isme/assignment-tracker/internal/repository"
)

var fixedNow = time.Date(2025, time.October, 21, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

// stubSnapshotRepo wraps the in-memory repository with injectable failures.
type stubSnapshotRepo struct {
	repository.SnapshotRepository
	loadErr error
	saveErr error
	saves   int
}

func (r *stubSnapshotRepo) Load(ctx context.Context) (*models.Snapshot, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.SnapshotRepository.Load(ctx)
}

func (r *stubSnapshotRepo) Save(ctx context.Context, snapshot models.Snapshot) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.SnapshotRepository.Save(ctx, snapshot)
}

func newStubRepo() *stubSnapshotRepo {
	return &stubSnapshotRepo{SnapshotRepository: repository.NewMemorySnapshotRepository()}
}

var errDiskFull = errors.New("quota exceeded")

// newTestState installs snapshot into a fresh state holder backed by memory.
func newTestState(t *testing.T, snapshot models.Snapshot) (*AppState, *stubSnapshotRepo, *recordingPublisher) {
	t.Helper()

	repo := newStubRepo()
	publisher := &recordingPublisher{}
	state := NewAppState(repo, publisher, zerolog.Nop())
	state.now = func() time.Time { return fixedNow }

	require.NoError(t, repo.SnapshotRepository.Save(context.Background(), snapshot))
	require.NoError(t, state.Load(context.Background(), nil))
	return state, repo, publisher
}

// groupFixture has one individual assignment for s1 and one group assignment
// for g1 (leader s1, member s2). s3 is in no group.
func groupFixture() models.Snapshot {
	return models.Snapshot{
		Users: []models.User{
			{ID: "t1", DisplayName: "Teacher", Role: models.RoleAdmin},
			{ID: "t2", DisplayName: "Other Teacher", Role: models.RoleAdmin},
			{ID: "s1", DisplayName: "Leader Lee", Role: models.RoleStudent},
			{ID: "s2", DisplayName: "Member May", Role: models.RoleStudent},
			{ID: "s3", DisplayName: "Solo Sam", Role: models.RoleStudent},
		},
		Courses: []models.Course{
			{ID: "c1", Title: "Algorithms", InstructorID: "t1", StudentIDs: []string{"s1", "s2", "s3"}},
		},
		Groups: []models.Group{
			{ID: "g1", CourseID: "c1", Name: "Team One", LeaderID: "s1", MemberIDs: []string{"s1", "s2"}},
		},
		Assignments: []models.Assignment{
			{
				ID:          "a1",
				CourseID:    "c1",
				Title:       "Essay",
				DueDate:     "2025-11-10",
				CreatedBy:   "t1",
				AssignedTo:  []string{"s1", "s3"},
				Submissions: map[string]models.Submission{"s1": {}, "s3": {}},
			},
			{
				ID:             "a2",
				CourseID:       "c1",
				Title:          "Group Project",
				DueDate:        "2025-11-01",
				CreatedBy:      "t1",
				SubmissionType: models.SubmissionTypeGroup,
				AssignedTo:     []string{"g1"},
				Submissions:    map[string]models.Submission{"g1": {}},
			},
			{
				ID:          "a3",
				Title:       "Reading",
				DueDate:     "2025-12-01",
				CreatedBy:   "t2",
				AssignedTo:  []string{"s2"},
				Submissions: map[string]models.Submission{"s2": {}},
			},
		},
		PrefsByUser: map[string]models.Prefs{},
	}
}

func userByID(t *testing.T, snapshot models.Snapshot, id string) models.User {
	t.Helper()
	user, ok := models.FindUser(snapshot.Users, id)
	require.True(t, ok, "user %s", id)
	return user
}

func signIn(t *testing.T, state *AppState, userID string) {
	t.Helper()
	_, err := state.Update(context.Background(), "test.signin", func(current models.Snapshot) (models.Snapshot, error) {
		current.CurrentUserID = &userID
		return current, nil
	})
	require.NoError(t, err)
}

func requireInvariants(t *testing.T, assignments []models.Assignment) {
	t.Helper()
	for _, assignment := range assignments {
		require.NoError(t, assignment.CheckInvariants())
	}
}
