package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noah-isme/assignment-tracker/internal/dto"
	"github.com/noah-isme/assignment-tracker/internal/models"
)

// SessionService covers sign-in, sign-up, preferences and account removal,
// and hands out the workflows bound to the signed-in user.
type SessionService interface {
	Current() dto.SessionView
	CurrentUser() (models.User, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.SessionView, error)
	Logout(ctx context.Context) error
	Signup(ctx context.Context, payload dto.SignupRequest) (dto.SessionView, error)
	UpdatePrefs(ctx context.Context, payload dto.PrefsUpdateRequest) (models.Prefs, error)
	DeleteUser(ctx context.Context, userID string) error
	Workflow() (*SubmissionWorkflow, error)
	Deletion() (*DeleteUndoProtocol, error)
}

type sessionService struct {
	state  *AppState
	base   zerolog.Logger
	logger zerolog.Logger

	mu       sync.Mutex
	boundTo  string
	workflow *SubmissionWorkflow
	deletion *DeleteUndoProtocol
}

// NewSessionService builds a session service over state.
func NewSessionService(state *AppState, logger zerolog.Logger) SessionService {
	return &sessionService{
		state:  state,
		base:   logger,
		logger: logger.With().Str("component", "session_service").Logger(),
	}
}

func (s *sessionService) Current() dto.SessionView {
	return sessionView(s.state.Snapshot())
}

func (s *sessionService) CurrentUser() (models.User, error) {
	user, ok := s.state.Snapshot().CurrentUser()
	if !ok {
		return models.User{}, ErrNotSignedIn
	}
	return user, nil
}

func (s *sessionService) Login(ctx context.Context, payload dto.LoginRequest) (dto.SessionView, error) {
	snapshot, err := s.state.Update(ctx, "session.login", func(current models.Snapshot) (models.Snapshot, error) {
		user, ok := models.FindUser(current.Users, payload.UserID)
		if !ok {
			return current, ErrUserNotFound
		}
		if !user.CheckPassword(payload.Password) {
			return current, ErrInvalidCredentials
		}
		id := user.ID
		current.CurrentUserID = &id
		return current, nil
	})
	if err != nil && !IsPersistenceWarning(err) {
		s.logger.Warn().Err(err).Str("user_id", payload.UserID).Msg("login refused")
		return dto.SessionView{}, err
	}

	s.logger.Info().Str("user_id", payload.UserID).Msg("signed in")
	return sessionView(snapshot), err
}

func (s *sessionService) Logout(ctx context.Context) error {
	_, err := s.state.Update(ctx, "session.logout", func(current models.Snapshot) (models.Snapshot, error) {
		if current.CurrentUserID == nil {
			return current, errNoChange
		}
		current.CurrentUserID = nil
		return current, nil
	})
	if err == nil || IsPersistenceWarning(err) {
		s.logger.Info().Msg("signed out")
	}
	return err
}

func (s *sessionService) Signup(ctx context.Context, payload dto.SignupRequest) (dto.SessionView, error) {
	var created models.User
	snapshot, err := s.state.Update(ctx, "session.signup", func(current models.Snapshot) (models.Snapshot, error) {
		next, user, err := CreateUser(current, payload)
		if err != nil {
			return current, err
		}
		created = user
		return next, nil
	})
	if err != nil && !IsPersistenceWarning(err) {
		return dto.SessionView{}, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("account created")
	return sessionView(snapshot), err
}

func (s *sessionService) UpdatePrefs(ctx context.Context, payload dto.PrefsUpdateRequest) (models.Prefs, error) {
	if err := draftValidator.Struct(payload); err != nil {
		return models.Prefs{}, newValidationError(KindInvalidPrefs)
	}

	var userID string
	snapshot, err := s.state.Update(ctx, "session.prefs", func(current models.Snapshot) (models.Snapshot, error) {
		user, ok := current.CurrentUser()
		if !ok {
			return current, ErrNotSignedIn
		}
		userID = user.ID
		return MergePrefs(current, user.ID, payload), nil
	})
	if err != nil && !IsPersistenceWarning(err) {
		return models.Prefs{}, err
	}
	return snapshot.PrefsFor(userID), err
}

// DeleteUser lets an admin remove anyone and a student remove themselves.
func (s *sessionService) DeleteUser(ctx context.Context, userID string) error {
	var actorID string
	_, err := s.state.Update(ctx, "user.delete", func(current models.Snapshot) (models.Snapshot, error) {
		actor, ok := current.CurrentUser()
		if !ok {
			return current, ErrNotSignedIn
		}
		if !actor.IsAdmin() && actor.ID != userID {
			return current, ErrUnauthorized
		}
		actorID = actor.ID
		return DeleteUser(current, userID)
	})
	if err != nil && !IsPersistenceWarning(err) {
		return err
	}

	s.logger.Info().Str("user_id", userID).Str("actor", actorID).Msg("user deleted")
	s.state.Record(ctx, Event{Type: EventUserDeleted, ActorID: actorID, Key: userID})
	return err
}

func (s *sessionService) Workflow() (*SubmissionWorkflow, error) {
	workflow, _, err := s.bind()
	return workflow, err
}

func (s *sessionService) Deletion() (*DeleteUndoProtocol, error) {
	_, deletion, err := s.bind()
	return deletion, err
}

// bind recreates the per-user state machines whenever the signed-in user
// changes and returns the pair bound to that user. The previous user's undo
// slot is finalized on the switch.
func (s *sessionService) bind() (*SubmissionWorkflow, *DeleteUndoProtocol, error) {
	user, err := s.CurrentUser()
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.boundTo != user.ID || s.workflow == nil {
		if s.deletion != nil {
			s.deletion.release("session_changed")
		}
		s.workflow = NewSubmissionWorkflow(s.state, user, s.base)
		s.deletion = NewDeleteUndoProtocol(s.state, user, s.base)
		s.boundTo = user.ID
		s.logger.Debug().Str("user_id", user.ID).Msg("workflows bound")
	}
	return s.workflow, s.deletion, nil
}

func sessionView(snapshot models.Snapshot) dto.SessionView {
	view := dto.SessionView{
		Prefs: models.DefaultPrefs(),
		Users: dto.NewUserViewSlice(snapshot.Users),
	}
	if user, ok := snapshot.CurrentUser(); ok {
		userView := dto.NewUserView(user)
		view.User = &userView
		view.Prefs = snapshot.PrefsFor(user.ID)
	}
	return view
}
