package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/assignment-tracker/internal/models"
	"github.com/noah-isme/assignment-tracker/internal/observability"
	"github.com/noah-isme/assignment-tracker/internal/repository"
)

// AssignmentsOwner is what the workflows see of the state holder: a read-only
// copy of the collection and a way to request a replacement.
type AssignmentsOwner interface {
	Assignments() []models.Assignment
	Groups() []models.Group
	// UpdateAssignments runs fn against the current collection and installs
	// its result. fn returning errNoChange leaves everything as it was.
	UpdateAssignments(ctx context.Context, op string, fn func([]models.Assignment) ([]models.Assignment, error)) error
	Record(ctx context.Context, event Event)
}

// AppState owns the single mutable snapshot. Writers are serialized; every
// installed snapshot is saved before the writer returns.
type AppState struct {
	mu       sync.RWMutex
	snapshot models.Snapshot
	repo     repository.SnapshotRepository
	events   EventPublisher
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
	source   SnapshotSource
}

// SnapshotSource tells where the installed snapshot came from at startup.
type SnapshotSource string

const (
	SourceNone  SnapshotSource = "not_loaded"
	SourceStore SnapshotSource = "store"
	SourceSeed  SnapshotSource = "seed"
	SourceEmpty SnapshotSource = "empty"
)

// NewAppState constructs an empty state holder backed by repo.
func NewAppState(repo repository.SnapshotRepository, events EventPublisher, logger zerolog.Logger) *AppState {
	if events == nil {
		events = NewNopEventPublisher()
	}
	return &AppState{
		snapshot: emptySnapshot(),
		repo:     repo,
		events:   events,
		logger:   logger.With().Str("component", "app_state").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/assignment-tracker/internal/service/state"),
		now:      time.Now,
		source:   SourceNone,
	}
}

// Load installs the stored snapshot. An empty or corrupt store falls back to
// seed, or to an empty snapshot when seed is nil.
func (s *AppState) Load(ctx context.Context, seed func() models.Snapshot) error {
	spanCtx, span := s.tracer.Start(ctx, "snapshot.load")
	defer span.End()

	stored, err := s.repo.Load(spanCtx)
	switch {
	case errors.Is(err, repository.ErrSnapshotCorrupt):
		s.logger.Warn().Err(err).Msg("stored snapshot unreadable, starting fresh")
		stored = nil
	case err != nil:
		span.RecordError(err)
		return fmt.Errorf("load snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if stored != nil {
		s.snapshot = *stored
		s.source = SourceStore
		span.SetAttributes(attribute.Int("snapshot.assignments", len(stored.Assignments)))
		s.logger.Info().Int("assignments", len(stored.Assignments)).Int("users", len(stored.Users)).Msg("snapshot loaded")
		return nil
	}

	s.snapshot = emptySnapshot()
	s.source = SourceEmpty
	if seed != nil {
		s.snapshot = seed()
		s.source = SourceSeed
		s.logger.Info().Msg("store empty, seeded demo data")
		// A failed seed save is already logged and reported by persist.
		_ = s.persist(spanCtx, "seed", s.snapshot)
	}
	return nil
}

// Source reports how Load filled the state.
func (s *AppState) Source() SnapshotSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Snapshot returns a copy of the whole state.
func (s *AppState) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

// Assignments returns a copy of the assignments collection.
func (s *AppState) Assignments() []models.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneAssignments(s.snapshot.Assignments)
}

// Groups returns a copy of the groups.
func (s *AppState) Groups() []models.Group {
	return s.Snapshot().Groups
}

// Update derives the next snapshot from a copy of the current one and installs
// it. When fn fails nothing is installed. A failed save still installs and is
// reported as a *PersistenceError.
func (s *AppState) Update(ctx context.Context, op string, fn func(models.Snapshot) (models.Snapshot, error)) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.snapshot.Clone())
	if errors.Is(err, errNoChange) {
		return s.snapshot.Clone(), nil
	}
	if err != nil {
		return s.snapshot.Clone(), err
	}

	s.snapshot = next
	installed := next.Clone()
	return installed, s.persist(ctx, op, next)
}

// UpdateAssignments is Update restricted to the assignments collection.
func (s *AppState) UpdateAssignments(ctx context.Context, op string, fn func([]models.Assignment) ([]models.Assignment, error)) error {
	_, err := s.Update(ctx, op, func(snapshot models.Snapshot) (models.Snapshot, error) {
		next, err := fn(snapshot.Assignments)
		if err != nil {
			return snapshot, err
		}
		snapshot.Assignments = next
		return snapshot, nil
	})
	return err
}

// Record publishes event, logging (never returning) delivery failures.
func (s *AppState) Record(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = s.now().UTC()
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to publish event")
	}
}

// Clear wipes the store and resets the in-memory state.
func (s *AppState) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = emptySnapshot()
	if err := s.repo.Clear(ctx); err != nil {
		return s.reportFailure(ctx, "clear", err)
	}
	return nil
}

// persist must be called with mu held.
func (s *AppState) persist(ctx context.Context, op string, snapshot models.Snapshot) error {
	spanCtx, span := s.tracer.Start(ctx, "snapshot.save", trace.WithAttributes(
		attribute.String("snapshot.op", op),
		attribute.Int("snapshot.assignments", len(snapshot.Assignments)),
	))
	defer span.End()

	if err := s.repo.Save(spanCtx, snapshot); err != nil {
		span.RecordError(err)
		return s.reportFailure(spanCtx, op, err)
	}
	return nil
}

func (s *AppState) reportFailure(ctx context.Context, op string, err error) error {
	s.logger.Error().Err(err).Str("op", op).Msg("failed to persist snapshot")
	observability.PersistenceFailures().WithLabelValues(op).Inc()
	s.Record(ctx, Event{Type: EventPersistenceFailed, Detail: fmt.Sprintf("%s: %v", op, err)})
	return &PersistenceError{Op: op, Err: err}
}

func emptySnapshot() models.Snapshot {
	return models.Snapshot{
		Users:       []models.User{},
		Assignments: []models.Assignment{},
		PrefsByUser: map[string]models.Prefs{},
	}
}
