package repository

import (
	"context"
	"sync"

	"github.com/noah-isme/assignment-tracker/internal/models"
)

type memorySnapshotRepository struct {
	mu      sync.RWMutex
	payload []byte
}

// NewMemorySnapshotRepository keeps the encoded snapshot in process memory.
func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{}
}

func (r *memorySnapshotRepository) Load(_ context.Context) (*models.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.payload == nil {
		return nil, nil
	}
	return DecodeSnapshot(r.payload)
}

func (r *memorySnapshotRepository) Save(_ context.Context, snapshot models.Snapshot) error {
	payload, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.payload = payload
	return nil
}

func (r *memorySnapshotRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payload = nil
	return nil
}
