package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/assignment-tracker/internal/models"
)

// SnapshotRepository persists the whole application state as one blob.
type SnapshotRepository interface {
	// Load returns nil when nothing has been stored yet.
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snapshot models.Snapshot) error
	Clear(ctx context.Context) error
}

type gormSnapshotRepository struct {
	db  *gorm.DB
	key string
	now func() time.Time
}

// NewGormSnapshotRepository stores the snapshot in the snapshot_records table under key.
func NewGormSnapshotRepository(db *gorm.DB, key string) SnapshotRepository {
	return &gormSnapshotRepository{db: db, key: key, now: time.Now}
}

func (r *gormSnapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	var record models.SnapshotRecord
	err := r.db.WithContext(ctx).First(&record, "store_key = ?", r.key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return DecodeSnapshot(record.Payload)
}

func (r *gormSnapshotRepository) Save(ctx context.Context, snapshot models.Snapshot) error {
	payload, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	record := models.SnapshotRecord{
		Key:       r.key,
		Payload:   datatypes.JSON(payload),
		UpdatedAt: r.now(),
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&record).Error
}

func (r *gormSnapshotRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("store_key = ?", r.key).Delete(&models.SnapshotRecord{}).Error
}
