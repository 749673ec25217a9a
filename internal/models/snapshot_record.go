package models

import (
	"time"

	"gorm.io/datatypes"
)

// SnapshotRecord stores one serialized snapshot under a store key.
type SnapshotRecord struct {
	Key       string         `gorm:"column:store_key;primaryKey;size:128" json:"key"`
	Payload   datatypes.JSON `gorm:"type:json;not null" json:"payload"`
	UpdatedAt time.Time      `json:"updated_at"`
}
