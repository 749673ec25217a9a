package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/assignment-tracker/internal/models"
)

// ErrSnapshotCorrupt indicates the stored payload could not be decoded into a snapshot.
var ErrSnapshotCorrupt = errors.New("stored snapshot is corrupt")

const snapshotSchemaURL = "snapshot.schema.json"

const snapshotSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "users": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "role": {"enum": ["admin", "student"]}
        }
      }
    },
    "assignments": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "title"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "submissionType": {"enum": ["individual", "group"]},
          "assignedTo": {"type": ["array", "null"], "items": {"type": "string"}},
          "submissions": {
            "type": ["object", "null"],
            "additionalProperties": {
              "type": "object",
              "properties": {
                "submitted": {"type": "boolean"},
                "acknowledged": {"type": "boolean"},
                "timestamp": {"type": ["string", "null"]},
                "submittedBy": {"type": ["string", "null"]}
              }
            }
          }
        }
      }
    },
    "courses": {"type": ["array", "null"]},
    "groups": {"type": ["array", "null"]},
    "currentUserId": {"type": ["string", "null"]},
    "prefsByUser": {"type": ["object", "null"]}
  }
}`

// SnapshotSchema is the structural contract every stored payload must satisfy.
var SnapshotSchema = jsonschema.MustCompileString(snapshotSchemaURL, snapshotSchemaJSON)

// EncodeSnapshot serializes a snapshot for storage.
func EncodeSnapshot(snapshot models.Snapshot) ([]byte, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return payload, nil
}

// DecodeSnapshot validates a stored payload against SnapshotSchema and decodes it.
func DecodeSnapshot(payload []byte) (*models.Snapshot, error) {
	var generic interface{}
	if err := json.Unmarshal(payload, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if err := SnapshotSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if snapshot.PrefsByUser == nil {
		snapshot.PrefsByUser = map[string]models.Prefs{}
	}

	return &snapshot, nil
}
