package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/assignment-tracker/internal/config"
	"github.com/noah-isme/assignment-tracker/internal/service"
	"github.com/noah-isme/assignment-tracker/internal/utils"
)

// HealthResponse reports the store in use and what the tracker currently holds.
type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Store       string                 `json:"store"`
	Snapshot    service.SnapshotSource `json:"snapshot"`
	Users       int                    `json:"users"`
	Assignments int                    `json:"assignments"`
	SignedIn    bool                   `json:"signedIn"`
}

// HealthCheck answers "ok" once a snapshot has been loaded and "starting" before.
func HealthCheck(cfg config.Config, state *service.AppState) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:    "starting",
			Timestamp: time.Now().UTC(),
			Store:     cfg.StoreDriver,
			Snapshot:  service.SourceNone,
		}

		if state != nil {
			snapshot := state.Snapshot()
			payload.Snapshot = state.Source()
			payload.Users = len(snapshot.Users)
			payload.Assignments = len(snapshot.Assignments)
			_, payload.SignedIn = snapshot.CurrentUser()
		}
		if payload.Snapshot != service.SourceNone {
			payload.Status = "ok"
		}

		return utils.SendSuccess(c, "tracker "+payload.Status, payload)
	}
}
