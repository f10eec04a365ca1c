package services

import (
	"github.com/google/uuid"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/sse"
)

// JobNotifier pushes job lifecycle events to live subscribers. Delivery is
// best effort; the database row remains the source of truth for pollers.
type JobNotifier interface {
	Progress(jobID uuid.UUID, stage string, progress int)
	Done(jobID uuid.UUID, recapID uuid.UUID)
	Failed(jobID uuid.UUID, message string)
}

type jobNotifier struct {
	log *logger.Logger
	hub *sse.SSEHub
}

func NewJobNotifier(hub *sse.SSEHub, baseLog *logger.Logger) JobNotifier {
	return &jobNotifier{
		log: baseLog.With("service", "JobNotifier"),
		hub: hub,
	}
}

func (n *jobNotifier) Progress(jobID uuid.UUID, stage string, progress int) {
	n.hub.Broadcast(sse.SSEMessage{
		Channel: jobID.String(),
		Event:   sse.SSEEventJobProgress,
		Data: map[string]any{
			"stage":    stage,
			"progress": progress,
		},
	})
}

func (n *jobNotifier) Done(jobID uuid.UUID, recapID uuid.UUID) {
	n.hub.Broadcast(sse.SSEMessage{
		Channel: jobID.String(),
		Event:   sse.SSEEventJobDone,
		Data: map[string]any{
			"recap_id": recapID.String(),
		},
	})
}

func (n *jobNotifier) Failed(jobID uuid.UUID, message string) {
	n.hub.Broadcast(sse.SSEMessage{
		Channel: jobID.String(),
		Event:   sse.SSEEventJobError,
		Data: map[string]any{
			"error": message,
		},
	})
}
