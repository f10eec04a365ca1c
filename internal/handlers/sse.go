package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schoolwrapped/recap-backend/internal/sse"
)

type SSEHandler struct {
	hub *sse.SSEHub
}

func NewSSEHandler(hub *sse.SSEHub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// GET /events/:job_id
func (h *SSEHandler) StreamJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_job_id", errors.New("job_id must be a UUID"))
		return
	}

	client := h.hub.NewSSEClient()
	h.hub.AddChannel(client, jobID.String())
	defer h.hub.CloseClient(client)

	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
