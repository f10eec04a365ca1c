package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schoolwrapped/recap-backend/internal/repos"
	"github.com/schoolwrapped/recap-backend/internal/types"
)

type JobHandler struct {
	jobRepo   repos.JobRepo
	recapRepo repos.RecapRepo
}

func NewJobHandler(jobRepo repos.JobRepo, recapRepo repos.RecapRepo) *JobHandler {
	return &JobHandler{jobRepo: jobRepo, recapRepo: recapRepo}
}

// GET /api/job/:id
//
// Finished jobs are deleted, so a missing row is resolved through the recap
// it produced before reporting not-found.
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}

	job, err := h.jobRepo.GetByID(c.Request.Context(), jobID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "job_lookup", err)
		return
	}
	if job != nil {
		RespondOK(c, gin.H{"job": job})
		return
	}

	recap, err := h.recapRepo.GetByJobID(c.Request.Context(), jobID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recap_lookup", err)
		return
	}
	if recap != nil {
		RespondOK(c, gin.H{"job": gin.H{
			"id":       jobID,
			"status":   types.JobStatusDone,
			"progress": 100,
			"recap_id": recap.ID,
		}})
		return
	}

	RespondError(c, http.StatusNotFound, "job_not_found", errors.New("job not found"))
}
