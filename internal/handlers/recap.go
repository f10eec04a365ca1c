package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/recap"
	"github.com/schoolwrapped/recap-backend/internal/render"
	"github.com/schoolwrapped/recap-backend/internal/repos"
)

type RecapHandler struct {
	log       *logger.Logger
	recapRepo repos.RecapRepo
	renderer  *render.Renderer
}

func NewRecapHandler(recapRepo repos.RecapRepo, renderer *render.Renderer, baseLog *logger.Logger) *RecapHandler {
	return &RecapHandler{
		log:       baseLog.With("handler", "RecapHandler"),
		recapRepo: recapRepo,
		renderer:  renderer,
	}
}

// GET /api/recap/:id
func (h *RecapHandler) GetRecap(c *gin.Context) {
	recapID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_recap_id", err)
		return
	}
	row, err := h.recapRepo.GetByID(c.Request.Context(), recapID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recap_lookup", err)
		return
	}
	if row == nil {
		RespondError(c, http.StatusNotFound, "recap_not_found", errors.New("recap not found"))
		return
	}
	RespondOK(c, gin.H{"recap": row})
}

// POST /api/recap/:id/images
//
// Re-renders the share image set from the stored fields, overwriting any
// previous files for the recap.
func (h *RecapHandler) RegenerateImages(c *gin.Context) {
	if h.renderer == nil {
		RespondError(c, http.StatusServiceUnavailable, "renderer_unavailable",
			errors.New("image rendering is not configured"))
		return
	}

	recapID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_recap_id", err)
		return
	}
	row, err := h.recapRepo.GetByID(c.Request.Context(), recapID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recap_lookup", err)
		return
	}
	if row == nil {
		RespondError(c, http.StatusNotFound, "recap_not_found", errors.New("recap not found"))
		return
	}

	var fields recap.Fields
	if err := json.Unmarshal(row.Fields, &fields); err != nil {
		RespondError(c, http.StatusInternalServerError, "fields_decode", err)
		return
	}

	images, err := h.renderer.RenderAll(row.ID.String(), fields)
	if err != nil {
		h.log.Warn("Share image re-render failed", "recap_id", row.ID, "error", err)
		RespondError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}

	imagesJSON, err := json.Marshal(images)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "images_encode", err)
		return
	}
	if err := h.recapRepo.UpdateShareImages(c.Request.Context(), row.ID, imagesJSON); err != nil {
		RespondError(c, http.StatusInternalServerError, "images_save", err)
		return
	}

	RespondOK(c, gin.H{"share_images": images})
}
