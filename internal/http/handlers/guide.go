package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/voterguide-backend/internal/http/response"
	"github.com/yungbote/voterguide-backend/internal/services"
)

type GuideHandler struct {
	guides services.GuideService
}

func NewGuideHandler(guides services.GuideService) *GuideHandler {
	return &GuideHandler{guides: guides}
}

func guideIDParam(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_guide_id", errors.New("invalid guide id"))
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/guides
func (h *GuideHandler) List(c *gin.Context) {
	out, err := h.guides.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/guides/share/:token
func (h *GuideHandler) GetShared(c *gin.Context) {
	out, err := h.guides.GetShared(c.Request.Context(), c.Param("token"), clientMeta(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/guides
func (h *GuideHandler) Create(c *gin.Context) {
	var req services.CreateGuideInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.guides.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// PATCH /api/guides/:id
// body: any of { "title", "description", "notes", "visibility", "precinctId" }
func (h *GuideHandler) Update(c *gin.Context) {
	id, ok := guideIDParam(c, c.Param("id"))
	if !ok {
		return
	}
	var req services.UpdateGuideInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.guides.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/guides/:id
func (h *GuideHandler) Delete(c *gin.Context) {
	id, ok := guideIDParam(c, c.Param("id"))
	if !ok {
		return
	}
	if err := h.guides.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
