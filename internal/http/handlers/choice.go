package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voterguide-backend/internal/http/response"
	"github.com/yungbote/voterguide-backend/internal/services"
)

type ChoiceHandler struct {
	choices services.ChoiceService
}

func NewChoiceHandler(choices services.ChoiceService) *ChoiceHandler {
	return &ChoiceHandler{choices: choices}
}

// POST /api/choices
// body: { "guideId": "...", "ballotId": "...", "selection": "...", "notes": "..." }
func (h *ChoiceHandler) Save(c *gin.Context) {
	var req services.SaveChoiceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.choices.Save(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/choices?guideId=...&ballotId=...
func (h *ChoiceHandler) Delete(c *gin.Context) {
	guideID, ok := guideIDParam(c, c.Query("guideId"))
	if !ok {
		return
	}
	if err := h.choices.Delete(c.Request.Context(), guideID, c.Query("ballotId")); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
