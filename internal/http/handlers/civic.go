package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voterguide-backend/internal/data/repos"
	"github.com/yungbote/voterguide-backend/internal/http/response"
	"github.com/yungbote/voterguide-backend/internal/services"
)

type ElectionHandler struct {
	elections services.ElectionService
}

func NewElectionHandler(elections services.ElectionService) *ElectionHandler {
	return &ElectionHandler{elections: elections}
}

// GET /api/elections?jurisdictionId=...&status=upcoming
func (h *ElectionHandler) List(c *gin.Context) {
	jurisdictionID := c.Query("jurisdictionId")
	if jurisdictionID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("jurisdictionId is required"))
		return
	}
	out, err := h.elections.List(c.Request.Context(), repos.ElectionFilter{
		JurisdictionID: jurisdictionID,
		Status:         c.Query("status"),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/elections/:id
func (h *ElectionHandler) Get(c *gin.Context) {
	out, err := h.elections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

type JurisdictionHandler struct {
	jurisdictions services.JurisdictionService
}

func NewJurisdictionHandler(jurisdictions services.JurisdictionService) *JurisdictionHandler {
	return &JurisdictionHandler{jurisdictions: jurisdictions}
}

// GET /api/jurisdictions
func (h *JurisdictionHandler) List(c *gin.Context) {
	out, err := h.jurisdictions.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/jurisdictions/:id
func (h *JurisdictionHandler) Get(c *gin.Context) {
	out, err := h.jurisdictions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

type PrecinctHandler struct {
	precincts services.PrecinctService
}

func NewPrecinctHandler(precincts services.PrecinctService) *PrecinctHandler {
	return &PrecinctHandler{precincts: precincts}
}

// GET /api/precincts?jurisdictionId=...
func (h *PrecinctHandler) List(c *gin.Context) {
	out, err := h.precincts.List(c.Request.Context(), c.Query("jurisdictionId"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/precincts/locate
// body: { "jurisdictionId": "...", "address": "..." }
func (h *PrecinctHandler) Locate(c *gin.Context) {
	var req struct {
		JurisdictionID string `json:"jurisdictionId"`
		Address        string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.precincts.Locate(c.Request.Context(), req.JurisdictionID, req.Address)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/geocode?q=...
func (h *PrecinctHandler) Geocode(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		q = c.Query("address")
	}
	out, err := h.precincts.Geocode(c.Request.Context(), q)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, out)
}
