package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/voterguide-backend/internal/http/response"
	"github.com/yungbote/voterguide-backend/internal/services"
)

type BallotDataHandler struct {
	ballotData services.BallotDataService
}

func NewBallotDataHandler(ballotData services.BallotDataService) *BallotDataHandler {
	return &BallotDataHandler{ballotData: ballotData}
}

// POST /api/ballot-data/collect
// body: { "jurisdictionId": "...", "address": "...", "electionId": "..." }
func (h *BallotDataHandler) Collect(c *gin.Context) {
	var req services.CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.ballotData.Collect(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/fetch-real-ballot
func (h *BallotDataHandler) FetchRealBallot(c *gin.Context) {
	var req services.CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.ballotData.FetchRealBallot(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/civic/elections
func (h *BallotDataHandler) CivicElections(c *gin.Context) {
	elections, err := h.ballotData.CivicElections(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"elections": elections})
}
