package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ksred/card-check/internal/database"
	"github.com/ksred/card-check/internal/services"
	"github.com/ksred/card-check/internal/utils"
)

// ErrorResponse is the body returned for request and storage errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// VerifyResponse is returned by POST /verifications
type VerifyResponse struct {
	Success   bool                          `json:"success"`
	Message   string                        `json:"message"`
	Outcome   *services.VerificationOutcome `json:"outcome"`
	Error     string                        `json:"error,omitempty"`
	Retryable bool                          `json:"retryable,omitempty"`
}

// ListVerificationsResponse is returned by GET /verifications
type ListVerificationsResponse struct {
	Verifications []services.RecordView `json:"verifications"`
	Count         int                   `json:"count"`
}

// verifyHandler godoc
// @Summary Verify a card
// @Description Validate card number, expiry and CVV and log the attempt. Invalid cards are still logged; blank fields are not.
// @Tags verifications
// @Accept json
// @Produce json
// @Param request body services.VerifyRequest true "Card details"
// @Success 201 {object} VerifyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} VerifyResponse
// @Failure 503 {object} VerifyResponse
// @Router /verifications [post]
func (s *Server) verifyHandler(c *gin.Context) {
	var req services.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	outcome, err := s.verifier.ProcessRequest(c.Request.Context(), req)
	status, response := verifyResponse(outcome, err)
	if utils.IsStorageError(err) {
		s.logger.Error().Err(err).Str("request_id", getRequestID(c)).Msg("Failed to record verification")
	}

	c.JSON(status, response)
}

func verifyResponse(outcome *services.VerificationOutcome, err error) (int, VerifyResponse) {
	response := VerifyResponse{
		Success: err == nil,
		Outcome: outcome,
	}
	if outcome != nil {
		response.Message = outcome.Summary()
	}

	switch {
	case err == nil:
		return http.StatusCreated, response
	case utils.IsIncompleteSubmission(err):
		response.Error = err.Error()
		return http.StatusUnprocessableEntity, response
	case utils.IsStorageError(err):
		response.Error = "verification could not be recorded"
		response.Retryable = database.IsRetryableError(err)
		return http.StatusServiceUnavailable, response
	default:
		response.Error = err.Error()
		return http.StatusInternalServerError, response
	}
}

// listVerificationsHandler godoc
// @Summary List verifications
// @Description List logged verification attempts, newest first. Card numbers are masked and CVVs are omitted.
// @Tags verifications
// @Produce json
// @Param limit query int false "Maximum number of results (default: 100, max: 1000)"
// @Success 200 {object} ListVerificationsResponse
// @Failure 500 {object} ErrorResponse
// @Router /verifications [get]
func (s *Server) listVerificationsHandler(c *gin.Context) {
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil {
			if parsedLimit > 0 && parsedLimit <= 1000 {
				limit = parsedLimit
			}
		}
	}

	records, err := s.verifier.ListRecent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list verifications")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list verifications"})
		return
	}

	views := services.NewRecordViews(records)
	c.JSON(http.StatusOK, ListVerificationsResponse{
		Verifications: views,
		Count:         len(views),
	})
}
