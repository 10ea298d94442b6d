package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ksred/card-check/internal/services"
	"github.com/ksred/card-check/internal/utils"
)

const recentOnFormPage = 10

var awarenessPoints = []string{
	"Prevent fraud and unauthorised transactions",
	"Protect your personal and financial data",
	"Avoid financial losses",
	"Keep your digital life secure",
}

// formPage is the data rendered by templates/index.html
type formPage struct {
	Awareness    []string
	CardNumber   string
	Expiry       string
	Outcome      *services.VerificationOutcome
	Warning      string
	StorageError string
	Recent       []services.RecordView
	RecentError  string
}

func (s *Server) newFormPage(c *gin.Context) *formPage {
	page := &formPage{Awareness: awarenessPoints}

	records, err := s.verifier.ListRecent(c.Request.Context(), recentOnFormPage)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load recent verifications for form page")
		page.RecentError = "Recent verifications are unavailable"
		return page
	}
	page.Recent = services.NewRecordViews(records)
	return page
}

func (s *Server) formPageHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", s.newFormPage(c))
}

func (s *Server) formSubmitHandler(c *gin.Context) {
	var req services.VerifyRequest
	if err := c.ShouldBind(&req); err != nil {
		c.HTML(http.StatusBadRequest, "index.html", &formPage{
			Awareness: awarenessPoints,
			Warning:   "The form could not be read",
		})
		return
	}

	outcome, err := s.verifier.ProcessRequest(c.Request.Context(), req)

	status := http.StatusOK
	page := s.newFormPage(c)
	// The CVV is never echoed back into the form.
	page.CardNumber = req.CardNumber
	page.Expiry = req.Expiry
	page.Outcome = outcome

	switch {
	case err == nil:
	case utils.IsIncompleteSubmission(err):
		page.Warning = services.MsgIncomplete
	case utils.IsStorageError(err):
		s.logger.Error().Err(err).Str("request_id", getRequestID(c)).Msg("Failed to record verification")
		page.StorageError = "The result above could not be saved. Please try again later."
		status = http.StatusServiceUnavailable
	default:
		page.StorageError = err.Error()
		status = http.StatusInternalServerError
	}

	c.HTML(status, "index.html", page)
}
