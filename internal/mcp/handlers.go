package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ksred/card-check/internal/database"
	"github.com/ksred/card-check/internal/services"
	"github.com/ksred/card-check/internal/utils"
)

// Default and maximum number of records returned by list_verifications
const (
	defaultListLimit = 20
	maxListLimit     = 1000
)

// Handler manages MCP tool handlers
type Handler struct {
	verifier *services.VerificationService
	logger   zerolog.Logger
}

// NewHandler creates a new MCP handler
func NewHandler(verifier *services.VerificationService, logger zerolog.Logger) *Handler {
	return &Handler{
		verifier: verifier,
		logger:   logger,
	}
}

// VerifyCardRequest represents the arguments of the verify_card tool
type VerifyCardRequest struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// ListVerificationsRequest represents the arguments of the list_verifications tool
type ListVerificationsRequest struct {
	Limit int `json:"limit,omitempty"`
}

func (h *Handler) handleVerifyCard(ctx context.Context, params json.RawMessage) (VerifyCardResponse, error) {
	var req VerifyCardRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return VerifyCardResponse{}, fmt.Errorf("invalid parameters: %w", err)
	}

	outcome, err := h.verifier.Process(ctx, req.CardNumber, req.Expiry, req.CVV)
	response := VerifyCardResponse{
		Success: err == nil,
		Outcome: outcome,
	}
	if outcome != nil {
		response.Message = outcome.Summary()
	}

	switch {
	case err == nil:
	case utils.IsIncompleteSubmission(err):
		response.Error = err.Error()
	case utils.IsStorageError(err):
		h.logger.Error().Err(err).Msg("Verification could not be recorded")
		response.Error = "verification could not be recorded"
		response.Retryable = database.IsRetryableError(err)
	default:
		return VerifyCardResponse{}, err
	}

	return response, nil
}

func (h *Handler) handleListVerifications(ctx context.Context, params json.RawMessage) (ListVerificationsResponse, error) {
	req := ListVerificationsRequest{Limit: defaultListLimit}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &req); err != nil {
			return ListVerificationsResponse{}, fmt.Errorf("invalid parameters: %w", err)
		}
	}

	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}
	if req.Limit > maxListLimit {
		return ListVerificationsResponse{}, utils.WrapValidationError("limit", fmt.Sprintf("must be at most %d", maxListLimit))
	}

	records, err := h.verifier.ListRecent(ctx, req.Limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list verifications")
		return ListVerificationsResponse{}, err
	}

	views := services.NewRecordViews(records)
	return ListVerificationsResponse{
		Verifications: views,
		Count:         len(views),
	}, nil
}
