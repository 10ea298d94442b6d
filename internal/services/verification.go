package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksred/card-check/internal/config"
	"github.com/ksred/card-check/internal/models"
	"github.com/ksred/card-check/internal/utils"
	"github.com/ksred/card-check/internal/validation"
)

// redactedCVV replaces the CVV in stored records when cvv_retention is redact
const redactedCVV = "***"

// VerificationService validates a submission and logs the attempt
type VerificationService struct {
	store  RecordStore
	expiry *validation.ExpiryValidator
	logger zerolog.Logger
	config map[string]interface{}
}

// NewVerificationService creates a service over the given store.
// Recognised config keys are cvv_retention and card_retention.
func NewVerificationService(store RecordStore, logger zerolog.Logger, config map[string]interface{}) *VerificationService {
	if config == nil {
		config = make(map[string]interface{})
	}
	return &VerificationService{
		store:  store,
		expiry: validation.NewExpiryValidator(),
		logger: logger,
		config: config,
	}
}

// WithClock replaces the clock used for the expiry check
func (s *VerificationService) WithClock(now func() time.Time) *VerificationService {
	s.expiry = &validation.ExpiryValidator{Now: now}
	return s
}

// Check runs the three validators without touching the store.
// Blank fields mark the outcome incomplete and no rule is evaluated.
func (s *VerificationService) Check(cardNumber, expiry, cvv string) *VerificationOutcome {
	missing := missingFields(cardNumber, expiry, cvv)
	if len(missing) > 0 {
		return &VerificationOutcome{
			Incomplete:    true,
			MissingFields: missing,
			Errors:        []string{MsgIncomplete},
		}
	}

	outcome := &VerificationOutcome{
		CardNumberValid: validation.ValidateCardNumber(cardNumber),
		ExpiryValid:     s.expiry.Validate(expiry),
		CVVValid:        validation.ValidateCVV(cvv),
	}
	outcome.Valid = outcome.CardNumberValid && outcome.ExpiryValid && outcome.CVVValid
	outcome.Status = models.StatusFor(outcome.Valid)

	for _, err := range outcome.FieldErrors() {
		if ve, ok := err.(*utils.ValidationError); ok {
			outcome.Errors = append(outcome.Errors, ve.Message)
		}
	}

	return outcome
}

// Process validates the submission and appends exactly one record for it.
// An incomplete submission returns an IncompleteSubmissionError and writes nothing.
// A storage fault returns the computed outcome together with a StorageError.
func (s *VerificationService) Process(ctx context.Context, cardNumber, expiry, cvv string) (*VerificationOutcome, error) {
	logger := s.loggerFor(ctx)

	outcome := s.Check(cardNumber, expiry, cvv)
	if outcome.Incomplete {
		logger.Debug().Strs("missing", outcome.MissingFields).Msg("Rejected incomplete submission")
		return outcome, &utils.IncompleteSubmissionError{Fields: outcome.MissingFields}
	}

	record := s.buildRecord(cardNumber, expiry, cvv, outcome.Status)

	id, err := s.store.Append(ctx, record)
	if err != nil {
		logger.Error().
			Err(err).
			Str("card", validation.MaskCardNumber(validation.NormalizeCardNumber(cardNumber))).
			Str("status", outcome.Status).
			Msg("Failed to record verification")
		return outcome, utils.WrapStorageError("append", err)
	}
	outcome.RecordID = id

	logger.Info().
		Uint("record_id", id).
		Str("card", validation.MaskCardNumber(validation.NormalizeCardNumber(cardNumber))).
		Bool("card_number_valid", outcome.CardNumberValid).
		Bool("expiry_valid", outcome.ExpiryValid).
		Bool("cvv_valid", outcome.CVVValid).
		Str("status", outcome.Status).
		Msg("Card verified")

	return outcome, nil
}

// loggerFor prefers the request-scoped logger carried by ctx
func (s *VerificationService) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := utils.FromContext(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

// ProcessRequest is Process for a bound request
func (s *VerificationService) ProcessRequest(ctx context.Context, req VerifyRequest) (*VerificationOutcome, error) {
	return s.Process(ctx, req.CardNumber, req.Expiry, req.CVV)
}

// ListVerifications returns every logged attempt, newest first
func (s *VerificationService) ListVerifications(ctx context.Context) ([]models.VerificationRecord, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, utils.WrapStorageError("list", err)
	}
	return records, nil
}

// ListRecent returns at most limit records, newest first. A non-positive limit returns everything.
func (s *VerificationService) ListRecent(ctx context.Context, limit int) ([]models.VerificationRecord, error) {
	records, err := s.ListVerifications(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// FieldErrors returns one ValidationError per failed field, in form order
func (o *VerificationOutcome) FieldErrors() []error {
	if o.Incomplete {
		return nil
	}

	var errs []error
	if !o.CardNumberValid {
		errs = append(errs, utils.WrapValidationError(FieldCardNumber, MsgInvalidCardNumber))
	}
	if !o.ExpiryValid {
		errs = append(errs, utils.WrapValidationError(FieldExpiry, MsgInvalidExpiry))
	}
	if !o.CVVValid {
		errs = append(errs, utils.WrapValidationError(FieldCVV, MsgInvalidCVV))
	}
	return errs
}

func (s *VerificationService) buildRecord(cardNumber, expiry, cvv, status string) *models.VerificationRecord {
	digits := validation.NormalizeCardNumber(cardNumber)
	if s.getConfigString("card_retention", config.RetentionDigits) == config.RetentionMasked {
		digits = validation.MaskCardNumber(digits)
	}

	storedCVV := cvv
	if s.getConfigString("cvv_retention", config.RetentionPlaintext) == config.RetentionRedact {
		storedCVV = redactedCVV
	}

	return &models.VerificationRecord{
		CardNumber: digits,
		Expiry:     expiry,
		CVV:        storedCVV,
		Status:     &status,
	}
}

func (s *VerificationService) getConfigString(key, defaultValue string) string {
	if val, ok := s.config[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

func missingFields(cardNumber, expiry, cvv string) []string {
	var missing []string
	if strings.TrimSpace(cardNumber) == "" {
		missing = append(missing, FieldCardNumber)
	}
	if strings.TrimSpace(expiry) == "" {
		missing = append(missing, FieldExpiry)
	}
	if strings.TrimSpace(cvv) == "" {
		missing = append(missing, FieldCVV)
	}
	return missing
}
