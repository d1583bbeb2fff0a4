// Package sadiq bridges NDA agreements to the Sadiq e-signature
// platform. Provider vocabulary never leaks past this package: the
// polled envelope status is translated into the local lifecycle enum
// at this boundary.
package sadiq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wathiq/b2b-platform/internal/apperrors"
	"github.com/wathiq/b2b-platform/internal/config"
)

type SadiqService struct {
	Client     *http.Client
	BaseURL    string
	APIKey     string
	SigningURL string
}

func NewSadiqService(cfg *config.Config) *SadiqService {
	return &SadiqService{
		Client:     &http.Client{Timeout: 15 * time.Second},
		BaseURL:    cfg.SadiqBaseURL,
		APIKey:     cfg.SadiqAPIKey,
		SigningURL: cfg.SadiqSigningURL,
	}
}

type Signer struct {
	Role  string `json:"role"` // "company" or "entrepreneur"
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type EnvelopeRequest struct {
	Document string   `json:"document"` // base64 agreement PDF
	Title    string   `json:"title"`
	Signers  []Signer `json:"signers"`
}

type EnvelopeResult struct {
	EnvelopeID      string `json:"envelopeId"`
	ReferenceNumber string `json:"referenceNumber"`
	DocumentID      string `json:"documentId"`
}

type SigningStats struct {
	CompletionPercentage float64 `json:"completionPercentage"`
}

type EnvelopeStatus struct {
	Status       string        `json:"status"`
	SigningStats *SigningStats `json:"signingStats,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// CreateEnvelope submits both parties and the rendered agreement to the
// provider. Data rejections (a malformed phone number, say) come back
// as validation errors so the UI asks the user to fix their input;
// everything else is a retryable provider error that must leave the
// local agreement untouched.
func (s *SadiqService) CreateEnvelope(req EnvelopeRequest) (*EnvelopeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.Provider("failed to encode envelope request", false, err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, s.BaseURL+"/envelopes", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Provider("failed to build envelope request", false, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Provider("signature provider unreachable", true, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var result EnvelopeResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, apperrors.Provider("unexpected envelope response", true, err)
		}
		if result.EnvelopeID == "" || result.ReferenceNumber == "" {
			return nil, apperrors.Provider("envelope response missing identifiers", true, nil)
		}
		return &result, nil
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		// The provider rejected the payload itself. Re-classify as a
		// data problem so the caller prompts for a fix, not a retry.
		var er errorResponse
		_ = json.Unmarshal(raw, &er)
		msg := er.Message
		if msg == "" {
			msg = "signature provider rejected the signer data"
		}
		return nil, apperrors.Validation(msg)
	default:
		return nil, apperrors.Provider(
			fmt.Sprintf("signature provider returned %d", resp.StatusCode),
			resp.StatusCode >= 500, nil)
	}
}

// GetEnvelopeStatus polls the provider for the envelope correlated with
// referenceNumber. A definitive "not found" is distinguished from
// transient unavailability so the poll loop knows whether to retry.
func (s *SadiqService) GetEnvelopeStatus(referenceNumber string) (*EnvelopeStatus, error) {
	httpReq, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("%s/envelopes/%s/status", s.BaseURL, referenceNumber), nil)
	if err != nil {
		return nil, apperrors.Provider("failed to build status request", false, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Provider("signature provider unreachable", true, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NotFound("envelope not found at signature provider")
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var status EnvelopeStatus
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return nil, apperrors.Provider("unexpected status response", true, err)
		}
		return &status, nil
	default:
		return nil, apperrors.Provider(
			fmt.Sprintf("signature provider returned %d", resp.StatusCode),
			resp.StatusCode >= 500, nil)
	}
}

// BuildSigningURL derives the human-facing signing page for an
// envelope. Pure construction, no provider call.
func (s *SadiqService) BuildSigningURL(envelopeID string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(s.SigningURL, "/"), envelopeID)
}

// TranslateStatus maps the provider's free-form status vocabulary onto
// the closed local lifecycle. Unknown values map to "pending" so a new
// provider sub-status can never flip local state.
type LocalOutcome string

const (
	OutcomePending   LocalOutcome = "pending"
	OutcomeCompleted LocalOutcome = "completed"
	OutcomeExpired   LocalOutcome = "expired"
	OutcomeRejected  LocalOutcome = "rejected"
)

var statusTranslation = map[string]LocalOutcome{
	"completed":   OutcomeCompleted,
	"complete":    OutcomeCompleted,
	"signed":      OutcomeCompleted,
	"in-progress": OutcomePending,
	"in_progress": OutcomePending,
	"pending":     OutcomePending,
	"sent":        OutcomePending,
	"created":     OutcomePending,
	"expired":     OutcomeExpired,
	"timed-out":   OutcomeExpired,
	"rejected":    OutcomeRejected,
	"declined":    OutcomeRejected,
	"cancelled":   OutcomeRejected,
	"canceled":    OutcomeRejected,
	"voided":      OutcomeRejected,
}

func TranslateStatus(providerStatus string) LocalOutcome {
	if outcome, ok := statusTranslation[strings.ToLower(strings.TrimSpace(providerStatus))]; ok {
		return outcome
	}
	return OutcomePending
}
