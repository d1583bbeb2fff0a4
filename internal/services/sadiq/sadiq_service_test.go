package sadiq

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wathiq/b2b-platform/internal/apperrors"
)

func newTestService(baseURL string) *SadiqService {
	return &SadiqService{
		Client:     &http.Client{Timeout: 2 * time.Second},
		BaseURL:    baseURL,
		APIKey:     "test-key",
		SigningURL: "https://sign.example.sa/sign",
	}
}

func TestCreateEnvelopeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/envelopes" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer token, got %q", got)
		}

		var req EnvelopeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Signers) != 2 {
			t.Errorf("expected both signers, got %d", len(req.Signers))
		}

		json.NewEncoder(w).Encode(EnvelopeResult{
			EnvelopeID:      "env-123",
			ReferenceNumber: "REF-456",
			DocumentID:      "doc-789",
		})
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	result, err := svc.CreateEnvelope(EnvelopeRequest{
		Document: "ZmFrZQ==",
		Title:    "NDA - Inventory System",
		Signers: []Signer{
			{Role: "company", Name: "Tech Co", Email: "co@example.sa"},
			{Role: "entrepreneur", Name: "Owner", Email: "owner@example.sa"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EnvelopeID != "env-123" || result.ReferenceNumber != "REF-456" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCreateEnvelopeValidationRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid phone number"})
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	_, err := svc.CreateEnvelope(EnvelopeRequest{})
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if apperrors.IsRetryable(err) {
		t.Fatalf("data rejections must not be retryable")
	}
}

func TestCreateEnvelopeServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	_, err := svc.CreateEnvelope(EnvelopeRequest{})
	if !apperrors.IsKind(err, apperrors.KindProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if !apperrors.IsRetryable(err) {
		t.Fatalf("5xx responses should be retryable")
	}
}

func TestCreateEnvelopeUnreachableIsRetryable(t *testing.T) {
	svc := newTestService("http://127.0.0.1:1") // nothing listens here
	_, err := svc.CreateEnvelope(EnvelopeRequest{})
	if !apperrors.IsRetryable(err) {
		t.Fatalf("network failure should be retryable, got %v", err)
	}
}

func TestCreateEnvelopeMissingIdentifiers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(EnvelopeResult{})
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	_, err := svc.CreateEnvelope(EnvelopeRequest{})
	if !apperrors.IsKind(err, apperrors.KindProvider) {
		t.Fatalf("a 2xx without identifiers is still a provider failure, got %v", err)
	}
}

func TestGetEnvelopeStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/envelopes/REF-456/status" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(EnvelopeStatus{
			Status:       "in-progress",
			SigningStats: &SigningStats{CompletionPercentage: 50},
		})
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	status, err := svc.GetEnvelopeStatus("REF-456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Status != "in-progress" {
		t.Fatalf("unexpected status: %q", status.Status)
	}
}

func TestGetEnvelopeStatusNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := newTestService(server.URL)
	_, err := svc.GetEnvelopeStatus("missing")
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestBuildSigningURL(t *testing.T) {
	svc := newTestService("")
	if got := svc.BuildSigningURL("env-123"); got != "https://sign.example.sa/sign/env-123" {
		t.Fatalf("unexpected signing URL: %q", got)
	}

	svc.SigningURL = "https://sign.example.sa/sign/"
	if got := svc.BuildSigningURL("env-123"); got != "https://sign.example.sa/sign/env-123" {
		t.Fatalf("trailing slash should not double up: %q", got)
	}
}

func TestTranslateStatus(t *testing.T) {
	cases := []struct {
		provider string
		want     LocalOutcome
	}{
		{"completed", OutcomeCompleted},
		{"Signed", OutcomeCompleted},
		{"in-progress", OutcomePending},
		{"sent", OutcomePending},
		{"expired", OutcomeExpired},
		{"timed-out", OutcomeExpired},
		{"declined", OutcomeRejected},
		{"voided", OutcomeRejected},
		{" CANCELLED ", OutcomeRejected},
		{"some-new-substatus", OutcomePending},
		{"", OutcomePending},
	}

	for _, tc := range cases {
		if got := TranslateStatus(tc.provider); got != tc.want {
			t.Errorf("TranslateStatus(%q) = %q, want %q", tc.provider, got, tc.want)
		}
	}
}
