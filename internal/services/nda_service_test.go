package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/wathiq/b2b-platform/internal/apperrors"
	"github.com/wathiq/b2b-platform/internal/config"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/models"
	"github.com/wathiq/b2b-platform/internal/services/sadiq"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Project{},
		&models.NdaAgreement{},
		&models.Offer{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	database.DB = db
}

type fakeBridge struct {
	createCalls int
	createErr   error
	result      sadiq.EnvelopeResult

	statusCalls int
	statusErr   error
	status      sadiq.EnvelopeStatus
}

func (f *fakeBridge) CreateEnvelope(req sadiq.EnvelopeRequest) (*sadiq.EnvelopeResult, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	r := f.result
	return &r, nil
}

func (f *fakeBridge) GetEnvelopeStatus(referenceNumber string) (*sadiq.EnvelopeStatus, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	s := f.status
	return &s, nil
}

func (f *fakeBridge) BuildSigningURL(envelopeID string) string {
	return "https://sign.example.sa/sign/" + envelopeID
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) RenderAgreementPDF(agreement *models.NdaAgreement, project *models.Project) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "/uploads/ndas/test.pdf", "ZmFrZS1wZGY=", nil
}

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) NdaRequested(owner *models.User, project *models.Project, agreement *models.NdaAgreement) {
	f.events = append(f.events, "requested")
}
func (f *fakeNotifier) NdaInvitationSent(company *models.User, project *models.Project, agreement *models.NdaAgreement) {
	f.events = append(f.events, "invitation_sent")
}
func (f *fakeNotifier) NdaCompleted(company, owner *models.User, project *models.Project, agreement *models.NdaAgreement) {
	f.events = append(f.events, "completed")
}
func (f *fakeNotifier) NdaCancelled(company, owner *models.User, project *models.Project, agreement *models.NdaAgreement) {
	f.events = append(f.events, "cancelled")
}

func testConfig() *config.Config {
	return &config.Config{
		NdaValidityMonths: 24,
		SadiqStatusCacheS: 30,
		AppName:           "Wathiq",
	}
}

func newLifecycleService(bridge *fakeBridge, notifier *fakeNotifier) *NdaService {
	cfg := testConfig()
	return NewNdaService(cfg, NewProfileService(cfg), bridge, sadiq.NewStatusCache(cfg), &fakeRenderer{}, notifier)
}

var userSeq int

func createCompany(t *testing.T, eligible bool) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Email:    fmt.Sprintf("company%d@example.sa", userSeq),
		Role:     models.RoleCompany,
		FullName: "Khalid Al-Harbi",
		Verified: eligible,
	}
	if eligible {
		user.Phone = "+966501112222"
		user.NationalID = "1098765432"
		user.BirthDate = "1985-02-20"
		user.Address = "Jeddah, Al Hamra"
		user.CommercialRegistry = "CR-4030123456"
		user.CompanyName = "Najd Software"
	}
	user.PasswordHash = "x"
	if err := database.GetDB().Create(user).Error; err != nil {
		t.Fatalf("failed to create company: %v", err)
	}
	return user
}

func createEntrepreneur(t *testing.T) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Email:        fmt.Sprintf("owner%d@example.sa", userSeq),
		Role:         models.RoleEntrepreneur,
		FullName:     "Noura Al-Subaie",
		PasswordHash: "x",
	}
	if err := database.GetDB().Create(user).Error; err != nil {
		t.Fatalf("failed to create entrepreneur: %v", err)
	}
	return user
}

func createProject(t *testing.T, ownerID uuid.UUID, requiresNda bool, status models.ProjectStatus) *models.Project {
	t.Helper()
	project := &models.Project{
		OwnerID:     ownerID,
		CategoryID:  uuid.New(),
		Title:       "Inventory Management System",
		Description: "Full stock tracking build",
		RequiresNda: requiresNda,
		Status:      status,
	}
	if err := database.GetDB().Create(project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	return project
}

func completeInfo() EntrepreneurInfo {
	return EntrepreneurInfo{
		Name:       "Noura Al-Subaie",
		Phone:      "+966503334444",
		NationalID: "1055443322",
		BirthDate:  "1992-07-01",
		Address:    "Riyadh, Al Malqa",
	}
}

func TestInitiateAgreementIsIdempotent(t *testing.T) {
	setupTestDB(t)
	svc := newLifecycleService(&fakeBridge{}, &fakeNotifier{})

	owner := createEntrepreneur(t)
	company := createCompany(t, true)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	first, err := svc.InitiateAgreement(project.ID, company.ID)
	if err != nil {
		t.Fatalf("first initiation failed: %v", err)
	}
	if first.Status != models.NdaStatusAwaitingEntrepreneur {
		t.Fatalf("expected awaiting_entrepreneur, got %s", first.Status)
	}
	if first.CompanySignerEmail != company.Email {
		t.Fatalf("signer snapshot not taken: %q", first.CompanySignerEmail)
	}

	second, err := svc.InitiateAgreement(project.ID, company.ID)
	if err != nil {
		t.Fatalf("repeat initiation failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("repeat initiation must return the same agreement")
	}

	var count int64
	database.GetDB().Model(&models.NdaAgreement{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one agreement row, got %d", count)
	}
}

func TestInitiateAgreementRequiresEligibleCompany(t *testing.T) {
	setupTestDB(t)
	svc := newLifecycleService(&fakeBridge{}, &fakeNotifier{})

	owner := createEntrepreneur(t)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	unverified := createCompany(t, false)
	_, err := svc.InitiateAgreement(project.ID, unverified.ID)
	if !apperrors.IsKind(err, apperrors.KindPrecondition) {
		t.Fatalf("unverified company should fail precondition, got %v", err)
	}

	// Verified but with incomplete legal identity
	partial := createCompany(t, true)
	database.GetDB().Model(partial).Update("national_id", "")
	_, err = svc.InitiateAgreement(project.ID, partial.ID)
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("incomplete identity should fail validation, got %v", err)
	}
	typed, _ := apperrors.AsError(err)
	if len(typed.Fields) != 1 || typed.Fields[0] != "national_id" {
		t.Fatalf("expected [national_id], got %v", typed.Fields)
	}
}

func TestInitiateAgreementChecksProject(t *testing.T) {
	setupTestDB(t)
	svc := newLifecycleService(&fakeBridge{}, &fakeNotifier{})

	owner := createEntrepreneur(t)
	company := createCompany(t, true)

	open := createProject(t, owner.ID, false, models.ProjectStatusApproved)
	if _, err := svc.InitiateAgreement(open.ID, company.ID); !apperrors.IsKind(err, apperrors.KindPrecondition) {
		t.Fatalf("project without NDA requirement should fail precondition, got %v", err)
	}

	draft := createProject(t, owner.ID, true, models.ProjectStatusDraft)
	if _, err := svc.InitiateAgreement(draft.ID, company.ID); !apperrors.IsKind(err, apperrors.KindPrecondition) {
		t.Fatalf("unapproved project should fail precondition, got %v", err)
	}

	if _, err := svc.InitiateAgreement(uuid.New(), company.ID); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Fatalf("missing project should be not_found, got %v", err)
	}
}

func TestReinitiationAfterCancelReusesRow(t *testing.T) {
	setupTestDB(t)
	notifier := &fakeNotifier{}
	svc := newLifecycleService(&fakeBridge{}, notifier)

	owner := createEntrepreneur(t)
	company := createCompany(t, true)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	agreement, err := svc.InitiateAgreement(project.ID, company.ID)
	if err != nil {
		t.Fatalf("initiation failed: %v", err)
	}
	if _, err := svc.Cancel(agreement.ID, company.ID, models.RoleCompany); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// Stale envelope correlation to prove the reset clears it
	database.GetDB().Model(&models.NdaAgreement{}).Where("id = ?", agreement.ID).
		Updates(map[string]interface{}{"sadiq_envelope_id": "env-old", "sadiq_reference_number": "REF-old"})

	fresh, err := svc.InitiateAgreement(project.ID, company.ID)
	if err != nil {
		t.Fatalf("re-initiation failed: %v", err)
	}
	if fresh.ID != agreement.ID {
		t.Fatalf("re-initiation should reuse the row")
	}
	if fresh.Status != models.NdaStatusAwaitingEntrepreneur {
		t.Fatalf("expected awaiting_entrepreneur, got %s", fresh.Status)
	}
	if fresh.SadiqEnvelopeID != "" || fresh.SadiqReferenceNumber != "" {
		t.Fatalf("envelope correlation must be cleared on reset")
	}
}

func TestCompleteEntrepreneurInfoGuards(t *testing.T) {
	setupTestDB(t)
	svc := newLifecycleService(&fakeBridge{}, &fakeNotifier{})

	owner := createEntrepreneur(t)
	company := createCompany(t, true)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	agreement, err := svc.InitiateAgreement(project.ID, company.ID)
	if err != nil {
		t.Fatalf("initiation failed: %v", err)
	}

	// Only the project owner may complete
	if _, err := svc.CompleteEntrepreneurInfo(agreement.ID, company.ID, completeInfo()); !apperrors.IsKind(err, apperrors.KindPrecondition) {
		t.Fatalf("non-owner completion should fail precondition, got %v", err)
	}

	// Missing fields are named
	partial := completeInfo()
	partial.NationalID = ""
	partial.Address = "  "
	_, err = svc.CompleteEntrepreneurInfo(agreement.ID, owner.ID, partial)
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	typed, _ := apperrors.AsError(err)
	if len(typed.Fields) != 2 {
		t.Fatalf("expected 2 missing fields, got %v", typed.Fields)
	}

	// Status stayed put through both failures
	refreshed, _ := svc.GetByID(agreement.ID)
	if refreshed.Status != models.NdaStatusAwaitingEntrepreneur {
		t.Fatalf("failed completion must not move status, got %s", refreshed.Status)
	}
}

func TestCompleteEntrepreneurInfoProviderFailureLeavesStateRetryable(t *testing.T) {
	setupTestDB(t)
	bridge := &fakeBridge{createErr: apperrors.Provider("signature provider unreachable", true, errors.New("dial timeout"))}
	notifier := &fakeNotifier{}
	svc := newLifecycleService(bridge, notifier)

	owner := createEntrepreneur(t)
	company := createCompany(t, true)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	agreement, err := svc.InitiateAgreement(project.ID, company.ID)
	if err != nil {
		t.Fatalf("initiation failed: %v", err)
	}

	_, err = svc.CompleteEntrepreneurInfo(agreement.ID, owner.ID, completeInfo())
	if !apperrors.IsRetryable(err) {
		t.Fatalf("bridge outage should surface as retryable, got %v", err)
	}

	stored, _ := svc.GetByID(agreement.ID)
	if stored.Status != models.NdaStatusAwaitingEntrepreneur {
		t.Fatalf("provider failure must leave status unchanged, got %s", stored.Status)
	}
	if stored.EntrepreneurNationalID == "" {
		t.Fatalf("entered info must survive the failed provider call")
	}

	// Retry against a recovered provider succeeds without re-entry
	bridge.createErr = nil
	bridge.result = sadiq.EnvelopeResult{EnvelopeID: "env-1", ReferenceNumber: "REF-1", DocumentID: "doc-1"}

	advanced, err := svc.CompleteEntrepreneurInfo(agreement.ID, owner.ID, completeInfo())
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if advanced.Status != models.NdaStatusInvitationSent {
		t.Fatalf("expected invitation_sent, got %s", advanced.Status)
	}
	if advanced.SadiqReferenceNumber != "REF-1" {
		t.Fatalf("envelope correlation missing: %+v", advanced)
	}
	if bridge.createCalls != 2 {
		t.Fatalf("expected 2 envelope attempts, got %d", bridge.createCalls)
	}

	found := false
	for _, e := range notifier.events {
		if e == "invitation_sent" {
			found = true
		}
	}
	if !found {
		t.Fatalf("company should be notified of the invitation, events: %v", notifier.events)
	}
}

func TestCompleteEntrepreneurInfoMirrorsProfile(t *testing.T) {
	setupTestDB(t)
	bridge := &fakeBridge{result: sadiq.EnvelopeResult{EnvelopeID: "env-1", ReferenceNumber: "REF-1", DocumentID: "doc-1"}}
	svc := newLifecycleService(bridge, &fakeNotifier{})

	owner := createEntrepreneur(t)
	company := createCompany(t, true)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	agreement, _ := svc.InitiateAgreement(project.ID, company.ID)
	if _, err := svc.CompleteEntrepreneurInfo(agreement.ID, owner.ID, completeInfo()); err != nil {
		t.Fatalf("completion failed: %v", err)
	}

	var stored models.User
	database.GetDB().First(&stored, "id = ?", owner.ID)
	if stored.NationalID != "1055443322" || stored.Address == "" {
		t.Fatalf("owner profile should mirror the entered legal data, got %+v", stored)
	}
}

func TestRefreshSignatureStatusSignsOnCompletion(t *testing.T) {
	setupTestDB(t)
	bridge := &fakeBridge{result: sadiq.EnvelopeResult{EnvelopeID: "env-1", ReferenceNumber: "REF-1", DocumentID: "doc-1"}}
	notifier := &fakeNotifier{}
	svc := newLifecycleService(bridge, notifier)

	owner := createEntrepreneur(t)
	company := createCompany(t, true)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	agreement, _ := svc.InitiateAgreement(project.ID, company.ID)
	if _, err := svc.CompleteEntrepreneurInfo(agreement.ID, owner.ID, completeInfo()); err != nil {
		t.Fatalf("completion failed: %v", err)
	}

	// Still pending on the provider side
	bridge.status = sadiq.EnvelopeStatus{Status: "in-progress"}
	pending, err := svc.RefreshSignatureStatus(agreement.ID)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if pending.Status != models.NdaStatusInvitationSent {
		t.Fatalf("pending envelope must not advance local state, got %s", pending.Status)
	}

	// Both parties signed
	bridge.status = sadiq.EnvelopeStatus{Status: "completed"}
	signed, err := svc.RefreshSignatureStatus(agreement.ID)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if signed.Status != models.NdaStatusSigned {
		t.Fatalf("expected signed, got %s", signed.Status)
	}
	if signed.SignedAt == nil {
		t.Fatalf("signed agreement must carry signed_at")
	}
	if signed.ExpiresAt == nil {
		t.Fatalf("validity window should be stamped at signing")
	}
	if !signed.GrantsAccess() {
		t.Fatalf("freshly signed agreement must grant access")
	}

	found := false
	for _, e := range notifier.events {
		if e == "completed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("both parties should be notified on completion, events: %v", notifier.events)
	}
}

func TestRefreshSignatureStatusAbsorbsRejection(t *testing.T) {
	setupTestDB(t)
	bridge := &fakeBridge{result: sadiq.EnvelopeResult{EnvelopeID: "env-1", ReferenceNumber: "REF-1", DocumentID: "doc-1"}}
	svc := newLifecycleService(bridge, &fakeNotifier{})

	owner := createEntrepreneur(t)
	company := createCompany(t, true)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	agreement, _ := svc.InitiateAgreement(project.ID, company.ID)
	svc.CompleteEntrepreneurInfo(agreement.ID, owner.ID, completeInfo())

	bridge.status = sadiq.EnvelopeStatus{Status: "declined"}
	rejected, err := svc.RefreshSignatureStatus(agreement.ID)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if rejected.Status != models.NdaStatusCancelled {
		t.Fatalf("declined envelope should cancel locally, got %s", rejected.Status)
	}

	// A later stale "completed" poll cannot resurrect the agreement
	bridge.status = sadiq.EnvelopeStatus{Status: "completed"}
	calls := bridge.statusCalls
	after, err := svc.RefreshSignatureStatus(agreement.ID)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if after.Status != models.NdaStatusCancelled {
		t.Fatalf("terminal state must absorb stale provider responses, got %s", after.Status)
	}
	if bridge.statusCalls != calls {
		t.Fatalf("terminal agreements must not be polled")
	}
}

func TestRefreshSignatureStatusProviderOutage(t *testing.T) {
	setupTestDB(t)
	bridge := &fakeBridge{result: sadiq.EnvelopeResult{EnvelopeID: "env-1", ReferenceNumber: "REF-1", DocumentID: "doc-1"}}
	svc := newLifecycleService(bridge, &fakeNotifier{})

	owner := createEntrepreneur(t)
	company := createCompany(t, true)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	agreement, _ := svc.InitiateAgreement(project.ID, company.ID)
	svc.CompleteEntrepreneurInfo(agreement.ID, owner.ID, completeInfo())

	bridge.statusErr = apperrors.Provider("signature provider unreachable", true, errors.New("dial timeout"))
	if _, err := svc.RefreshSignatureStatus(agreement.ID); !apperrors.IsRetryable(err) {
		t.Fatalf("outage during poll should be retryable, got %v", err)
	}

	stored, _ := svc.GetByID(agreement.ID)
	if stored.Status != models.NdaStatusInvitationSent {
		t.Fatalf("failed poll must leave local state alone, got %s", stored.Status)
	}
}

func TestCancelAuthorization(t *testing.T) {
	setupTestDB(t)
	svc := newLifecycleService(&fakeBridge{}, &fakeNotifier{})

	owner := createEntrepreneur(t)
	company := createCompany(t, true)
	stranger := createCompany(t, true)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	agreement, _ := svc.InitiateAgreement(project.ID, company.ID)

	if _, err := svc.Cancel(agreement.ID, stranger.ID, models.RoleCompany); !apperrors.IsKind(err, apperrors.KindPrecondition) {
		t.Fatalf("another company must not cancel, got %v", err)
	}

	cancelled, err := svc.Cancel(agreement.ID, company.ID, models.RoleCompany)
	if err != nil {
		t.Fatalf("own cancel failed: %v", err)
	}
	if cancelled.Status != models.NdaStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	// Second cancel is a precondition failure, not a silent no-op
	if _, err := svc.Cancel(agreement.ID, company.ID, models.RoleCompany); !apperrors.IsKind(err, apperrors.KindPrecondition) {
		t.Fatalf("double cancel should fail precondition, got %v", err)
	}
}

func TestAdminCanCancelAnyAgreement(t *testing.T) {
	setupTestDB(t)
	svc := newLifecycleService(&fakeBridge{}, &fakeNotifier{})

	owner := createEntrepreneur(t)
	company := createCompany(t, true)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	agreement, _ := svc.InitiateAgreement(project.ID, company.ID)

	cancelled, err := svc.Cancel(agreement.ID, uuid.New(), models.RoleAdmin)
	if err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
	if cancelled.Status != models.NdaStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestSigningURLOnlyAfterInvitation(t *testing.T) {
	setupTestDB(t)
	bridge := &fakeBridge{result: sadiq.EnvelopeResult{EnvelopeID: "env-1", ReferenceNumber: "REF-1", DocumentID: "doc-1"}}
	svc := newLifecycleService(bridge, &fakeNotifier{})

	owner := createEntrepreneur(t)
	company := createCompany(t, true)
	project := createProject(t, owner.ID, true, models.ProjectStatusApproved)

	agreement, _ := svc.InitiateAgreement(project.ID, company.ID)
	if url := svc.SigningURL(agreement); url != "" {
		t.Fatalf("no signing URL before the envelope exists, got %q", url)
	}

	advanced, _ := svc.CompleteEntrepreneurInfo(agreement.ID, owner.ID, completeInfo())
	if url := svc.SigningURL(advanced); url != "https://sign.example.sa/sign/env-1" {
		t.Fatalf("unexpected signing URL: %q", url)
	}
}
