package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wathiq/b2b-platform/internal/apperrors"
	"github.com/wathiq/b2b-platform/internal/config"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/models"
	"github.com/wathiq/b2b-platform/internal/services/sadiq"
	"gorm.io/gorm"
)

// SignatureBridge is the slice of the Sadiq client the lifecycle needs.
// Narrowed to an interface so tests can substitute a fake provider.
type SignatureBridge interface {
	CreateEnvelope(req sadiq.EnvelopeRequest) (*sadiq.EnvelopeResult, error)
	GetEnvelopeStatus(referenceNumber string) (*sadiq.EnvelopeStatus, error)
	BuildSigningURL(envelopeID string) string
}

// AgreementRenderer produces the agreement document submitted to the
// provider alongside the signers.
type AgreementRenderer interface {
	RenderAgreementPDF(agreement *models.NdaAgreement, project *models.Project) (pdfPath string, base64Doc string, err error)
}

// LifecycleNotifier receives fire-and-forget transition events. The
// state machine never depends on delivery.
type LifecycleNotifier interface {
	NdaRequested(owner *models.User, project *models.Project, agreement *models.NdaAgreement)
	NdaInvitationSent(company *models.User, project *models.Project, agreement *models.NdaAgreement)
	NdaCompleted(company, owner *models.User, project *models.Project, agreement *models.NdaAgreement)
	NdaCancelled(company, owner *models.User, project *models.Project, agreement *models.NdaAgreement)
}

// NdaService drives the agreement lifecycle:
//
//	awaiting_entrepreneur -> invitation_sent -> signed
//
// with cancelled/expired absorbing from any non-terminal state. All
// transitions are guarded conditional updates keyed on the current
// stored status, so concurrent callers converge instead of racing.
type NdaService struct {
	config   *config.Config
	profiles *ProfileService
	bridge   SignatureBridge
	cache    *sadiq.StatusCache
	renderer AgreementRenderer
	notifier LifecycleNotifier
}

func NewNdaService(cfg *config.Config, profiles *ProfileService, bridge SignatureBridge, cache *sadiq.StatusCache, renderer AgreementRenderer, notifier LifecycleNotifier) *NdaService {
	return &NdaService{
		config:   cfg,
		profiles: profiles,
		bridge:   bridge,
		cache:    cache,
		renderer: renderer,
		notifier: notifier,
	}
}

// InitiateAgreement creates (or reuses) the NDA agreement for a
// (project, company) pair. Idempotent: a second call while the first
// agreement is still live returns the existing record. The company's
// signer info is snapshotted from the profile at this moment.
func (s *NdaService) InitiateAgreement(projectID, companyUserID uuid.UUID) (*models.NdaAgreement, error) {
	db := database.GetDB()

	var project models.Project
	if err := db.First(&project, "id = ?", projectID).Error; err != nil {
		return nil, apperrors.NotFound("project not found")
	}
	if !project.RequiresNda {
		return nil, apperrors.Precondition("this project does not require a confidentiality agreement")
	}
	if project.Status != models.ProjectStatusApproved {
		return nil, apperrors.Precondition("project is not open for agreements")
	}

	company, err := s.profiles.CheckSigningEligibility(companyUserID)
	if err != nil {
		return nil, err
	}

	var existing models.NdaAgreement
	err = db.First(&existing, "project_id = ? AND company_user_id = ?", projectID, companyUserID).Error
	if err == nil {
		if existing.Status == models.NdaStatusCancelled || existing.Status == models.NdaStatusExpired {
			// Re-initiation after a terminal failure reuses the row:
			// fresh snapshot, envelope correlation cleared.
			updates := map[string]interface{}{
				"status":                 models.NdaStatusAwaitingEntrepreneur,
				"company_signer_name":    company.FullName,
				"company_signer_email":   company.Email,
				"company_signer_phone":   company.Phone,
				"company_name":           company.CompanyName,
				"sadiq_envelope_id":      "",
				"sadiq_reference_number": "",
				"sadiq_document_id":      "",
				"envelope_status":        "",
				"signed_at":              nil,
				"expires_at":             nil,
			}
			if err := db.Model(&existing).Updates(updates).Error; err != nil {
				return nil, err
			}
			if err := db.First(&existing, "id = ?", existing.ID).Error; err != nil {
				return nil, err
			}
			s.notifyRequested(&project, &existing)
		}
		// Live agreement: no-op, same record for both callers.
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	agreement := &models.NdaAgreement{
		ProjectID:          projectID,
		CompanyUserID:      companyUserID,
		EntrepreneurUserID: project.OwnerID,
		Status:             models.NdaStatusAwaitingEntrepreneur,
		CompanySignerName:  company.FullName,
		CompanySignerEmail: company.Email,
		CompanySignerPhone: company.Phone,
		CompanyName:        company.CompanyName,
	}

	if err := db.Create(agreement).Error; err != nil {
		// Two concurrent initiations race on the (project, company)
		// unique index; the loser observes the winner's row.
		var winner models.NdaAgreement
		if qerr := db.First(&winner, "project_id = ? AND company_user_id = ?", projectID, companyUserID).Error; qerr == nil {
			return &winner, nil
		}
		return nil, err
	}

	s.notifyRequested(&project, agreement)
	return agreement, nil
}

// EntrepreneurInfo is the counterparty data the signature provider
// requires from the project owner.
type EntrepreneurInfo struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id"`
	BirthDate  string `json:"birth_date"`
	Address    string `json:"address"`
}

func (info EntrepreneurInfo) missingFields() []string {
	fields := map[string]string{
		"name":        info.Name,
		"phone":       info.Phone,
		"national_id": info.NationalID,
		"birth_date":  info.BirthDate,
		"address":     info.Address,
	}
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// CompleteEntrepreneurInfo records the owner's legal data and, on
// success of the envelope-creation call, advances the agreement to
// invitation_sent. A bridge failure leaves the stored status (and the
// persisted info) untouched so the submission can be retried.
func (s *NdaService) CompleteEntrepreneurInfo(agreementID, callerID uuid.UUID, info EntrepreneurInfo) (*models.NdaAgreement, error) {
	db := database.GetDB()

	var agreement models.NdaAgreement
	if err := db.Preload("Project").First(&agreement, "id = ?", agreementID).Error; err != nil {
		return nil, apperrors.NotFound("agreement not found")
	}
	if agreement.Project == nil || agreement.Project.OwnerID != callerID {
		return nil, apperrors.Precondition("only the project owner can complete this agreement")
	}
	if agreement.Status != models.NdaStatusAwaitingEntrepreneur {
		return nil, apperrors.Precondition("agreement is not awaiting the project owner's information")
	}

	if missing := info.missingFields(); len(missing) > 0 {
		return nil, apperrors.Validation("required information is missing", missing...)
	}

	var owner models.User
	if err := db.First(&owner, "id = ?", callerID).Error; err != nil {
		return nil, apperrors.NotFound("owner profile not found")
	}

	// Persist the counterparty info before talking to the provider, so
	// a failed envelope call loses nothing.
	now := time.Now()
	infoUpdates := map[string]interface{}{
		"entrepreneur_name":        strings.TrimSpace(info.Name),
		"entrepreneur_email":       owner.Email,
		"entrepreneur_phone":       strings.TrimSpace(info.Phone),
		"entrepreneur_national_id": strings.TrimSpace(info.NationalID),
		"entrepreneur_birth_date":  strings.TrimSpace(info.BirthDate),
		"entrepreneur_address":     strings.TrimSpace(info.Address),
		"entrepreneur_done_at":     &now,
	}
	if err := db.Model(&agreement).Updates(infoUpdates).Error; err != nil {
		return nil, err
	}

	// Keep the profile authoritative through the single write path.
	if _, err := s.profiles.UpdatePersonalFields(callerID, PersonalFields{
		FullName:   info.Name,
		NationalID: info.NationalID,
		Phone:      info.Phone,
		BirthDate:  info.BirthDate,
		Address:    info.Address,
	}); err != nil {
		return nil, err
	}

	if err := db.First(&agreement, "id = ?", agreementID).Error; err != nil {
		return nil, err
	}

	pdfPath, base64Doc, err := s.renderer.RenderAgreementPDF(&agreement, agreement.Project)
	if err != nil {
		return nil, apperrors.Provider("failed to render agreement document", false, err)
	}

	result, err := s.bridge.CreateEnvelope(sadiq.EnvelopeRequest{
		Document: base64Doc,
		Title:    "NDA - " + agreement.Project.Title,
		Signers: []sadiq.Signer{
			{Role: "company", Name: agreement.CompanySignerName, Email: agreement.CompanySignerEmail, Phone: agreement.CompanySignerPhone},
			{Role: "entrepreneur", Name: agreement.EntrepreneurName, Email: agreement.EntrepreneurEmail, Phone: agreement.EntrepreneurPhone},
		},
	})
	if err != nil {
		// Surfaced as-is: validation if the provider blamed the data,
		// retryable provider error otherwise. Status stays put.
		return nil, err
	}

	// The bridge call held no lock; commit the transition in one short
	// guarded write. RowsAffected==0 means someone else moved the
	// agreement meanwhile and this envelope is ignored.
	res := db.Model(&models.NdaAgreement{}).
		Where("id = ? AND status = ?", agreementID, models.NdaStatusAwaitingEntrepreneur).
		Updates(map[string]interface{}{
			"status":                 models.NdaStatusInvitationSent,
			"sadiq_envelope_id":      result.EnvelopeID,
			"sadiq_reference_number": result.ReferenceNumber,
			"sadiq_document_id":      result.DocumentID,
			"envelope_status":        "sent",
			"pdf_url":                pdfPath,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	if err := db.Preload("Project").First(&agreement, "id = ?", agreementID).Error; err != nil {
		return nil, err
	}

	if res.RowsAffected > 0 {
		var company models.User
		if err := db.First(&company, "id = ?", agreement.CompanyUserID).Error; err == nil && s.notifier != nil {
			s.notifier.NdaInvitationSent(&company, agreement.Project, &agreement)
		}
	}
	return &agreement, nil
}

// RefreshSignatureStatus polls the provider (through the read-through
// cache) and folds the result into local state. Safe to call from any
// number of concurrent viewers; the stored status only ever advances.
func (s *NdaService) RefreshSignatureStatus(agreementID uuid.UUID) (*models.NdaAgreement, error) {
	db := database.GetDB()

	var agreement models.NdaAgreement
	if err := db.Preload("Project").First(&agreement, "id = ?", agreementID).Error; err != nil {
		return nil, apperrors.NotFound("agreement not found")
	}

	// Terminal states absorb; nothing a stale provider response says
	// can move them.
	if agreement.IsTerminal() || agreement.SadiqReferenceNumber == "" {
		return &agreement, nil
	}

	status, cached := s.cache.Get(agreement.SadiqReferenceNumber)
	if !cached {
		var err error
		status, err = s.bridge.GetEnvelopeStatus(agreement.SadiqReferenceNumber)
		if err != nil {
			return nil, err
		}
		s.cache.Put(agreement.SadiqReferenceNumber, status)
	}

	switch sadiq.TranslateStatus(status.Status) {
	case sadiq.OutcomeCompleted:
		now := time.Now()
		updates := map[string]interface{}{
			"status":          models.NdaStatusSigned,
			"signed_at":       &now,
			"envelope_status": status.Status,
		}
		if s.config.NdaValidityMonths > 0 {
			expires := now.AddDate(0, s.config.NdaValidityMonths, 0)
			updates["expires_at"] = &expires
		}
		res := db.Model(&models.NdaAgreement{}).
			Where("id = ? AND status = ?", agreementID, models.NdaStatusInvitationSent).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			s.cache.Invalidate(agreement.SadiqReferenceNumber)
			s.notifyCompleted(&agreement)
		}
	case sadiq.OutcomeExpired:
		s.absorb(agreementID, models.NdaStatusExpired, status.Status)
	case sadiq.OutcomeRejected:
		s.absorb(agreementID, models.NdaStatusCancelled, status.Status)
	default:
		db.Model(&models.NdaAgreement{}).
			Where("id = ? AND status = ?", agreementID, models.NdaStatusInvitationSent).
			Update("envelope_status", status.Status)
	}

	if err := db.Preload("Project").First(&agreement, "id = ?", agreementID).Error; err != nil {
		return nil, err
	}
	return &agreement, nil
}

// Cancel moves a non-terminal agreement to cancelled. Allowed for the
// initiating company and administrators. Local cancellation is
// authoritative; the provider-side envelope is left to lapse on its
// own.
func (s *NdaService) Cancel(agreementID, callerID uuid.UUID, role models.UserRole) (*models.NdaAgreement, error) {
	db := database.GetDB()

	var agreement models.NdaAgreement
	if err := db.Preload("Project").First(&agreement, "id = ?", agreementID).Error; err != nil {
		return nil, apperrors.NotFound("agreement not found")
	}
	if role != models.RoleAdmin && agreement.CompanyUserID != callerID {
		return nil, apperrors.Precondition("only the initiating company or an administrator can cancel")
	}
	if agreement.IsTerminal() {
		return nil, apperrors.Precondition("agreement has already concluded")
	}

	res := db.Model(&models.NdaAgreement{}).
		Where("id = ? AND status IN ?", agreementID,
			[]models.NdaStatus{models.NdaStatusAwaitingEntrepreneur, models.NdaStatusInvitationSent}).
		Update("status", models.NdaStatusCancelled)
	if res.Error != nil {
		return nil, res.Error
	}

	if err := db.Preload("Project").First(&agreement, "id = ?", agreementID).Error; err != nil {
		return nil, err
	}
	if res.RowsAffected > 0 {
		if agreement.SadiqReferenceNumber != "" {
			s.cache.Invalidate(agreement.SadiqReferenceNumber)
		}
		s.notifyCancelled(&agreement)
	}
	return &agreement, nil
}

// GetByID loads an agreement with its project.
func (s *NdaService) GetByID(agreementID uuid.UUID) (*models.NdaAgreement, error) {
	db := database.GetDB()
	var agreement models.NdaAgreement
	if err := db.Preload("Project").First(&agreement, "id = ?", agreementID).Error; err != nil {
		return nil, apperrors.NotFound("agreement not found")
	}
	return &agreement, nil
}

// GetForCompany loads the agreement a company holds on a project, if
// any.
func (s *NdaService) GetForCompany(projectID, companyUserID uuid.UUID) (*models.NdaAgreement, error) {
	db := database.GetDB()
	var agreement models.NdaAgreement
	err := db.First(&agreement, "project_id = ? AND company_user_id = ?", projectID, companyUserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no agreement for this project")
		}
		return nil, err
	}
	return &agreement, nil
}

// ListByProject returns every agreement on a project, newest first.
// Used by the owner's dashboard and the admin surface.
func (s *NdaService) ListByProject(projectID uuid.UUID) ([]models.NdaAgreement, error) {
	db := database.GetDB()
	var agreements []models.NdaAgreement
	err := db.Where("project_id = ?", projectID).
		Preload("Company").
		Order("created_at DESC").
		Find(&agreements).Error
	return agreements, err
}

// SigningURL builds the human-facing signing page for an agreement
// whose invitation is out.
func (s *NdaService) SigningURL(agreement *models.NdaAgreement) string {
	if agreement.SadiqEnvelopeID == "" {
		return ""
	}
	return s.bridge.BuildSigningURL(agreement.SadiqEnvelopeID)
}

// absorb moves a still-active agreement into a terminal state.
func (s *NdaService) absorb(agreementID uuid.UUID, terminal models.NdaStatus, providerStatus string) {
	db := database.GetDB()
	db.Model(&models.NdaAgreement{}).
		Where("id = ? AND status IN ?", agreementID,
			[]models.NdaStatus{models.NdaStatusAwaitingEntrepreneur, models.NdaStatusInvitationSent}).
		Updates(map[string]interface{}{
			"status":          terminal,
			"envelope_status": providerStatus,
		})
}

func (s *NdaService) notifyRequested(project *models.Project, agreement *models.NdaAgreement) {
	if s.notifier == nil {
		return
	}
	db := database.GetDB()
	var owner models.User
	if err := db.First(&owner, "id = ?", project.OwnerID).Error; err != nil {
		return
	}
	s.notifier.NdaRequested(&owner, project, agreement)
}

func (s *NdaService) notifyCompleted(agreement *models.NdaAgreement) {
	if s.notifier == nil {
		return
	}
	db := database.GetDB()
	var company, owner models.User
	if err := db.First(&company, "id = ?", agreement.CompanyUserID).Error; err != nil {
		return
	}
	if err := db.First(&owner, "id = ?", agreement.EntrepreneurUserID).Error; err != nil {
		return
	}
	s.notifier.NdaCompleted(&company, &owner, agreement.Project, agreement)
}

func (s *NdaService) notifyCancelled(agreement *models.NdaAgreement) {
	if s.notifier == nil {
		return
	}
	db := database.GetDB()
	var company, owner models.User
	if err := db.First(&company, "id = ?", agreement.CompanyUserID).Error; err != nil {
		return
	}
	if err := db.First(&owner, "id = ?", agreement.EntrepreneurUserID).Error; err != nil {
		return
	}
	s.notifier.NdaCancelled(&company, &owner, agreement.Project, agreement)
}
