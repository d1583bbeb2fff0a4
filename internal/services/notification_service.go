package services

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/wathiq/b2b-platform/internal/config"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/models"
	"gorm.io/datatypes"
)

// NotificationService persists in-app notification rows and mirrors
// lifecycle events to email. Everything here is fire-and-forget:
// failures are logged, never propagated back into a state transition.
type NotificationService struct {
	config *config.Config
	email  *EmailService
}

func NewNotificationService(cfg *config.Config, email *EmailService) *NotificationService {
	return &NotificationService{config: cfg, email: email}
}

func (s *NotificationService) emit(userID uuid.UUID, ntype models.NotificationType, title, content, actionURL string, metadata map[string]string) {
	raw, err := json.Marshal(metadata)
	if err != nil {
		raw = []byte("{}")
	}

	n := &models.Notification{
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Content:   content,
		ActionURL: actionURL,
		Metadata:  datatypes.JSON(raw),
	}
	if err := database.GetDB().Create(n).Error; err != nil {
		log.Printf("Warning: failed to store notification %s for %s: %v", ntype, userID, err)
	}
}

func agreementMetadata(agreement *models.NdaAgreement) map[string]string {
	return map[string]string{
		"project_id":   agreement.ProjectID.String(),
		"agreement_id": agreement.ID.String(),
	}
}

// NdaRequested fires when a company initiates an agreement and the
// project owner must complete their data.
func (s *NotificationService) NdaRequested(owner *models.User, project *models.Project, agreement *models.NdaAgreement) {
	s.emit(owner.ID, models.NotificationNdaRequest,
		"A company wants to view your project under NDA",
		fmt.Sprintf("A development company requested access to %q. Complete your information so the signing invitation can be sent.", project.Title),
		fmt.Sprintf("%s/projects/%s/nda", s.config.AppURL, project.ID),
		agreementMetadata(agreement))

	if err := s.email.SendNdaRequestEmail(owner, project); err != nil {
		log.Printf("Warning: nda request email failed: %v", err)
	}
}

// NdaInvitationSent fires when the envelope is created and the signing
// invitation is on its way to the company.
func (s *NotificationService) NdaInvitationSent(company *models.User, project *models.Project, agreement *models.NdaAgreement) {
	s.emit(company.ID, models.NotificationNdaInvitation,
		"Signing invitation sent, check your email",
		fmt.Sprintf("The signing invitation for %q is out. Project details unlock once both parties sign.", project.Title),
		fmt.Sprintf("%s/projects/%s", s.config.AppURL, project.ID),
		agreementMetadata(agreement))

	if err := s.email.SendNdaInvitationEmail(company, project, ""); err != nil {
		log.Printf("Warning: nda invitation email failed: %v", err)
	}
}

// NdaCompleted fires when the provider reports both parties signed.
func (s *NotificationService) NdaCompleted(company, owner *models.User, project *models.Project, agreement *models.NdaAgreement) {
	for _, recipient := range []*models.User{company, owner} {
		s.emit(recipient.ID, models.NotificationNdaCompleted,
			"Confidentiality agreement completed",
			fmt.Sprintf("The agreement for %q is fully signed. Full details are now unlocked.", project.Title),
			fmt.Sprintf("%s/projects/%s", s.config.AppURL, project.ID),
			agreementMetadata(agreement))

		if err := s.email.SendNdaCompletedEmail(recipient, project); err != nil {
			log.Printf("Warning: nda completed email failed: %v", err)
		}
	}
}

// NdaCancelled fires when an agreement is cancelled locally.
func (s *NotificationService) NdaCancelled(company, owner *models.User, project *models.Project, agreement *models.NdaAgreement) {
	for _, recipient := range []*models.User{company, owner} {
		s.emit(recipient.ID, models.NotificationNdaCancelled,
			"Confidentiality agreement cancelled",
			fmt.Sprintf("The agreement for %q has been cancelled.", project.Title),
			fmt.Sprintf("%s/projects/%s", s.config.AppURL, project.ID),
			agreementMetadata(agreement))
	}
}

// NewOffer fires when a company bids on a project. The company is not
// named; identity stays blinded until the owner's deposit settles.
func (s *NotificationService) NewOffer(owner *models.User, project *models.Project, offer *models.Offer) {
	s.emit(owner.ID, models.NotificationNewOffer,
		"New offer on your project",
		fmt.Sprintf("Your project %q received a new offer.", project.Title),
		fmt.Sprintf("%s/projects/%s/offers", s.config.AppURL, project.ID),
		map[string]string{"project_id": project.ID.String(), "offer_id": offer.ID.String()})

	if err := s.email.SendNewOfferEmail(owner, project); err != nil {
		log.Printf("Warning: new offer email failed: %v", err)
	}
}

// OfferResponded fires when the owner accepts or rejects an offer.
func (s *NotificationService) OfferResponded(company *models.User, project *models.Project, offer *models.Offer) {
	s.emit(company.ID, models.NotificationOfferResponse,
		fmt.Sprintf("Your offer was %s", offer.Status),
		fmt.Sprintf("The owner of %q responded to your offer.", project.Title),
		fmt.Sprintf("%s/offers/%s", s.config.AppURL, offer.ID),
		map[string]string{"project_id": project.ID.String(), "offer_id": offer.ID.String()})
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationService) ListForUser(userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	db := database.GetDB()
	query := db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	var notifications []models.Notification
	err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error
	return notifications, err
}

// MarkRead stamps a notification as read.
func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	db := database.GetDB()
	return db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read_at", database.GetDB().NowFunc()).Error
}
