package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/wathiq/b2b-platform/internal/config"
	"github.com/wathiq/b2b-platform/internal/database"
	"github.com/wathiq/b2b-platform/internal/models"
)

// PaymentService handles the per-project deposit an entrepreneur pays
// before bidding companies' identities are revealed.
type PaymentService struct {
	config *config.Config
}

func NewPaymentService(cfg *config.Config) *PaymentService {
	if cfg.StripeSecretKey != "" {
		stripe.Key = cfg.StripeSecretKey
	}
	return &PaymentService{config: cfg}
}

// CreateDepositIntent creates a Stripe payment intent for a project
// deposit.
func (s *PaymentService) CreateDepositIntent(entrepreneurID, projectID uuid.UUID) (*models.DepositPayment, string, error) {
	db := database.GetDB()

	var existing models.DepositPayment
	err := db.Where("entrepreneur_id = ? AND project_id = ? AND status = ?",
		entrepreneurID, projectID, models.PaymentStatusCompleted).First(&existing).Error
	if err == nil {
		return nil, "", errors.New("deposit already paid for this project")
	}

	payment := &models.DepositPayment{
		EntrepreneurID: entrepreneurID,
		ProjectID:      projectID,
		Amount:         s.config.DepositAmount,
		Currency:       s.config.DepositCurrency,
		Status:         models.PaymentStatusPending,
		Description:    "Project deposit - reveals bidding company identities",
	}

	if err := db.Create(payment).Error; err != nil {
		return nil, "", err
	}

	var clientSecret string
	if s.config.StripeSecretKey != "" {
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(payment.Amount),
			Currency: stripe.String(payment.Currency),
			Metadata: map[string]string{
				"payment_id":      payment.ID.String(),
				"entrepreneur_id": entrepreneurID.String(),
				"project_id":      projectID.String(),
			},
			AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
				Enabled: stripe.Bool(true),
			},
		}

		pi, err := paymentintent.New(params)
		if err != nil {
			db.Delete(payment)
			return nil, "", err
		}

		payment.StripePaymentID = pi.ID
		payment.StripeClientSecret = pi.ClientSecret
		clientSecret = pi.ClientSecret

		if err := db.Save(payment).Error; err != nil {
			return nil, "", err
		}
	} else {
		// Demo mode - no Stripe configured
		clientSecret = "demo_mode"
	}

	return payment, clientSecret, nil
}

// ConfirmDeposit marks a deposit as settled, verifying with Stripe
// when configured.
func (s *PaymentService) ConfirmDeposit(paymentID uuid.UUID, stripePaymentID string) (*models.DepositPayment, error) {
	db := database.GetDB()

	var payment models.DepositPayment
	if err := db.First(&payment, "id = ?", paymentID).Error; err != nil {
		return nil, errors.New("payment not found")
	}

	if payment.Status != models.PaymentStatusPending {
		return nil, errors.New("payment already processed")
	}

	if s.config.StripeSecretKey != "" && stripePaymentID != "" {
		pi, err := paymentintent.Get(stripePaymentID, nil)
		if err != nil {
			return nil, err
		}

		if pi.Status != stripe.PaymentIntentStatusSucceeded {
			return nil, errors.New("payment not successful")
		}

		if pi.LatestCharge != nil {
			payment.ReceiptURL = pi.LatestCharge.ReceiptURL
		}
	}

	now := time.Now()
	payment.Status = models.PaymentStatusCompleted
	payment.CompletedAt = &now

	if err := db.Save(&payment).Error; err != nil {
		return nil, err
	}

	return &payment, nil
}

// HasDeposit reports whether the entrepreneur settled the deposit for
// a project, which unblinds company identities on its offers.
func (s *PaymentService) HasDeposit(entrepreneurID, projectID uuid.UUID) bool {
	db := database.GetDB()

	var payment models.DepositPayment
	err := db.Where("entrepreneur_id = ? AND project_id = ? AND status = ?",
		entrepreneurID, projectID, models.PaymentStatusCompleted).First(&payment).Error
	return err == nil
}

// GetDepositHistory returns an entrepreneur's deposits, newest first.
func (s *PaymentService) GetDepositHistory(entrepreneurID uuid.UUID) ([]models.DepositPayment, error) {
	db := database.GetDB()

	var payments []models.DepositPayment
	err := db.Where("entrepreneur_id = ?", entrepreneurID).
		Order("created_at DESC").
		Find(&payments).Error

	return payments, err
}
