package billing

import (
	"context"
	"fmt"

	"clinicore/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"go.uber.org/zap"
)

// BillingService provisions billing state for newly onboarded clinics.
type BillingService interface {
	CreateCustomer(ctx context.Context, clinic *models.Clinic) (string, error)
}

// StripeBillingService implements BillingService against Stripe. The global
// stripe.Key is set at startup.
type StripeBillingService struct {
	Logger *zap.Logger
}

func NewStripeBillingService(logger *zap.Logger) *StripeBillingService {
	return &StripeBillingService{Logger: logger}
}

// CreateCustomer creates the Stripe customer that future subscription and
// invoice activity for the clinic attaches to.
func (b *StripeBillingService) CreateCustomer(ctx context.Context, clinic *models.Clinic) (string, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(clinic.Name),
		Email: stripe.String(clinic.Admin.Email),
		Phone: stripe.String(clinic.Admin.Phone),
	}
	params.Context = ctx
	params.AddMetadata("clinicId", clinic.ID)
	params.AddMetadata("registrationNumber", clinic.RegistrationNumber)

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe customer creation failed: %w", err)
	}

	b.Logger.Info("created billing customer",
		zap.String("clinicID", clinic.ID), zap.String("customerID", cust.ID))
	return cust.ID, nil
}
