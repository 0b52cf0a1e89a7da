package billing

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	stripecustomer "github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/invoice"

	"github.com/semanticallynull/bikely-backend/user"
)

// Customers resolves and records the Stripe customer of a user.
type Customers interface {
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	AddStripeIDToUser(ctx context.Context, id uuid.UUID, stripeID string) error
}

// Stripe invoices rentals and charges the customer's default payment method.
type Stripe struct {
	customers Customers
}

func NewStripe(key string, customers Customers) *Stripe {
	stripe.Key = key
	return &Stripe{customers: customers}
}

func (s *Stripe) InvoiceRental(ctx context.Context, inv Invoice) error {
	customerID, err := s.customerID(ctx, inv.UserID)
	if err != nil {
		return err
	}

	params := &stripe.InvoiceParams{
		Customer: stripe.String(customerID),
		Currency: stripe.String("rsd"),
	}
	params.AddMetadata("rental_id", inv.RentalID.String())
	in, err := invoice.New(params)
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}

	minutes := int(math.Ceil(inv.Duration.Minutes()))
	_, err = invoice.AddLines(in.ID, &stripe.InvoiceAddLinesParams{
		Lines: []*stripe.InvoiceAddLinesLineParams{
			{
				Amount:      stripe.Int64(MinorUnits(inv.Amount)),
				Description: stripe.String(fmt.Sprintf("%s - %d minutes", inv.BikeName, minutes)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("add invoice lines: %w", err)
	}

	if _, err = invoice.FinalizeInvoice(in.ID, &stripe.InvoiceFinalizeInvoiceParams{}); err != nil {
		return fmt.Errorf("finalize invoice: %w", err)
	}
	if _, err = invoice.Pay(in.ID, nil); err != nil {
		return fmt.Errorf("pay invoice: %w", err)
	}
	return nil
}

func (s *Stripe) customerID(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := s.customers.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.StripeID.Valid {
		return u.StripeID.String, nil
	}

	c, err := stripecustomer.New(&stripe.CustomerParams{
		Email: stripe.String(u.Email),
		Name:  stripe.String(u.FirstName + " " + u.LastName),
		Metadata: map[string]string{
			"id":       u.ID.String(),
			"username": u.Username,
		},
	})
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.customers.AddStripeIDToUser(ctx, u.ID, c.ID); err != nil {
		return "", err
	}
	return c.ID, nil
}

// MinorUnits converts an amount to the smallest currency unit Stripe expects.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
