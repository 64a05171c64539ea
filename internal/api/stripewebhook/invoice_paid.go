package stripewebhooks

import (
	"errors"

	"livewright-backend/internal/domain/billing"
	"livewright-backend/internal/infra/stripegw"

	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// handleInvoicePaid records renewal charges for active subscriptions. The
// first invoice of a subscription is skipped: the confirm endpoint already
// recorded that charge when it created the subscription.
func (h *Handler) handleInvoicePaid(invoice *stripe.Invoice) error {
	if invoice.Subscription == nil || invoice.Subscription.ID == "" {
		return nil
	}
	if invoice.BillingReason == stripe.InvoiceBillingReasonSubscriptionCreate {
		return nil
	}
	subscriptionID := invoice.Subscription.ID

	// Recover contract/option linkage from the most recent payment carrying
	// this subscription id.
	var prior billing.Payment
	err := h.DB.Where("stripe_subscription_id = ?", subscriptionID).
		Order("created_at DESC").
		First(&prior).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.Log.Warn("invoice.paid for unknown subscription, ignoring", zap.String("subscription", subscriptionID))
		return nil
	}
	if err != nil {
		return err
	}

	reference := invoice.ID
	if invoice.PaymentIntent != nil && invoice.PaymentIntent.ID != "" {
		reference = invoice.PaymentIntent.ID
	}

	var existing billing.Payment
	if err := h.DB.Where("stripe_payment_intent_id = ?", reference).First(&existing).Error; err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	payment := billing.Payment{
		ContractID:            prior.ContractID,
		PricingOptionID:       prior.PricingOptionID,
		StripeCustomerID:      prior.StripeCustomerID,
		StripePaymentIntentID: reference,
		StripeSubscriptionID:  &subscriptionID,
		Amount:                float64(invoice.AmountPaid) / 100.0,
		Status:                stripegw.NormalizeStatus("succeeded"),
		PaymentType:           billing.TypeSubscriptionRecurring,
	}
	if invoice.Customer != nil && invoice.Customer.ID != "" {
		payment.StripeCustomerID = invoice.Customer.ID
	}

	return insertPaymentIdempotent(h.DB, &payment)
}

// insertPaymentIdempotent appends a ledger row, treating a lost race on the
// payment-reference unique index as already-done.
func insertPaymentIdempotent(db *gorm.DB, payment *billing.Payment) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_payment_intent_id"}},
		DoNothing: true,
	}).Create(payment).Error
}
