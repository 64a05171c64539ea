package stripewebhooks

import (
	"errors"
	"strconv"

	"livewright-backend/internal/domain/billing"
	"livewright-backend/internal/infra/stripegw"

	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// handleChargeSucceeded records a ledger row for a successful charge unless
// the confirm endpoint already did. Charges without our contract metadata
// belong to some other product and are ignored.
func (h *Handler) handleChargeSucceeded(charge *stripe.Charge) error {
	if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
		return nil
	}
	intentID := charge.PaymentIntent.ID

	var existing billing.Payment
	err := h.DB.Where("stripe_payment_intent_id = ?", intentID).First(&existing).Error
	if err == nil {
		// Already recorded by the confirm endpoint (or an earlier delivery).
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	contractID, optionID, ok := contractRefsFromMetadata(charge.Metadata)
	if !ok {
		h.Log.Debug("charge.succeeded without contract metadata, ignoring", zap.String("payment_intent", intentID))
		return nil
	}

	paymentType := charge.Metadata["payment_type"]
	if paymentType == "" {
		paymentType = billing.TypeOneTime
	}

	payment := billing.Payment{
		ContractID:            contractID,
		PricingOptionID:       optionID,
		StripePaymentIntentID: intentID,
		Amount:                float64(charge.Amount) / 100.0,
		Status:                stripegw.NormalizeStatus("succeeded"),
		PaymentType:           paymentType,
		Metadata:              metadataToJSON(charge.Metadata),
	}
	if charge.Customer != nil {
		payment.StripeCustomerID = charge.Customer.ID
	}

	// The unique index on stripe_payment_intent_id is the real guard against
	// racing the confirm endpoint; losing the race is a no-op.
	return insertPaymentIdempotent(h.DB, &payment)
}

func contractRefsFromMetadata(md map[string]string) (contractID, optionID uint, ok bool) {
	if md == nil {
		return 0, 0, false
	}
	cid, err := strconv.ParseUint(md["contract_id"], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	oid, err := strconv.ParseUint(md["pricing_option_id"], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return uint(cid), uint(oid), true
}

func metadataToJSON(md map[string]string) datatypes.JSONMap {
	if len(md) == 0 {
		return nil
	}
	out := datatypes.JSONMap{}
	for k, v := range md {
		out[k] = v
	}
	return out
}
