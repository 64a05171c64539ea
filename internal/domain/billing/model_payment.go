package billing

import (
	"time"

	"gorm.io/datatypes"
)

// Payment types recorded on the ledger.
const (
	TypeDeposit               = "deposit"
	TypeSubscriptionFirst     = "subscription_first"
	TypeSubscriptionRecurring = "subscription_recurring"
	TypeOneTime               = "one_time"
)

// Payment is an append-only ledger row for one successful charge. Rows are
// never deleted; cancellation is recorded by annotating Metadata.
// StripePaymentIntentID is the idempotency guard between the confirm endpoint
// and the webhook: whichever writer inserts first wins, the other no-ops.
type Payment struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	ContractID      uint `gorm:"not null;index" json:"contract_id"`
	PricingOptionID uint `gorm:"not null" json:"pricing_option_id"`

	StripeCustomerID      string  `gorm:"column:stripe_customer_id" json:"stripe_customer_id"`
	StripePaymentIntentID string  `gorm:"column:stripe_payment_intent_id;not null;uniqueIndex:idx_payments_stripe_payment_intent_id" json:"stripe_payment_intent_id"`
	StripeSubscriptionID  *string `gorm:"column:stripe_subscription_id;index" json:"stripe_subscription_id,omitempty"`

	Amount      float64           `gorm:"not null" json:"amount"`
	Status      string            `json:"status"`
	PaymentType string            `gorm:"type:varchar(32);not null" json:"payment_type"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
