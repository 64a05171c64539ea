package contracts

import (
	"time"

	"gorm.io/gorm"
)

// Payment modes a pricing option can carry. The mode decides whether a
// subscription is ever created for the option.
const (
	ModeDepositOnly         = "deposit_only"
	ModeDepositAndRecurring = "deposit_and_recurring"
	ModeRecurringImmediate  = "recurring_immediate"
)

const (
	BillingMonthly   = "Monthly"
	BillingQuarterly = "Quarterly"
	BillingYearly    = "Yearly"
)

type Contract struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UniqueID  string `gorm:"column:unique_id;not null;uniqueIndex:idx_contracts_unique_id" json:"unique_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`

	Signed           bool    `gorm:"not null;default:false" json:"signed"`
	SelectedOptionID *uint   `gorm:"column:selected_option_id" json:"selected_option_id"`
	StripeCustomerID *string `gorm:"column:stripe_customer_id" json:"stripe_customer_id,omitempty"`

	PricingOptions []PricingOption `gorm:"foreignKey:ContractID" json:"pricing_options,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type PricingOption struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ContractID uint `gorm:"not null;index" json:"contract_id"`

	Price         float64 `gorm:"not null" json:"price"`
	PaymentMode   string  `gorm:"type:varchar(32);not null" json:"payment_mode"`
	DepositAmount float64 `json:"deposit_amount"`
	BillingType   string  `gorm:"type:varchar(16)" json:"billing_type"` // Monthly | Quarterly | Yearly

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func ValidPaymentMode(mode string) bool {
	switch mode {
	case ModeDepositOnly, ModeDepositAndRecurring, ModeRecurringImmediate:
		return true
	}
	return false
}

// RequiresSubscription reports whether a successful charge for this option
// must be followed by creating a recurring subscription.
func (o *PricingOption) RequiresSubscription() bool {
	return o.PaymentMode == ModeDepositAndRecurring || o.PaymentMode == ModeRecurringImmediate
}

// ChargeAmount is the amount of the initial one-time charge. deposit_only and
// deposit_and_recurring charge the deposit (falling back to the full price
// when no deposit is set); recurring_immediate charges the full price.
func (o *PricingOption) ChargeAmount() float64 {
	if o.PaymentMode == ModeRecurringImmediate {
		return o.Price
	}
	if o.DepositAmount > 0 {
		return o.DepositAmount
	}
	return o.Price
}
