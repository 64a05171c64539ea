package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChargeAmount(t *testing.T) {
	depositOnly := PricingOption{PaymentMode: ModeDepositOnly, Price: 1200, DepositAmount: 300}
	assert.InDelta(t, 300, depositOnly.ChargeAmount(), 0.001)

	// Zero deposit falls back to the full price.
	noDeposit := PricingOption{PaymentMode: ModeDepositOnly, Price: 1200}
	assert.InDelta(t, 1200, noDeposit.ChargeAmount(), 0.001)

	depositRecurring := PricingOption{PaymentMode: ModeDepositAndRecurring, Price: 500, DepositAmount: 100}
	assert.InDelta(t, 100, depositRecurring.ChargeAmount(), 0.001)

	// recurring_immediate always charges the full price, deposit ignored.
	recurring := PricingOption{PaymentMode: ModeRecurringImmediate, Price: 99, DepositAmount: 10}
	assert.InDelta(t, 99, recurring.ChargeAmount(), 0.001)
}

func TestRequiresSubscription(t *testing.T) {
	assert.False(t, (&PricingOption{PaymentMode: ModeDepositOnly}).RequiresSubscription())
	assert.True(t, (&PricingOption{PaymentMode: ModeDepositAndRecurring}).RequiresSubscription())
	assert.True(t, (&PricingOption{PaymentMode: ModeRecurringImmediate}).RequiresSubscription())
}

func TestValidPaymentMode(t *testing.T) {
	assert.True(t, ValidPaymentMode(ModeDepositOnly))
	assert.True(t, ValidPaymentMode(ModeDepositAndRecurring))
	assert.True(t, ValidPaymentMode(ModeRecurringImmediate))
	assert.False(t, ValidPaymentMode("pay_whenever"))
	assert.False(t, ValidPaymentMode(""))
}
