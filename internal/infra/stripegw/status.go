package stripegw

import "strings"

const StatusSucceeded = "succeeded"

// NormalizeStatus collapses Stripe's payment-intent statuses into the buckets
// the ledger stores.
func NormalizeStatus(s string) string {
	switch strings.TrimSpace(s) {
	case "":
		return "none"
	case "succeeded":
		return "succeeded"
	case "processing":
		return "processing"
	case "requires_payment_method", "requires_confirmation", "requires_action":
		return "incomplete"
	case "canceled":
		return "canceled"
	default:
		return strings.TrimSpace(s)
	}
}

// BillingInterval maps a pricing option's billing type onto a Stripe
// recurring interval. Unknown values fall back to monthly.
func BillingInterval(billingType string) (interval string, count int64) {
	switch billingType {
	case "Quarterly":
		return "month", 3
	case "Yearly":
		return "year", 1
	default: // Monthly
		return "month", 1
	}
}
