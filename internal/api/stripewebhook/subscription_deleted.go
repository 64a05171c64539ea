package stripewebhooks

import (
	"time"

	"livewright-backend/internal/domain/billing"

	"github.com/stripe/stripe-go/v75"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// handleSubscriptionDeleted annotates every ledger row tied to the canceled
// subscription. Rows are audit history and are never deleted.
func (h *Handler) handleSubscriptionDeleted(sub *stripe.Subscription) error {
	if sub.ID == "" {
		return nil
	}

	var payments []billing.Payment
	if err := h.DB.Where("stripe_subscription_id = ?", sub.ID).Find(&payments).Error; err != nil {
		return err
	}
	if len(payments) == 0 {
		return nil
	}

	// The annotation is one logical operation: either every row for the
	// subscription carries it or none does.
	canceledAt := time.Now().UTC().Format(time.RFC3339)
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		for i := range payments {
			md := payments[i].Metadata
			if md == nil {
				md = datatypes.JSONMap{}
			}
			md["canceled"] = "true"
			md["canceled_at"] = canceledAt

			if err := tx.Model(&billing.Payment{}).
				Where("id = ?", payments[i].ID).
				Update("metadata", md).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.Log.Info("subscription canceled, ledger annotated",
		zap.String("subscription", sub.ID),
		zap.Int("payments", len(payments)))
	return nil
}
