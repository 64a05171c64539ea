package payments

import (
	"errors"
	"fmt"
	"net/http"

	"livewright-backend/internal/domain/billing"
	"livewright-backend/internal/domain/contracts"
	"livewright-backend/internal/infra/stripegw"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConfirmPayment verifies the charge succeeded on Stripe's side, then in one
// transaction records the ledger row, provisions the subscription when the
// payment mode calls for one, and marks the contract signed. Any failure
// inside the transaction (including Stripe rejecting the subscription) rolls
// everything back so the contract is never left half-signed.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	var body struct {
		ContractUID     string `json:"contract_uid" binding:"required"`
		PricingOptionID uint   `json:"pricing_option_id" binding:"required"`
		PaymentIntentID string `json:"payment_intent_id" binding:"required"`
		PaymentMethodID string `json:"payment_method_id"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		Email           string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing contract_uid, pricing_option_id or payment_intent_id"})
		return
	}

	contract, option, err := h.resolveContractAndOption(body.ContractUID, body.PricingOptionID)
	if err != nil {
		if errors.Is(err, errNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contract or pricing option not found"})
			return
		}
		h.Log.Error("contract lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
		return
	}

	intent, err := h.Gateway.GetPaymentIntent(body.PaymentIntentID)
	if err != nil {
		h.respondGatewayError(c, "get payment intent", err)
		return
	}
	if intent.Status != stripegw.StatusSucceeded {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Payment has not completed",
			"status": intent.Status,
		})
		return
	}

	paymentType := billing.TypeDeposit
	if option.PaymentMode == contracts.ModeRecurringImmediate {
		paymentType = billing.TypeSubscriptionFirst
	}

	var payment billing.Payment
	var subscriptionID *string

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		// The webhook may have recorded this payment already; reuse its row
		// instead of inserting a duplicate.
		err := tx.Where("stripe_payment_intent_id = ?", intent.ID).First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			payment = billing.Payment{
				ContractID:            contract.ID,
				PricingOptionID:       option.ID,
				StripeCustomerID:      intent.CustomerID,
				StripePaymentIntentID: intent.ID,
				Amount:                intent.Amount,
				Status:                stripegw.NormalizeStatus(intent.Status),
				PaymentType:           paymentType,
				Metadata:              metadataToJSON(intent.Metadata),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if option.RequiresSubscription() && body.PaymentMethodID != "" &&
			(payment.StripeSubscriptionID == nil || *payment.StripeSubscriptionID == "") {
			interval, count := stripegw.BillingInterval(option.BillingType)
			sub, err := h.Gateway.CreateSubscription(stripegw.SubscriptionParams{
				CustomerID:      intent.CustomerID,
				PaymentMethodID: body.PaymentMethodID,
				Amount:          option.Price,
				Interval:        interval,
				IntervalCount:   count,
				Metadata: map[string]string{
					"contract_id":       fmt.Sprint(contract.ID),
					"pricing_option_id": fmt.Sprint(option.ID),
				},
			})
			if err != nil {
				return err
			}
			if err := tx.Model(&billing.Payment{}).
				Where("id = ?", payment.ID).
				Update("stripe_subscription_id", sub.ID).Error; err != nil {
				return err
			}
			payment.StripeSubscriptionID = &sub.ID
		}
		subscriptionID = payment.StripeSubscriptionID

		updates := map[string]interface{}{
			"signed":             true,
			"selected_option_id": option.ID,
		}
		if body.FirstName != "" {
			updates["first_name"] = body.FirstName
		}
		if body.LastName != "" {
			updates["last_name"] = body.LastName
		}
		if body.Email != "" {
			updates["email"] = body.Email
		}
		if intent.CustomerID != "" {
			updates["stripe_customer_id"] = intent.CustomerID
		}

		return tx.Model(&contracts.Contract{}).
			Where("id = ?", contract.ID).
			Updates(updates).Error
	})
	if err != nil {
		h.respondGatewayError(c, "confirm payment", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"payment_id":      payment.ID,
		"subscription_id": subscriptionID,
		"message":         "Payment recorded and contract signed",
	})
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
