package stripewebhooks

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB     *gorm.DB
	Log    *zap.Logger
	Secret string
}

func NewHandler(db *gorm.DB, log *zap.Logger, secret string) *Handler {
	return &Handler{DB: db, Log: log, Secret: secret}
}

// StripeWebhook receives asynchronous processor events. Nothing in the raw
// body is trusted before the signature verifies against the endpoint secret.
func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.Secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}

	payload, err := readStripeBody(c, 65536)
	if err != nil {
		c.String(http.StatusServiceUnavailable, "Error reading request body")
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.Secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.Log.Warn("stripe signature verification failed", zap.Error(err))
		c.String(http.StatusBadRequest, "Signature verification failed")
		return
	}

	switch event.Type {
	case "charge.succeeded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			c.String(http.StatusBadRequest, "Failed to parse charge")
			return
		}
		if err := h.handleChargeSucceeded(&charge); err != nil {
			h.Log.Error("charge.succeeded handling failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

	case "invoice.paid":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			c.String(http.StatusBadRequest, "Failed to parse invoice")
			return
		}
		if err := h.handleInvoicePaid(&invoice); err != nil {
			h.Log.Error("invoice.paid handling failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			c.String(http.StatusBadRequest, "Failed to parse subscription")
			return
		}
		if err := h.handleSubscriptionDeleted(&sub); err != nil {
			h.Log.Error("customer.subscription.deleted handling failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

	default:
		// Acknowledge everything else so Stripe stops retrying.
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
