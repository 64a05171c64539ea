package payments

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"livewright-backend/internal/domain/billing"
	"livewright-backend/internal/domain/contracts"
	"livewright-backend/internal/infra/stripegw"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreatePaymentIntent creates the Stripe-side payment object for a chosen
// pricing option. Nothing is persisted locally here beyond the contract's
// Stripe customer id; the ledger row is written at confirm/webhook time.
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var body struct {
		ContractUID     string `json:"contract_uid" binding:"required"`
		PricingOptionID uint   `json:"pricing_option_id" binding:"required"`
		Email           string `json:"email"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing contract_uid or pricing_option_id"})
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

	customerID, err := h.ensureCustomer(contract, body.Email, body.FirstName, body.LastName)
	if err != nil {
		h.respondGatewayError(c, "create customer", err)
		return
	}

	amount := option.ChargeAmount()
	metadata := map[string]string{
		"contract_id":       fmt.Sprint(contract.ID),
		"pricing_option_id": fmt.Sprint(option.ID),
	}

	intentType := "deposit"
	switch option.PaymentMode {
	case contracts.ModeDepositOnly:
		metadata["payment_type"] = billing.TypeDeposit

	case contracts.ModeDepositAndRecurring:
		metadata["payment_type"] = billing.TypeDeposit
		metadata["create_subscription"] = "true"
		metadata["recurring_amount"] = strconv.FormatFloat(option.Price, 'f', 2, 64)

	case contracts.ModeRecurringImmediate:
		intentType = "recurring"
		metadata["payment_type"] = billing.TypeSubscriptionFirst
		metadata["create_subscription"] = "true"
		metadata["recurring_amount"] = strconv.FormatFloat(option.Price, 'f', 2, 64)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown payment mode on pricing option"})
		return
	}

	intent, err := h.Gateway.CreatePaymentIntent(stripegw.IntentParams{
		CustomerID: customerID,
		Amount:     amount,
		Metadata:   metadata,
	})
	if err != nil {
		h.respondGatewayError(c, "create payment intent", err)
		return
	}

	resp := gin.H{
		"customer_id":       customerID,
		"payment_mode":      option.PaymentMode,
		"client_secret":     intent.ClientSecret,
		"payment_intent_id": intent.ID,
		"amount":            amount,
		"type":              intentType,
	}
	if option.RequiresSubscription() {
		resp["recurring_amount"] = option.Price
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) respondGatewayError(c *gin.Context, op string, err error) {
	if ge, ok := stripegw.AsGatewayError(err); ok {
		h.Log.Error("stripe call failed", zap.String("op", op), zap.String("code", ge.Code), zap.String("msg", ge.Message))
		c.JSON(http.StatusInternalServerError, gin.H{"error": ge.Message})
		return
	}
	h.Log.Error("unexpected error", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
}
