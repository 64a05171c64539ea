package stripewebhooks

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"livewright-backend/internal/domain/billing"
	"livewright-backend/internal/domain/contracts"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "whsec_test_secret"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_wh_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&contracts.Contract{},
		&contracts.PricingOption{},
		&billing.Payment{},
	))
	return db
}

func newTestRouter(db *gorm.DB, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(db, zap.NewNop(), secret)
	r := gin.New()
	r.POST("/webhook", h.StripeWebhook)
	return r
}

func buildStripeSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, signature)
}

func deliver(t *testing.T, r *gin.Engine, payload []byte, header string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", header)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func deliverSigned(t *testing.T, r *gin.Engine, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	return deliver(t, r, payload, buildStripeSignatureHeader(testSecret, payload, time.Now().Unix()))
}

func chargeSucceededEvent(intentID string, metadata string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": "charge.succeeded",
		"data": {
			"object": {
				"id": "ch_1",
				"object": "charge",
				"amount": 30000,
				"customer": "cus_42",
				"payment_intent": %q,
				"metadata": %s
			}
		}
	}`, intentID, metadata))
}

func paymentCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&billing.Payment{}).Count(&count).Error)
	return count
}

func TestWebhookSecretUnconfigured(t *testing.T) {
	r := newTestRouter(setupTestDB(t), "")
	w := deliver(t, r, []byte(`{}`), "t=1,v1=abc")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebhookTamperedBodyRejected(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, testSecret)

	payload := chargeSucceededEvent("pi_1", `{"contract_id":"1","pricing_option_id":"2"}`)
	header := buildStripeSignatureHeader(testSecret, payload, time.Now().Unix())

	tampered := bytes.Replace(payload, []byte(`"amount": 30000`), []byte(`"amount": 1`), 1)
	w := deliver(t, r, tampered, header)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 0, paymentCount(t, db))
}

func TestWebhookChargeSucceededRecordsOnce(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, testSecret)

	payload := chargeSucceededEvent("pi_1", `{"contract_id":"7","pricing_option_id":"3","payment_type":"deposit"}`)

	w1 := deliverSigned(t, r, payload)
	require.Equal(t, http.StatusOK, w1.Code)
	assert.Contains(t, w1.Body.String(), `"received":true`)

	// Same event delivered again: must be a no-op, still a 200.
	w2 := deliverSigned(t, r, payload)
	require.Equal(t, http.StatusOK, w2.Code)

	require.EqualValues(t, 1, paymentCount(t, db))

	var payment billing.Payment
	require.NoError(t, db.Where("stripe_payment_intent_id = ?", "pi_1").First(&payment).Error)
	assert.EqualValues(t, 7, payment.ContractID)
	assert.EqualValues(t, 3, payment.PricingOptionID)
	assert.Equal(t, billing.TypeDeposit, payment.PaymentType)
	assert.InDelta(t, 300.0, payment.Amount, 0.001)
	assert.Equal(t, "cus_42", payment.StripeCustomerID)
}

func TestWebhookChargeSucceededDefaultsToOneTime(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, testSecret)

	payload := chargeSucceededEvent("pi_2", `{"contract_id":"7","pricing_option_id":"3"}`)
	w := deliverSigned(t, r, payload)
	require.Equal(t, http.StatusOK, w.Code)

	var payment billing.Payment
	require.NoError(t, db.Where("stripe_payment_intent_id = ?", "pi_2").First(&payment).Error)
	assert.Equal(t, billing.TypeOneTime, payment.PaymentType)
}

func TestWebhookChargeSucceededForeignChargeIgnored(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, testSecret)

	// No contract metadata: not our charge, ack without writing.
	payload := chargeSucceededEvent("pi_other", `{"order":"xyz"}`)
	w := deliverSigned(t, r, payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, paymentCount(t, db))
}

func invoicePaidEvent(invoiceID, subscriptionID, billingReason, intentID string, amountPaid int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_inv",
		"object": "event",
		"type": "invoice.paid",
		"data": {
			"object": {
				"id": %q,
				"object": "invoice",
				"amount_paid": %d,
				"billing_reason": %q,
				"customer": "cus_42",
				"subscription": %q,
				"payment_intent": %q
			}
		}
	}`, invoiceID, amountPaid, billingReason, subscriptionID, intentID))
}

func seedSubscriptionPayment(t *testing.T, db *gorm.DB, subscriptionID string) billing.Payment {
	t.Helper()

	payment := billing.Payment{
		ContractID:            7,
		PricingOptionID:       3,
		StripeCustomerID:      "cus_42",
		StripePaymentIntentID: "pi_first",
		StripeSubscriptionID:  &subscriptionID,
		Amount:                99,
		Status:                "succeeded",
		PaymentType:           billing.TypeSubscriptionFirst,
	}
	require.NoError(t, db.Create(&payment).Error)
	return payment
}

func TestWebhookInvoicePaidRecordsRenewal(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, testSecret)
	seedSubscriptionPayment(t, db, "sub_1")

	payload := invoicePaidEvent("in_2", "sub_1", "subscription_cycle", "pi_renewal", 9900)
	w := deliverSigned(t, r, payload)
	require.Equal(t, http.StatusOK, w.Code)

	var renewal billing.Payment
	require.NoError(t, db.Where("stripe_payment_intent_id = ?", "pi_renewal").First(&renewal).Error)
	assert.Equal(t, billing.TypeSubscriptionRecurring, renewal.PaymentType)
	assert.EqualValues(t, 7, renewal.ContractID)
	assert.EqualValues(t, 3, renewal.PricingOptionID)
	assert.InDelta(t, 99.0, renewal.Amount, 0.001)
	require.NotNil(t, renewal.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *renewal.StripeSubscriptionID)

	// Redelivery is a no-op.
	w2 := deliverSigned(t, r, payload)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.EqualValues(t, 2, paymentCount(t, db))
}

func TestWebhookInvoicePaidFirstInvoiceSkipped(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, testSecret)
	seedSubscriptionPayment(t, db, "sub_1")

	// The confirm endpoint already recorded the charge that created the
	// subscription; its first invoice must not double-record.
	payload := invoicePaidEvent("in_1", "sub_1", "subscription_create", "pi_first_invoice", 9900)
	w := deliverSigned(t, r, payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, paymentCount(t, db))
}

func TestWebhookInvoicePaidUnknownSubscriptionIgnored(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, testSecret)

	payload := invoicePaidEvent("in_9", "sub_unknown", "subscription_cycle", "pi_9", 1000)
	w := deliverSigned(t, r, payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, paymentCount(t, db))
}

func TestWebhookSubscriptionDeletedAnnotatesPayments(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, testSecret)

	subID := "sub_1"
	first := seedSubscriptionPayment(t, db, subID)
	require.NoError(t, db.Create(&billing.Payment{
		ContractID:            7,
		PricingOptionID:       3,
		StripePaymentIntentID: "pi_renewal",
		StripeSubscriptionID:  &subID,
		Amount:                99,
		Status:                "succeeded",
		PaymentType:           billing.TypeSubscriptionRecurring,
	}).Error)

	payload := []byte(`{
		"id": "evt_del",
		"object": "event",
		"type": "customer.subscription.deleted",
		"data": {
			"object": {
				"id": "sub_1",
				"object": "subscription",
				"status": "canceled"
			}
		}
	}`)
	w := deliverSigned(t, r, payload)
	require.Equal(t, http.StatusOK, w.Code)

	var payments []billing.Payment
	require.NoError(t, db.Where("stripe_subscription_id = ?", subID).Find(&payments).Error)
	require.Len(t, payments, 2)
	for _, p := range payments {
		require.NotNil(t, p.Metadata)
		assert.Equal(t, "true", p.Metadata["canceled"])
		assert.NotEmpty(t, p.Metadata["canceled_at"])
	}

	// Rows are annotated, never deleted.
	assert.EqualValues(t, 2, paymentCount(t, db))
	var still billing.Payment
	require.NoError(t, db.First(&still, first.ID).Error)
}

func TestWebhookSubscriptionDeletedAnnotationRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, testSecret)

	subID := "sub_1"
	seedSubscriptionPayment(t, db, subID)
	require.NoError(t, db.Create(&billing.Payment{
		ContractID:            7,
		PricingOptionID:       3,
		StripePaymentIntentID: "pi_renewal",
		StripeSubscriptionID:  &subID,
		Amount:                99,
		Status:                "succeeded",
		PaymentType:           billing.TypeSubscriptionRecurring,
	}).Error)

	// Fail the second metadata update mid-annotation.
	updates := 0
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("fail_second_update", func(tx *gorm.DB) {
		updates++
		if updates > 1 {
			tx.AddError(errors.New("connection reset"))
		}
	}))

	payload := []byte(`{
		"id": "evt_del_fail",
		"object": "event",
		"type": "customer.subscription.deleted",
		"data": {
			"object": {
				"id": "sub_1",
				"object": "subscription",
				"status": "canceled"
			}
		}
	}`)
	w := deliverSigned(t, r, payload)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// No half-applied annotation: neither row was touched.
	var payments []billing.Payment
	require.NoError(t, db.Where("stripe_subscription_id = ?", subID).Find(&payments).Error)
	require.Len(t, payments, 2)
	for _, p := range payments {
		assert.NotContains(t, p.Metadata, "canceled")
	}
}

func TestWebhookUnknownEventAcknowledged(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db, testSecret)

	payload := []byte(`{
		"id": "evt_x",
		"object": "event",
		"type": "payment_method.attached",
		"data": {"object": {"id": "pm_1", "object": "payment_method"}}
	}`)
	w := deliverSigned(t, r, payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)
	assert.EqualValues(t, 0, paymentCount(t, db))
}
