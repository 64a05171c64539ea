package contracts

import (
	"errors"
	"net/http"

	domain "livewright-backend/internal/domain/contracts"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{DB: db, Log: log}
}

type pricingOptionInput struct {
	Price         float64 `json:"price" binding:"required"`
	PaymentMode   string  `json:"payment_mode" binding:"required"`
	DepositAmount float64 `json:"deposit_amount"`
	BillingType   string  `json:"billing_type"`
}

// CreateContract is the admin side of "created elsewhere": a contract plus
// its pricing options, with a fresh public token.
func (h *Handler) CreateContract(c *gin.Context) {
	var body struct {
		FirstName      string               `json:"first_name" binding:"required"`
		LastName       string               `json:"last_name" binding:"required"`
		Email          string               `json:"email" binding:"required,email"`
		PricingOptions []pricingOptionInput `json:"pricing_options" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	options := make([]domain.PricingOption, 0, len(body.PricingOptions))
	for _, o := range body.PricingOptions {
		if !domain.ValidPaymentMode(o.PaymentMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment_mode: " + o.PaymentMode})
			return
		}
		options = append(options, domain.PricingOption{
			Price:         o.Price,
			PaymentMode:   o.PaymentMode,
			DepositAmount: o.DepositAmount,
			BillingType:   o.BillingType,
		})
	}

	contract := domain.Contract{
		UniqueID:       uuid.NewString(),
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		Email:          body.Email,
		PricingOptions: options,
	}

	if err := h.DB.Create(&contract).Error; err != nil {
		h.Log.Error("failed to create contract", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contract"})
		return
	}

	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) ListContracts(c *gin.Context) {
	var list []domain.Contract
	if err := h.DB.Preload("PricingOptions").Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contracts"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetContract(c *gin.Context) {
	var contract domain.Contract
	err := h.DB.Preload("PricingOptions").
		Where("unique_id = ?", c.Param("uid")).
		First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contract"})
		return
	}
	c.JSON(http.StatusOK, contract)
}

// DeleteContract soft-deletes the contract and its options. Rows stay in the
// table; every read path filters them out.
func (h *Handler) DeleteContract(c *gin.Context) {
	var contract domain.Contract
	err := h.DB.Where("unique_id = ?", c.Param("uid")).First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contract"})
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", contract.ID).Delete(&domain.PricingOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&contract).Error
	})
	if err != nil {
		h.Log.Error("failed to delete contract", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contract"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contract deleted"})
}
