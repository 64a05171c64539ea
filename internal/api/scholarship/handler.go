package scholarship

import (
	"errors"
	"net/http"

	domain "livewright-backend/internal/domain/scholarship"

	"github.com/gin-gonic/gin"
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

// Apply is the public intake endpoint. Input passes through the bluemonday
// sanitize middleware before it gets here. File attachments are handled
// elsewhere.
func (h *Handler) Apply(c *gin.Context) {
	var body struct {
		FirstName      string `json:"first_name" binding:"required"`
		LastName       string `json:"last_name" binding:"required"`
		Email          string `json:"email" binding:"required,email"`
		Tel            string `json:"tel"`
		Program        string `json:"program"`
		HouseholdSize  int    `json:"household_size"`
		AnnualIncome   string `json:"annual_income"`
		Essay          string `json:"essay" binding:"required"`
		ReferralSource string `json:"referral_source"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	application := domain.Application{
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		Email:          body.Email,
		Tel:            body.Tel,
		Program:        body.Program,
		HouseholdSize:  body.HouseholdSize,
		AnnualIncome:   body.AnnualIncome,
		Essay:          body.Essay,
		ReferralSource: body.ReferralSource,
		Status:         domain.StatusReceived,
	}

	if err := h.DB.Create(&application).Error; err != nil {
		h.Log.Error("failed to store scholarship application", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"application_id": application.ID,
	})
}

func (h *Handler) ListApplications(c *gin.Context) {
	q := h.DB.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var applications []domain.Application
	if err := q.Find(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load applications"})
		return
	}
	c.JSON(http.StatusOK, applications)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing status"})
		return
	}

	switch body.Status {
	case domain.StatusReceived, domain.StatusReviewed, domain.StatusAwarded, domain.StatusDeclined:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status: " + body.Status})
		return
	}

	var application domain.Application
	err := h.DB.Where("id = ?", c.Param("id")).First(&application).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load application"})
		return
	}

	if err := h.DB.Model(&application).Update("status", body.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated", "status": body.Status})
}
