package roster

import (
	"errors"
	"net/http"
	"time"

	domain "livewright-backend/internal/domain/roster"
	"livewright-backend/internal/infra/keap"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB   *gorm.DB
	Keap keap.Client // nil when Keap credentials are not configured
	Log  *zap.Logger
}

func NewHandler(db *gorm.DB, keapClient keap.Client, log *zap.Logger) *Handler {
	return &Handler{DB: db, Keap: keapClient, Log: log}
}

func (h *Handler) ListAttendees(c *gin.Context) {
	var attendees []domain.Attendee
	if err := h.DB.Preload("Attendance").Order("last_name, first_name").Find(&attendees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load roster"})
		return
	}
	c.JSON(http.StatusOK, attendees)
}

// CreateAttendee stores the attendee locally first, then best-effort syncs a
// Keap contact. A CRM outage never loses the local row; the response reports
// whether the sync happened.
func (h *Handler) CreateAttendee(c *gin.Context) {
	var body struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attendee := domain.Attendee{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
	}
	if err := h.DB.Create(&attendee).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create attendee"})
		return
	}

	synced := h.syncAttendee(c, &attendee)

	c.JSON(http.StatusCreated, gin.H{
		"attendee":    attendee,
		"keap_synced": synced,
	})
}

// SyncAttendee retries the Keap contact sync for one attendee.
func (h *Handler) SyncAttendee(c *gin.Context) {
	var attendee domain.Attendee
	err := h.DB.Where("id = ?", c.Param("id")).First(&attendee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attendee not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attendee"})
		return
	}

	if !h.syncAttendee(c, &attendee) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Keap sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendee": attendee, "keap_synced": true})
}

// MarkAttendance upserts the attendance row for one attendee and session
// date, and optionally applies a Keap tag for present attendees.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var body struct {
		AttendeeID  uint   `json:"attendee_id" binding:"required"`
		SessionDate string `json:"session_date" binding:"required"` // YYYY-MM-DD
		Present     bool   `json:"present"`
		KeapTagID   int64  `json:"keap_tag_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionDate, err := time.Parse("2006-01-02", body.SessionDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_date must be YYYY-MM-DD"})
		return
	}

	var attendee domain.Attendee
	err = h.DB.Where("id = ?", body.AttendeeID).First(&attendee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attendee not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attendee"})
		return
	}

	var record domain.AttendanceRecord
	err = h.DB.Where("attendee_id = ? AND session_date = ?", attendee.ID, sessionDate).First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = domain.AttendanceRecord{
			AttendeeID:  attendee.ID,
			SessionDate: sessionDate,
			Present:     body.Present,
		}
		if err := h.DB.Create(&record).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record attendance"})
			return
		}
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record attendance"})
		return
	default:
		if err := h.DB.Model(&record).Update("present", body.Present).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record attendance"})
			return
		}
		record.Present = body.Present
	}

	tagged := false
	if body.Present && body.KeapTagID != 0 && h.Keap != nil && attendee.KeapContactID != nil {
		if err := h.Keap.ApplyTag(c.Request.Context(), *attendee.KeapContactID, body.KeapTagID); err != nil {
			h.Log.Warn("keap tag apply failed",
				zap.Uint("attendee_id", attendee.ID),
				zap.Int64("tag_id", body.KeapTagID),
				zap.Error(err))
		} else {
			tagged = true
		}
	}

	c.JSON(http.StatusOK, gin.H{"record": record, "keap_tagged": tagged})
}

func (h *Handler) syncAttendee(c *gin.Context, attendee *domain.Attendee) bool {
	if h.Keap == nil {
		return false
	}

	contactID, err := h.Keap.UpsertContact(c.Request.Context(), attendee.Email, attendee.FirstName, attendee.LastName)
	if err != nil {
		h.Log.Warn("keap contact sync failed", zap.Uint("attendee_id", attendee.ID), zap.Error(err))
		return false
	}

	now := time.Now()
	if err := h.DB.Model(attendee).Updates(map[string]interface{}{
		"keap_contact_id": contactID,
		"keap_synced_at":  now,
	}).Error; err != nil {
		h.Log.Error("failed to store keap contact id", zap.Uint("attendee_id", attendee.ID), zap.Error(err))
		return false
	}
	attendee.KeapContactID = &contactID
	attendee.KeapSyncedAt = &now
	return true
}
