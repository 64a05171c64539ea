package scholarship

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusReceived = "received"
	StatusReviewed = "reviewed"
	StatusAwarded  = "awarded"
	StatusDeclined = "declined"
)

type Application struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Email     string `gorm:"not null;index" json:"email"`
	Tel       string `json:"tel"`

	Program        string `json:"program"`
	HouseholdSize  int    `json:"household_size"`
	AnnualIncome   string `json:"annual_income"`
	Essay          string `gorm:"type:text" json:"essay"`
	ReferralSource string `json:"referral_source"`

	Status string `gorm:"type:varchar(16);not null;default:'received'" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
