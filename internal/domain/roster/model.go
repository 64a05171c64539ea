package roster

import (
	"time"

	"gorm.io/gorm"
)

// Attendee is one person on the class roster, linked to a Keap contact once
// the sync has run.
type Attendee struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Email     string `gorm:"not null;uniqueIndex:idx_attendees_email" json:"email"`

	KeapContactID *int64     `gorm:"column:keap_contact_id" json:"keap_contact_id,omitempty"`
	KeapSyncedAt  *time.Time `gorm:"column:keap_synced_at" json:"keap_synced_at,omitempty"`

	Attendance []AttendanceRecord `gorm:"foreignKey:AttendeeID" json:"attendance,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AttendanceRecord marks one attendee present/absent for one session date.
// One row per attendee per date.
type AttendanceRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AttendeeID  uint      `gorm:"not null;uniqueIndex:idx_attendance_attendee_date" json:"attendee_id"`
	SessionDate time.Time `gorm:"not null;uniqueIndex:idx_attendance_attendee_date" json:"session_date"`
	Present     bool      `gorm:"not null" json:"present"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
