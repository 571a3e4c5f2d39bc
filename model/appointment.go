package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus is the approval state of an appointment.
type AppointmentStatus string

const (
	StatusPending  AppointmentStatus = "pending"
	StatusApproved AppointmentStatus = "approved"
	StatusRejected AppointmentStatus = "rejected"
)

// ErrInvalidStatus is returned when an appointment is written with a status
// outside of pending, approved and rejected.
var ErrInvalidStatus = errors.New("invalid appointment status")

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Appointment represents a booking request from a patient. The booking
// fields are free text of any length.
// @Description Appointment information
type Appointment struct {
	ID          string            `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)" example:"4a0d3c9e-7f2b-4d5c-9b1e-2f6a8c0d1e3f"`
	Department  string            `json:"department" bson:"department" gorm:"type:text;not null" example:"Cardiology"`
	DoctorName  string            `json:"doctorName" bson:"doctorName" gorm:"type:text;not null" example:"Dr. Smith"`
	PatientName string            `json:"patientName" bson:"patientName" gorm:"type:text;not null" example:"Alice"`
	PatientID   string            `json:"patientId" bson:"patientId" gorm:"type:varchar(64);not null;index" example:"1"`
	Date        string            `json:"date" bson:"date" gorm:"type:text;not null" example:"2024-06-01"`
	TimeSlot    string            `json:"timeSlot" bson:"timeSlot" gorm:"type:text;not null" example:"09:00"`
	Status      AppointmentStatus `json:"status" bson:"status" gorm:"type:varchar(16);not null;default:pending" example:"pending"`
	CreatedAt   time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// ValidateStatus checks the status column before it is persisted.
func (a *Appointment) ValidateStatus() error {
	if !a.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(a.Status))
	}
	return nil
}

// PrepareInsert assigns the id and default status for a new record. Ids are
// UUIDv7, so within one process they sort in creation order and break ties
// between records sharing a timestamp.
func (a *Appointment) PrepareInsert() {
	if a.ID == "" {
		a.ID = uuid.Must(uuid.NewV7()).String()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	a.PrepareInsert()
	return a.ValidateStatus()
}

func (a *Appointment) BeforeUpdate(tx *gorm.DB) error {
	return a.ValidateStatus()
}
