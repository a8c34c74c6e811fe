package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "Confirmed"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "No-Show"
)

// IsActive reports whether an appointment in this status still holds its slot.
func (s AppointmentStatus) IsActive() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

func (s AppointmentStatus) IsValid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {AppointmentStatusConfirmed, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusCompleted: nil,
	AppointmentStatusCancelled: nil,
	AppointmentStatusNoShow:    nil,
}

// CanTransitionTo reports whether s may move to next. Staying in the same
// status is always allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

const (
	DefaultAppointmentDuration = 30
	MinAppointmentDuration     = 15
	MaxAppointmentDuration     = 120
)

type Appointment struct {
	Base
	AppointmentID   string            `json:"appointmentId" db:"appointment_id"`
	PatientID       uuid.UUID         `json:"patientId" db:"patient_id"`
	DoctorID        uuid.UUID         `json:"doctorId" db:"doctor_id"`
	AppointmentDate Date              `json:"appointmentDate" db:"appointment_date"`
	AppointmentTime string            `json:"appointmentTime" db:"appointment_time"`
	Status          AppointmentStatus `json:"status" db:"status"`
	Reason          string            `json:"reason" db:"reason"`
	Notes           string            `json:"notes" db:"notes"`
	Duration        int               `json:"duration" db:"duration"`
	ConsultationFee decimal.Decimal   `json:"consultationFee" db:"consultation_fee"`
	PaymentStatus   PaymentStatus     `json:"paymentStatus" db:"payment_status"`
	Symptoms        pq.StringArray    `json:"symptoms" db:"symptoms"`
	Diagnosis       string            `json:"diagnosis" db:"diagnosis"`
	Prescription    string            `json:"prescription" db:"prescription"`
	FollowUpDate    *Date             `json:"followUpDate,omitempty" db:"follow_up_date"`
}

// Slot identifies the bookable window an appointment occupies
type Slot struct {
	DoctorID uuid.UUID
	Date     Date
	Time     string
}

func (a *Appointment) Slot() Slot {
	return Slot{DoctorID: a.DoctorID, Date: a.AppointmentDate, Time: a.AppointmentTime}
}

// Key is the lock key for the slot
func (s Slot) Key() string {
	return s.DoctorID.String() + ":" + s.Date.String() + ":" + s.Time
}

// AppointmentDetail is an appointment with its patient and doctor resolved
type AppointmentDetail struct {
	*Appointment
	Patient *Patient `json:"patient,omitempty"`
	Doctor  *Doctor  `json:"doctor,omitempty"`
}

// CreateAppointmentRequest books a slot. PatientID and DoctorID take either
// the record id or the business identifier (PAT0001, DOC0001).
type CreateAppointmentRequest struct {
	AppointmentID   string            `json:"appointmentId"`
	PatientID       string            `json:"patientId" binding:"required"`
	DoctorID        string            `json:"doctorId" binding:"required"`
	AppointmentDate *Date             `json:"appointmentDate" binding:"required"`
	AppointmentTime string            `json:"appointmentTime" binding:"required,hhmm"`
	Reason          string            `json:"reason" binding:"required"`
	Notes           string            `json:"notes"`
	Duration        int               `json:"duration" binding:"omitempty,gte=15,lte=120"`
	Status          AppointmentStatus `json:"status" binding:"omitempty,oneof=Scheduled Confirmed"`
	PaymentStatus   PaymentStatus     `json:"paymentStatus" binding:"omitempty,oneof=Pending Paid Refunded"`
	Symptoms        []string          `json:"symptoms"`
}

// UpdateAppointmentRequest is the full-update body. A status change is
// checked against the transition graph like a status-only update.
type UpdateAppointmentRequest struct {
	DoctorID        *string            `json:"doctorId" binding:"omitempty,min=1"`
	AppointmentDate *Date              `json:"appointmentDate"`
	AppointmentTime *string            `json:"appointmentTime" binding:"omitempty,hhmm"`
	Status          *AppointmentStatus `json:"status" binding:"omitempty,oneof=Scheduled Confirmed Completed Cancelled No-Show"`
	Reason          *string            `json:"reason" binding:"omitempty,min=1"`
	Notes           *string            `json:"notes"`
	Duration        *int               `json:"duration" binding:"omitempty,gte=15,lte=120"`
	PaymentStatus   *PaymentStatus     `json:"paymentStatus" binding:"omitempty,oneof=Pending Paid Refunded"`
	Symptoms        []string           `json:"symptoms"`
	Diagnosis       *string            `json:"diagnosis"`
	Prescription    *string            `json:"prescription"`
	FollowUpDate    *Date              `json:"followUpDate"`
}

type UpdateStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=Scheduled Confirmed Completed Cancelled No-Show"`
}

type AppointmentFilters struct {
	ListParams
	Date   *Date
	Status AppointmentStatus
	// DoctorRef is the doctorId query value; the service resolves it to DoctorID
	DoctorRef string
	DoctorID  uuid.UUID
}
