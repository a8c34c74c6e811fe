package model

import (
	"database/sql/driver"
	"strings"

	"github.com/shopspring/decimal"
)

type DoctorStatus string

const (
	DoctorStatusActive   DoctorStatus = "Active"
	DoctorStatusInactive DoctorStatus = "Inactive"
	DoctorStatusOnLeave  DoctorStatus = "OnLeave"
)

type Doctor struct {
	Base
	DoctorID        string          `json:"doctorId" db:"doctor_id"`
	Name            string          `json:"name" db:"name"`
	Specialization  string          `json:"specialization" db:"specialization"`
	Department      string          `json:"department" db:"department"`
	Contact         Contact         `json:"contact" db:"contact"`
	Qualifications  Qualifications  `json:"qualifications" db:"qualifications"`
	Experience      int             `json:"experience" db:"experience"`
	Schedule        Schedule        `json:"schedule" db:"schedule"`
	ConsultationFee decimal.Decimal `json:"consultationFee" db:"consultation_fee"`
	IsAvailable     bool            `json:"isAvailable" db:"is_available"`
	Bio             string          `json:"bio" db:"bio"`
	Address         Address         `json:"address" db:"address"`
	Status          DoctorStatus    `json:"status" db:"status"`
}

type Qualification struct {
	Degree     string `json:"degree"`
	University string `json:"university"`
	Year       int    `json:"year"`
}

type Qualifications []Qualification

func (q Qualifications) Value() (driver.Value, error) {
	if q == nil {
		return "[]", nil
	}
	return jsonValue(q)
}

func (q *Qualifications) Scan(src interface{}) error { return jsonScan(src, q) }

// Schedule is the doctor's weekly working pattern
type Schedule struct {
	Days      []string `json:"days" binding:"omitempty,dive,weekday"`
	StartTime string   `json:"startTime,omitempty" binding:"omitempty,hhmm"`
	EndTime   string   `json:"endTime,omitempty" binding:"omitempty,hhmm"`
}

func (s Schedule) Value() (driver.Value, error) { return jsonValue(s) }
func (s *Schedule) Scan(src interface{}) error { return jsonScan(src, s) }

type CreateDoctorRequest struct {
	DoctorID        string           `json:"doctorId"`
	Name            string           `json:"name" binding:"required"`
	Specialization  string           `json:"specialization" binding:"required"`
	Department      string           `json:"department" binding:"required"`
	Contact         Contact          `json:"contact"`
	Qualifications  Qualifications   `json:"qualifications"`
	Experience      *int             `json:"experience" binding:"required,gte=0"`
	Schedule        Schedule         `json:"schedule"`
	ConsultationFee *decimal.Decimal `json:"consultationFee" binding:"required"`
	IsAvailable     *bool            `json:"isAvailable"`
	Bio             string           `json:"bio"`
	Address         Address          `json:"address"`
	Status          DoctorStatus     `json:"status" binding:"omitempty,oneof=Active Inactive OnLeave"`
}

// Normalize trims the text fields stored trimmed, before validation.
func (r *CreateDoctorRequest) Normalize() {
	r.DoctorID = strings.TrimSpace(r.DoctorID)
	r.Name = strings.TrimSpace(r.Name)
	r.Specialization = strings.TrimSpace(r.Specialization)
	r.Department = strings.TrimSpace(r.Department)
	r.Contact.Normalize()
}

// UpdateDoctorRequest changes only the fields that are present. Fee
// changes never reach appointments that were already booked.
type UpdateDoctorRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=1"`
	Specialization  *string          `json:"specialization" binding:"omitempty,min=1"`
	Department      *string          `json:"department" binding:"omitempty,min=1"`
	Contact         *Contact         `json:"contact"`
	Qualifications  Qualifications   `json:"qualifications"`
	Experience      *int             `json:"experience" binding:"omitempty,gte=0"`
	Schedule        *Schedule        `json:"schedule"`
	ConsultationFee *decimal.Decimal `json:"consultationFee"`
	IsAvailable     *bool            `json:"isAvailable"`
	Bio             *string          `json:"bio"`
	Address         *Address         `json:"address"`
	Status          *DoctorStatus    `json:"status" binding:"omitempty,oneof=Active Inactive OnLeave"`
}

func (r *UpdateDoctorRequest) Normalize() {
	trimPtr(r.Name)
	trimPtr(r.Specialization)
	trimPtr(r.Department)
	if r.Contact != nil {
		r.Contact.Normalize()
	}
}

type DoctorFilters struct {
	ListParams
	// Search matches name or doctorId, case-insensitive
	Search         string
	Specialization string
	// AvailableOnly restricts results to isAvailable doctors
	AvailableOnly bool
}
