package model

import (
	"database/sql/driver"
	"strings"

	"github.com/lib/pq"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

type PatientStatus string

const (
	PatientStatusActive     PatientStatus = "Active"
	PatientStatusInactive   PatientStatus = "Inactive"
	PatientStatusDischarged PatientStatus = "Discharged"
)

// BloodGroup may be empty when unknown
type BloodGroup string

type Patient struct {
	Base
	PatientID          string           `json:"patientId" db:"patient_id"`
	Name               string           `json:"name" db:"name"`
	Age                int              `json:"age" db:"age"`
	Gender             Gender           `json:"gender" db:"gender"`
	Contact            Contact          `json:"contact" db:"contact"`
	Address            Address          `json:"address" db:"address"`
	BloodGroup         BloodGroup       `json:"bloodGroup" db:"blood_group"`
	EmergencyContact   EmergencyContact `json:"emergencyContact" db:"emergency_contact"`
	MedicalHistory     MedicalHistory   `json:"medicalHistory" db:"medical_history"`
	Allergies          pq.StringArray   `json:"allergies" db:"allergies"`
	CurrentMedications pq.StringArray   `json:"currentMedications" db:"current_medications"`
	InsuranceInfo      InsuranceInfo    `json:"insuranceInfo" db:"insurance_info"`
	Status             PatientStatus    `json:"status" db:"status"`
}

type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

func (e EmergencyContact) Value() (driver.Value, error) { return jsonValue(e) }
func (e *EmergencyContact) Scan(src interface{}) error { return jsonScan(src, e) }

type MedicalHistoryEntry struct {
	Condition     string `json:"condition" binding:"required"`
	DiagnosedDate *Date  `json:"diagnosedDate,omitempty"`
	Treatment     string `json:"treatment,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type MedicalHistory []MedicalHistoryEntry

func (m MedicalHistory) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	return jsonValue(m)
}

func (m *MedicalHistory) Scan(src interface{}) error { return jsonScan(src, m) }

type InsuranceInfo struct {
	Provider     string `json:"provider,omitempty"`
	PolicyNumber string `json:"policyNumber,omitempty"`
	GroupNumber  string `json:"groupNumber,omitempty"`
}

func (i InsuranceInfo) Value() (driver.Value, error) { return jsonValue(i) }
func (i *InsuranceInfo) Scan(src interface{}) error { return jsonScan(src, i) }

type CreatePatientRequest struct {
	PatientID          string           `json:"patientId"`
	Name               string           `json:"name" binding:"required"`
	Age                *int             `json:"age" binding:"required,gte=0,lte=120"`
	Gender             Gender           `json:"gender" binding:"required,oneof=Male Female Other"`
	Contact            Contact          `json:"contact"`
	Address            Address          `json:"address"`
	BloodGroup         BloodGroup       `json:"bloodGroup" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	EmergencyContact   EmergencyContact `json:"emergencyContact"`
	MedicalHistory     MedicalHistory   `json:"medicalHistory" binding:"dive"`
	Allergies          []string         `json:"allergies"`
	CurrentMedications []string         `json:"currentMedications"`
	InsuranceInfo      InsuranceInfo    `json:"insuranceInfo"`
	Status             PatientStatus    `json:"status" binding:"omitempty,oneof=Active Inactive Discharged"`
}

// Normalize trims the text fields stored trimmed, before validation.
func (r *CreatePatientRequest) Normalize() {
	r.PatientID = strings.TrimSpace(r.PatientID)
	r.Name = strings.TrimSpace(r.Name)
	r.Contact.Normalize()
}

// UpdatePatientRequest changes only the fields that are present. The
// business identifier cannot be changed.
type UpdatePatientRequest struct {
	Name               *string           `json:"name" binding:"omitempty,min=1"`
	Age                *int              `json:"age" binding:"omitempty,gte=0,lte=120"`
	Gender             *Gender           `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	Contact            *Contact          `json:"contact"`
	Address            *Address          `json:"address"`
	BloodGroup         *BloodGroup       `json:"bloodGroup" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	EmergencyContact   *EmergencyContact `json:"emergencyContact"`
	MedicalHistory     MedicalHistory    `json:"medicalHistory" binding:"omitempty,dive"`
	Allergies          []string          `json:"allergies"`
	CurrentMedications []string          `json:"currentMedications"`
	InsuranceInfo      *InsuranceInfo    `json:"insuranceInfo"`
	Status             *PatientStatus    `json:"status" binding:"omitempty,oneof=Active Inactive Discharged"`
}

func (r *UpdatePatientRequest) Normalize() {
	trimPtr(r.Name)
	if r.Contact != nil {
		r.Contact.Normalize()
	}
}

type PatientFilters struct {
	ListParams
	// Search matches name, contact phone or patientId, case-insensitive
	Search string
}
