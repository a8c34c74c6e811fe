package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
)

var (
	// ErrNotFound is returned when no row matches the lookup
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when the business identifier is already taken
	ErrDuplicateID = errors.New("duplicate identifier")
	// ErrSlotTaken is returned when the active-slot constraint rejects a write
	ErrSlotTaken = errors.New("slot already booked")
	// ErrDuplicateEmail is returned when a user email is already registered
	ErrDuplicateEmail = errors.New("duplicate email")
)

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByPatientID(ctx context.Context, patientID string) (*model.Patient, error)
		GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Patient, error)
		ExistsByPatientID(ctx context.Context, patientID string) (bool, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error)
		Count(ctx context.Context) (int, error)
		AppendMedicalHistory(ctx context.Context, id uuid.UUID, entry model.MedicalHistoryEntry) (*model.Patient, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByDoctorID(ctx context.Context, doctorID string) (*model.Doctor, error)
		GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error)
		Count(ctx context.Context) (int, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetByAppointmentID(ctx context.Context, appointmentID string) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
		ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *model.Date) ([]*model.Appointment, error)
		ListByDate(ctx context.Context, date model.Date) ([]*model.Appointment, error)
		Count(ctx context.Context) (int, error)
		// SlotTaken reports whether an active appointment other than excludeID
		// occupies the slot.
		SlotTaken(ctx context.Context, slot model.Slot, excludeID *uuid.UUID) (bool, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	// SequenceRepository hands out the next value of a per-kind counter.
	SequenceRepository interface {
		Next(ctx context.Context, kind string) (int64, error)
	}
)
