// Package memory keeps every repository in process memory. It enforces the
// same unique constraints and cascades as the Postgres schema, so it backs
// the service tests and the database.driver=memory mode.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type Store struct {
	mu           sync.RWMutex
	patients     map[uuid.UUID]*model.Patient
	doctors      map[uuid.UUID]*model.Doctor
	appointments map[uuid.UUID]*model.Appointment
	users        map[uuid.UUID]*model.User
	sequences    map[string]int64
	// order breaks created_at ties in insertion order
	order map[uuid.UUID]int64
	next  int64
}

func NewStore() *Store {
	return &Store{
		patients:     make(map[uuid.UUID]*model.Patient),
		doctors:      make(map[uuid.UUID]*model.Doctor),
		appointments: make(map[uuid.UUID]*model.Appointment),
		users:        make(map[uuid.UUID]*model.User),
		sequences:    make(map[string]int64),
		order:        make(map[uuid.UUID]int64),
	}
}

func (s *Store) Patients() repository.PatientRepository { return &patientRepository{s} }

func (s *Store) Doctors() repository.DoctorRepository { return &doctorRepository{s} }

func (s *Store) Appointments() repository.AppointmentRepository {
	return &appointmentRepository{s}
}

func (s *Store) Users() repository.UserRepository { return &userRepository{s} }

func (s *Store) Sequences() repository.SequenceRepository { return &sequenceRepository{s} }

// track must be called with mu held
func (s *Store) track(id uuid.UUID) {
	s.next++
	s.order[id] = s.next
}

func page[T any](items []T, p model.ListParams) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 && start+p.Limit < end {
		end = start + p.Limit
	}
	return items[start:end]
}
