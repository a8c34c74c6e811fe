package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type appointmentRepository struct {
	s *Store
}

func copyAppointment(a *model.Appointment) *model.Appointment {
	cp := *a
	cp.Symptoms = append([]string(nil), a.Symptoms...)
	if a.FollowUpDate != nil {
		d := *a.FollowUpDate
		cp.FollowUpDate = &d
	}
	return &cp
}

// slotTaken must be called with mu held
func (s *Store) slotTaken(slot model.Slot, excludeID uuid.UUID) bool {
	for id, a := range s.appointments {
		if id == excludeID || !a.Status.IsActive() {
			continue
		}
		if a.DoctorID == slot.DoctorID && a.AppointmentDate.Equal(slot.Date) && a.AppointmentTime == slot.Time {
			return true
		}
	}
	return false
}

func (r *appointmentRepository) Create(_ context.Context, appointment *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.patients[appointment.PatientID]; !ok {
		return fmt.Errorf("failed to create appointment: patient %s does not exist", appointment.PatientID)
	}
	if _, ok := r.s.doctors[appointment.DoctorID]; !ok {
		return fmt.Errorf("failed to create appointment: doctor %s does not exist", appointment.DoctorID)
	}
	for _, a := range r.s.appointments {
		if a.AppointmentID == appointment.AppointmentID {
			return repository.ErrDuplicateID
		}
	}
	if appointment.Status.IsActive() && r.s.slotTaken(appointment.Slot(), uuid.Nil) {
		return repository.ErrSlotTaken
	}

	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	r.s.appointments[appointment.ID] = copyAppointment(appointment)
	r.s.track(appointment.ID)
	return nil
}

func (r *appointmentRepository) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyAppointment(a), nil
}

func (r *appointmentRepository) GetByAppointmentID(_ context.Context, appointmentID string) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.appointments {
		if a.AppointmentID == appointmentID {
			return copyAppointment(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *appointmentRepository) Update(_ context.Context, appointment *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.appointments[appointment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.doctors[appointment.DoctorID]; !ok {
		return fmt.Errorf("failed to update appointment: doctor %s does not exist", appointment.DoctorID)
	}
	if appointment.Status.IsActive() && r.s.slotTaken(appointment.Slot(), appointment.ID) {
		return repository.ErrSlotTaken
	}

	appointment.UpdatedAt = time.Now()
	cp := copyAppointment(appointment)
	cp.AppointmentID = current.AppointmentID
	cp.PatientID = current.PatientID
	cp.CreatedAt = current.CreatedAt
	r.s.appointments[appointment.ID] = cp
	return nil
}

func (r *appointmentRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if status.IsActive() && !a.Status.IsActive() && r.s.slotTaken(a.Slot(), id) {
		return repository.ErrSlotTaken
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

func (r *appointmentRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.appointments, id)
	return nil
}

func (r *appointmentRepository) filter(keep func(*model.Appointment) bool) []*model.Appointment {
	var out []*model.Appointment
	for _, a := range r.s.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func byDateTime(items []*model.Appointment, desc bool) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.AppointmentDate.Equal(b.AppointmentDate) {
			return a.AppointmentDate.Before(b.AppointmentDate) != desc
		}
		if a.AppointmentTime != b.AppointmentTime {
			return (a.AppointmentTime < b.AppointmentTime) != desc
		}
		return a.AppointmentID < b.AppointmentID
	})
}

func copyAll(items []*model.Appointment) []*model.Appointment {
	out := make([]*model.Appointment, 0, len(items))
	for _, a := range items {
		out = append(out, copyAppointment(a))
	}
	return out
}

func (r *appointmentRepository) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.filter(func(a *model.Appointment) bool {
		if filters.Date != nil && !a.AppointmentDate.Equal(*filters.Date) {
			return false
		}
		if filters.Status != "" && a.Status != filters.Status {
			return false
		}
		if filters.DoctorID != uuid.Nil && a.DoctorID != filters.DoctorID {
			return false
		}
		return true
	})
	byDateTime(matched, false)
	return copyAll(page(matched, filters.ListParams)), len(matched), nil
}

func (r *appointmentRepository) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.filter(func(a *model.Appointment) bool { return a.PatientID == patientID })
	byDateTime(matched, true)
	return copyAll(matched), nil
}

func (r *appointmentRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID, date *model.Date) ([]*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.filter(func(a *model.Appointment) bool {
		return a.DoctorID == doctorID && (date == nil || a.AppointmentDate.Equal(*date))
	})
	byDateTime(matched, false)
	return copyAll(matched), nil
}

func (r *appointmentRepository) ListByDate(_ context.Context, date model.Date) ([]*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.filter(func(a *model.Appointment) bool { return a.AppointmentDate.Equal(date) })
	byDateTime(matched, false)
	return copyAll(matched), nil
}

func (r *appointmentRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.appointments), nil
}

func (r *appointmentRepository) SlotTaken(_ context.Context, slot model.Slot, excludeID *uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	exclude := uuid.Nil
	if excludeID != nil {
		exclude = *excludeID
	}
	return r.s.slotTaken(slot, exclude), nil
}
