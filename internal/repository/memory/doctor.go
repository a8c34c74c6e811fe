package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

type doctorRepository struct {
	s *Store
}

func copyDoctor(d *model.Doctor) *model.Doctor {
	cp := *d
	cp.Qualifications = append(model.Qualifications(nil), d.Qualifications...)
	cp.Schedule.Days = append([]string(nil), d.Schedule.Days...)
	return &cp
}

func (r *doctorRepository) Create(_ context.Context, doctor *model.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, d := range r.s.doctors {
		if d.DoctorID == doctor.DoctorID {
			return repository.ErrDuplicateID
		}
	}
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = doctor.CreatedAt

	r.s.doctors[doctor.ID] = copyDoctor(doctor)
	r.s.track(doctor.ID)
	return nil
}

func (r *doctorRepository) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyDoctor(d), nil
}

func (r *doctorRepository) GetByDoctorID(_ context.Context, doctorID string) (*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.doctors {
		if d.DoctorID == doctorID {
			return copyDoctor(d), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *doctorRepository) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Doctor
	for _, id := range ids {
		if d, ok := r.s.doctors[id]; ok {
			out = append(out, copyDoctor(d))
		}
	}
	return out, nil
}

func (r *doctorRepository) Update(_ context.Context, doctor *model.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.doctors[doctor.ID]
	if !ok {
		return repository.ErrNotFound
	}
	doctor.UpdatedAt = time.Now()
	cp := copyDoctor(doctor)
	cp.DoctorID = current.DoctorID
	cp.CreatedAt = current.CreatedAt
	r.s.doctors[doctor.ID] = cp
	return nil
}

func (r *doctorRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.doctors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.doctors, id)
	for aid, a := range r.s.appointments {
		if a.DoctorID == id {
			delete(r.s.appointments, aid)
		}
	}
	return nil
}

func (r *doctorRepository) List(_ context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filters.Search))
	spec := strings.ToLower(strings.TrimSpace(filters.Specialization))
	var matched []*model.Doctor
	for _, d := range r.s.doctors {
		if search != "" &&
			!strings.Contains(strings.ToLower(d.Name), search) &&
			!strings.Contains(strings.ToLower(d.DoctorID), search) {
			continue
		}
		if spec != "" && !strings.Contains(strings.ToLower(d.Specialization), spec) {
			continue
		}
		if filters.AvailableOnly && !d.IsAvailable {
			continue
		}
		matched = append(matched, d)
	}
	sort.Slice(matched, func(i, j int) bool {
		return r.s.order[matched[i].ID] > r.s.order[matched[j].ID]
	})

	var out []*model.Doctor
	for _, d := range page(matched, filters.ListParams) {
		out = append(out, copyDoctor(d))
	}
	return out, len(matched), nil
}

func (r *doctorRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.doctors), nil
}
