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

type patientRepository struct {
	s *Store
}

func copyPatient(p *model.Patient) *model.Patient {
	cp := *p
	cp.MedicalHistory = append(model.MedicalHistory(nil), p.MedicalHistory...)
	cp.Allergies = append([]string(nil), p.Allergies...)
	cp.CurrentMedications = append([]string(nil), p.CurrentMedications...)
	return &cp
}

func (r *patientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.patients {
		if p.PatientID == patient.PatientID {
			return repository.ErrDuplicateID
		}
	}
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt

	r.s.patients[patient.ID] = copyPatient(patient)
	r.s.track(patient.ID)
	return nil
}

func (r *patientRepository) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyPatient(p), nil
}

func (r *patientRepository) GetByPatientID(_ context.Context, patientID string) (*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.patients {
		if p.PatientID == patientID {
			return copyPatient(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *patientRepository) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*model.Patient
	for _, id := range ids {
		if p, ok := r.s.patients[id]; ok {
			out = append(out, copyPatient(p))
		}
	}
	return out, nil
}

func (r *patientRepository) ExistsByPatientID(ctx context.Context, patientID string) (bool, error) {
	_, err := r.GetByPatientID(ctx, patientID)
	if err == repository.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *patientRepository) Update(_ context.Context, patient *model.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.patients[patient.ID]
	if !ok {
		return repository.ErrNotFound
	}
	patient.UpdatedAt = time.Now()
	cp := copyPatient(patient)
	cp.PatientID = current.PatientID
	cp.CreatedAt = current.CreatedAt
	r.s.patients[patient.ID] = cp
	return nil
}

func (r *patientRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.patients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.patients, id)
	for aid, a := range r.s.appointments {
		if a.PatientID == id {
			delete(r.s.appointments, aid)
		}
	}
	return nil
}

func (r *patientRepository) List(_ context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filters.Search))
	var matched []*model.Patient
	for _, p := range r.s.patients {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Contact.Phone), search) &&
			!strings.Contains(strings.ToLower(p.PatientID), search) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		return r.s.order[matched[i].ID] > r.s.order[matched[j].ID]
	})

	var out []*model.Patient
	for _, p := range page(matched, filters.ListParams) {
		out = append(out, copyPatient(p))
	}
	return out, len(matched), nil
}

func (r *patientRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.patients), nil
}

func (r *patientRepository) AppendMedicalHistory(_ context.Context, id uuid.UUID, entry model.MedicalHistoryEntry) (*model.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.MedicalHistory = append(p.MedicalHistory, entry)
	p.UpdatedAt = time.Now()
	return copyPatient(p), nil
}
