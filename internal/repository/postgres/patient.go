package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

const patientColumns = `
	id, patient_id, name, age, gender, contact, address, blood_group,
	emergency_contact, medical_history, allergies, current_medications,
	insurance_info, status, created_at, updated_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.PatientID,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.Contact,
		patient.Address,
		patient.BloodGroup,
		patient.EmergencyContact,
		patient.MedicalHistory,
		nonNil(patient.Allergies),
		nonNil(patient.CurrentMedications),
		patient.InsuranceInfo,
		patient.Status,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	return translate(err, "create patient")
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, translate(err, "get patient")
	}
	return &patient, nil
}

func (r *patientRepository) GetByPatientID(ctx context.Context, patientID string) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE patient_id = $1`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, patientID); err != nil {
		return nil, translate(err, "get patient")
	}
	return &patient, nil
}

func (r *patientRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Patient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = ANY($1::uuid[])`

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, pq.Array(uuidStrings(ids))); err != nil {
		return nil, translate(err, "get patients")
	}
	return patients, nil
}

func (r *patientRepository) ExistsByPatientID(ctx context.Context, patientID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM patients WHERE patient_id = $1)`, patientID)
	if err != nil {
		return false, fmt.Errorf("failed to check patient id: %w", err)
	}
	return exists, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, age = $2, gender = $3, contact = $4, address = $5,
			blood_group = $6, emergency_contact = $7, medical_history = $8,
			allergies = $9, current_medications = $10, insurance_info = $11,
			status = $12, updated_at = $13
		WHERE id = $14
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.Contact,
		patient.Address,
		patient.BloodGroup,
		patient.EmergencyContact,
		patient.MedicalHistory,
		nonNil(patient.Allergies),
		nonNil(patient.CurrentMedications),
		patient.InsuranceInfo,
		patient.Status,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return translate(err, "update patient")
	}
	return checkAffected(result)
}

// Delete removes the patient; its appointments go with it (ON DELETE CASCADE).
func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete patient")
	}
	return checkAffected(result)
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	where := ""
	var args []interface{}
	if filters.Search != "" {
		args = append(args, containsPattern(filters.Search))
		where = ` WHERE name ILIKE $1 OR contact->>'phone' ILIKE $1 OR patient_id ILIKE $1`
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM patients`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	query := `SELECT ` + patientColumns + ` FROM patients` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filters.Limit, filters.Offset())

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM patients`); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return n, nil
}

func (r *patientRepository) AppendMedicalHistory(ctx context.Context, id uuid.UUID, entry model.MedicalHistoryEntry) (*model.Patient, error) {
	query := `
		UPDATE patients
		SET medical_history = medical_history || $1::jsonb, updated_at = $2
		WHERE id = $3
		RETURNING ` + patientColumns

	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, model.MedicalHistory{entry}, time.Now(), id)
	if err != nil {
		return nil, translate(err, "append medical history")
	}
	return &patient, nil
}

var _ repository.PatientRepository = (*patientRepository)(nil)
