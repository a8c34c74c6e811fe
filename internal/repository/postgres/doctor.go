package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

const doctorColumns = `
	id, doctor_id, name, specialization, department, contact, qualifications,
	experience, schedule, consultation_fee, is_available, bio, address, status,
	created_at, updated_at`

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (` + doctorColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = doctor.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.DoctorID,
		doctor.Name,
		doctor.Specialization,
		doctor.Department,
		doctor.Contact,
		doctor.Qualifications,
		doctor.Experience,
		doctor.Schedule,
		doctor.ConsultationFee,
		doctor.IsAvailable,
		doctor.Bio,
		doctor.Address,
		doctor.Status,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	return translate(err, "create doctor")
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
	if err != nil {
		return nil, translate(err, "get doctor")
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByDoctorID(ctx context.Context, doctorID string) (*model.Doctor, error) {
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, `SELECT `+doctorColumns+` FROM doctors WHERE doctor_id = $1`, doctorID)
	if err != nil {
		return nil, translate(err, "get doctor")
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Doctor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = ANY($1::uuid[])`

	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, pq.Array(uuidStrings(ids))); err != nil {
		return nil, translate(err, "get doctors")
	}
	return doctors, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET name = $1, specialization = $2, department = $3, contact = $4,
			qualifications = $5, experience = $6, schedule = $7,
			consultation_fee = $8, is_available = $9, bio = $10, address = $11,
			status = $12, updated_at = $13
		WHERE id = $14
	`
	doctor.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		doctor.Name,
		doctor.Specialization,
		doctor.Department,
		doctor.Contact,
		doctor.Qualifications,
		doctor.Experience,
		doctor.Schedule,
		doctor.ConsultationFee,
		doctor.IsAvailable,
		doctor.Bio,
		doctor.Address,
		doctor.Status,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return translate(err, "update doctor")
	}
	return checkAffected(result)
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete doctor")
	}
	return checkAffected(result)
}

func (r *doctorRepository) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR doctor_id ILIKE $%d)", argCount, argCount))
		args = append(args, containsPattern(filters.Search))
		argCount++
	}
	if filters.Specialization != "" {
		conditions = append(conditions, fmt.Sprintf("specialization ILIKE $%d", argCount))
		args = append(args, containsPattern(filters.Specialization))
		argCount++
	}
	if filters.AvailableOnly {
		conditions = append(conditions, "is_available = TRUE")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM doctors`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors: %w", err)
	}

	query := `SELECT ` + doctorColumns + ` FROM doctors` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit, filters.Offset())

	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, total, nil
}

func (r *doctorRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM doctors`); err != nil {
		return 0, fmt.Errorf("failed to count doctors: %w", err)
	}
	return n, nil
}

var _ repository.DoctorRepository = (*doctorRepository)(nil)
