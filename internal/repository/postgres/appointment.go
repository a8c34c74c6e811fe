package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

const appointmentColumns = `
	id, appointment_id, patient_id, doctor_id, appointment_date, appointment_time,
	status, reason, notes, duration, consultation_fee, payment_status, symptoms,
	diagnosis, prescription, follow_up_date, created_at, updated_at`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.AppointmentID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		appointment.Status,
		appointment.Reason,
		appointment.Notes,
		appointment.Duration,
		appointment.ConsultationFee,
		appointment.PaymentStatus,
		nonNil(appointment.Symptoms),
		appointment.Diagnosis,
		appointment.Prescription,
		appointment.FollowUpDate,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	return translate(err, "create appointment")
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	if err != nil {
		return nil, translate(err, "get appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetByAppointmentID(ctx context.Context, appointmentID string) (*model.Appointment, error) {
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment,
		`SELECT `+appointmentColumns+` FROM appointments WHERE appointment_id = $1`, appointmentID)
	if err != nil {
		return nil, translate(err, "get appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET doctor_id = $1, appointment_date = $2, appointment_time = $3,
			status = $4, reason = $5, notes = $6, duration = $7,
			consultation_fee = $8, payment_status = $9, symptoms = $10,
			diagnosis = $11, prescription = $12, follow_up_date = $13,
			updated_at = $14
		WHERE id = $15
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.DoctorID,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		appointment.Status,
		appointment.Reason,
		appointment.Notes,
		appointment.Duration,
		appointment.ConsultationFee,
		appointment.PaymentStatus,
		nonNil(appointment.Symptoms),
		appointment.Diagnosis,
		appointment.Prescription,
		appointment.FollowUpDate,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return translate(err, "update appointment")
	}
	return checkAffected(result)
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return translate(err, "update appointment status")
	}
	return checkAffected(result)
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete appointment")
	}
	return checkAffected(result)
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Date != nil {
		conditions = append(conditions, fmt.Sprintf("appointment_date = $%d", argCount))
		args = append(args, *filters.Date)
		argCount++
	}
	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, filters.Status)
		argCount++
	}
	if filters.DoctorID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("doctor_id = $%d", argCount))
		args = append(args, filters.DoctorID)
		argCount++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM appointments`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments` + where +
		fmt.Sprintf(" ORDER BY appointment_date ASC, appointment_time ASC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filters.Limit, filters.Offset())

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE patient_id = $1
		ORDER BY appointment_date DESC, appointment_time DESC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appointments, nil
}

// ListByDoctor returns the doctor's appointments, restricted to one day
// when date is set.
func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, date *model.Date) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE doctor_id = $1`
	args := []interface{}{doctorID}
	if date != nil {
		query += ` AND appointment_date = $2`
		args = append(args, *date)
	}
	query += ` ORDER BY appointment_date ASC, appointment_time ASC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDate(ctx context.Context, date model.Date) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE appointment_date = $1
		ORDER BY appointment_time ASC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, date); err != nil {
		return nil, fmt.Errorf("failed to list appointments by date: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM appointments`); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return n, nil
}

func (r *appointmentRepository) SlotTaken(ctx context.Context, slot model.Slot, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_time = $3
			AND status IN ('Scheduled', 'Confirmed')`
	args := []interface{}{slot.DoctorID, slot.Date, slot.Time}
	if excludeID != nil {
		query += ` AND id <> $4`
		args = append(args, *excludeID)
	}
	query += `)`

	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, args...); err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return taken, nil
}

var _ repository.AppointmentRepository = (*appointmentRepository)(nil)
