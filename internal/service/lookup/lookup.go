// Package lookup resolves the references accepted on the API, which are
// either a record id or a business identifier such as PAT0001.
package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

func Patient(ctx context.Context, repo repository.PatientRepository, ref string) (*model.Patient, error) {
	var (
		p   *model.Patient
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		p, err = repo.Get(ctx, id)
	} else {
		p, err = repo.GetByPatientID(ctx, ref)
	}
	return p, wrap(err, "Patient")
}

func Doctor(ctx context.Context, repo repository.DoctorRepository, ref string) (*model.Doctor, error) {
	var (
		d   *model.Doctor
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		d, err = repo.Get(ctx, id)
	} else {
		d, err = repo.GetByDoctorID(ctx, ref)
	}
	return d, wrap(err, "Doctor")
}

func Appointment(ctx context.Context, repo repository.AppointmentRepository, ref string) (*model.Appointment, error) {
	var (
		a   *model.Appointment
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		a, err = repo.Get(ctx, id)
	} else {
		a, err = repo.GetByAppointmentID(ctx, ref)
	}
	return a, wrap(err, "Appointment")
}

func wrap(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource, err)
	}
	return fmt.Errorf("failed to get %s: %w", resource, err)
}
