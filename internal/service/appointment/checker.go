package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
)

// ConflictChecker decides whether a doctor's slot is free. Dates are
// calendar days and times are exact "HH:MM" strings, so "10:00" never
// collides with "10:30".
type ConflictChecker struct {
	repo repository.AppointmentRepository
}

func NewConflictChecker(repo repository.AppointmentRepository) *ConflictChecker {
	return &ConflictChecker{repo: repo}
}

// IsAvailable reports whether no active appointment other than excludeID
// holds the slot.
func (c *ConflictChecker) IsAvailable(ctx context.Context, doctorID uuid.UUID, date model.Date, at string, excludeID *uuid.UUID) (bool, error) {
	taken, err := c.repo.SlotTaken(ctx, model.Slot{DoctorID: doctorID, Date: date, Time: at}, excludeID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
