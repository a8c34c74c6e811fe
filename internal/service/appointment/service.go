package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/event"
	"github.com/jwalitptl/hospital-api/internal/service/identifier"
	"github.com/jwalitptl/hospital-api/internal/service/lookup"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/lock"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

type Options struct {
	Appointments repository.AppointmentRepository
	Patients     repository.PatientRepository
	Doctors      repository.DoctorRepository
	IDs          *identifier.Generator
	// Locker serializes bookings of the same slot; nil means no lock
	Locker   lock.Locker
	Events   event.Emitter
	Metrics  *metrics.Metrics
	Logger   *zerolog.Logger
	Location *time.Location
}

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	checker  *ConflictChecker
	ids      *identifier.Generator
	locker   lock.Locker
	events   event.Emitter
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
	loc      *time.Location
}

func NewService(opts Options) *Service {
	s := &Service{
		repo:     opts.Appointments,
		patients: opts.Patients,
		doctors:  opts.Doctors,
		checker:  NewConflictChecker(opts.Appointments),
		ids:      opts.IDs,
		locker:   opts.Locker,
		events:   opts.Events,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		loc:      opts.Location,
	}
	if s.locker == nil {
		s.locker = lock.NopLocker{}
	}
	if s.events == nil {
		s.events = event.NopEmitter{}
	}
	if s.logger == nil {
		nop := zerolog.Nop()
		s.logger = &nop
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	return s
}

func validateCreate(req *model.CreateAppointmentRequest) error {
	req.Reason = strings.TrimSpace(req.Reason)

	var missing []string
	if req.PatientID == "" {
		missing = append(missing, "patientId")
	}
	if req.DoctorID == "" {
		missing = append(missing, "doctorId")
	}
	if req.AppointmentDate == nil || req.AppointmentDate.IsZero() {
		missing = append(missing, "appointmentDate")
	}
	if req.AppointmentTime == "" {
		missing = append(missing, "appointmentTime")
	}
	if req.Reason == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return apperrors.Validation("Please provide all required fields: "+strings.Join(missing, ", "), nil)
	}
	if !validator.IsHHMM(req.AppointmentTime) {
		return apperrors.Validation("appointmentTime must be a time in HH:MM format", nil)
	}
	if req.Duration != 0 && (req.Duration < model.MinAppointmentDuration || req.Duration > model.MaxAppointmentDuration) {
		return apperrors.Validation(fmt.Sprintf("duration must be between %d and %d minutes",
			model.MinAppointmentDuration, model.MaxAppointmentDuration), nil)
	}
	if req.Status != "" && !req.Status.IsActive() {
		return apperrors.Validation("A new appointment must be Scheduled or Confirmed", nil)
	}
	return nil
}

// CreateAppointment books a slot for a patient with a doctor. The doctor's
// current fee is copied onto the appointment.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.AppointmentDetail, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	patient, err := lookup.Patient(ctx, s.patients, req.PatientID)
	if err != nil {
		return nil, err
	}
	doctor, err := lookup.Doctor(ctx, s.doctors, req.DoctorID)
	if err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		AppointmentID:   req.AppointmentID,
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: *req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Status:          req.Status,
		Reason:          req.Reason,
		Notes:           req.Notes,
		Duration:        req.Duration,
		ConsultationFee: doctor.ConsultationFee,
		PaymentStatus:   req.PaymentStatus,
		Symptoms:        req.Symptoms,
	}
	if apt.Status == "" {
		apt.Status = model.AppointmentStatusScheduled
	}
	if apt.Duration == 0 {
		apt.Duration = model.DefaultAppointmentDuration
	}
	if apt.PaymentStatus == "" {
		apt.PaymentStatus = model.PaymentStatusPending
	}

	release, err := s.acquire(ctx, apt.Slot())
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, release)

	available, err := s.checker.IsAvailable(ctx, doctor.ID, apt.AppointmentDate, apt.AppointmentTime, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot: %w", err)
	}
	if !available {
		s.conflict(apt.Slot())
		return nil, apperrors.SlotConflict(nil)
	}

	if apt.AppointmentID == "" {
		if apt.AppointmentID, err = s.ids.Generate(ctx, identifier.KindAppointment); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, s.writeError(err, apt.Slot())
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}
	s.logger.Info().
		Str("appointment_id", apt.AppointmentID).
		Str("patient_id", patient.PatientID).
		Str("doctor_id", doctor.DoctorID).
		Str("date", apt.AppointmentDate.String()).
		Str("time", apt.AppointmentTime).
		Msg("appointment booked")

	detail := &model.AppointmentDetail{Appointment: apt, Patient: patient, Doctor: doctor}
	s.events.Emit(ctx, event.AppointmentCreated, detail)
	return detail, nil
}

func (s *Service) acquire(ctx context.Context, slot model.Slot) (lock.ReleaseFunc, error) {
	start := time.Now()
	release, err := s.locker.Acquire(ctx, slot.Key())
	if s.metrics != nil {
		s.metrics.SlotLockLatency.Observe(time.Since(start).Seconds())
	}
	if errors.Is(err, lock.ErrNotAcquired) {
		s.conflict(slot)
		return nil, apperrors.SlotConflict(err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock slot: %w", err)
	}
	return release, nil
}

func (s *Service) release(ctx context.Context, release lock.ReleaseFunc) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to release slot lock")
	}
}

func (s *Service) conflict(slot model.Slot) {
	if s.metrics != nil {
		s.metrics.BookingConflicts.Inc()
	}
	s.logger.Info().
		Str("doctor", slot.DoctorID.String()).
		Str("date", slot.Date.String()).
		Str("time", slot.Time).
		Msg("slot already booked")
}

// writeError maps constraint violations from a create or update.
func (s *Service) writeError(err error, slot model.Slot) error {
	switch {
	case errors.Is(err, repository.ErrSlotTaken):
		s.conflict(slot)
		return apperrors.SlotConflict(err)
	case errors.Is(err, repository.ErrDuplicateID):
		if s.metrics != nil {
			s.metrics.DuplicateIdentifiers.WithLabelValues(string(identifier.KindAppointment)).Inc()
		}
		return apperrors.DuplicateIdentifier("Appointment", err)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("Appointment", err)
	default:
		return fmt.Errorf("failed to save appointment: %w", err)
	}
}

func (s *Service) GetAppointment(ctx context.Context, ref string) (*model.AppointmentDetail, error) {
	apt, err := lookup.Appointment(ctx, s.repo, ref)
	if err != nil {
		return nil, err
	}
	details, err := s.resolve(ctx, []*model.Appointment{apt})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// resolve attaches patients and doctors with one batch lookup each.
func (s *Service) resolve(ctx context.Context, apts []*model.Appointment) ([]*model.AppointmentDetail, error) {
	details := make([]*model.AppointmentDetail, 0, len(apts))
	if len(apts) == 0 {
		return details, nil
	}

	patientIDs := make([]uuid.UUID, 0, len(apts))
	doctorIDs := make([]uuid.UUID, 0, len(apts))
	seenP := map[uuid.UUID]bool{}
	seenD := map[uuid.UUID]bool{}
	for _, a := range apts {
		if !seenP[a.PatientID] {
			seenP[a.PatientID] = true
			patientIDs = append(patientIDs, a.PatientID)
		}
		if !seenD[a.DoctorID] {
			seenD[a.DoctorID] = true
			doctorIDs = append(doctorIDs, a.DoctorID)
		}
	}

	patients, err := s.patients.GetByIDs(ctx, patientIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patients: %w", err)
	}
	doctors, err := s.doctors.GetByIDs(ctx, doctorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve doctors: %w", err)
	}

	pByID := make(map[uuid.UUID]*model.Patient, len(patients))
	for _, p := range patients {
		pByID[p.ID] = p
	}
	dByID := make(map[uuid.UUID]*model.Doctor, len(doctors))
	for _, d := range doctors {
		dByID[d.ID] = d
	}

	for _, a := range apts {
		details = append(details, &model.AppointmentDetail{
			Appointment: a,
			Patient:     pByID[a.PatientID],
			Doctor:      dByID[a.DoctorID],
		})
	}
	return details, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, int, error) {
	if filters.DoctorRef != "" {
		doctor, err := lookup.Doctor(ctx, s.doctors, filters.DoctorRef)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return []*model.AppointmentDetail{}, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		filters.DoctorID = doctor.ID
	}

	apts, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	details, err := s.resolve(ctx, apts)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// ListToday returns the appointments on the current calendar day in the
// configured timezone, earliest first.
func (s *Service) ListToday(ctx context.Context) ([]*model.AppointmentDetail, error) {
	apts, err := s.repo.ListByDate(ctx, model.Today(s.loc))
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, apts)
}

func (s *Service) ListByPatient(ctx context.Context, patientRef string) ([]*model.AppointmentDetail, error) {
	patient, err := lookup.Patient(ctx, s.patients, patientRef)
	if err != nil {
		return nil, err
	}
	apts, err := s.repo.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, apts)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorRef string, date *model.Date) ([]*model.AppointmentDetail, error) {
	doctor, err := lookup.Doctor(ctx, s.doctors, doctorRef)
	if err != nil {
		return nil, err
	}
	apts, err := s.repo.ListByDoctor(ctx, doctor.ID, date)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, apts)
}

func transitionError(from, to model.AppointmentStatus) error {
	return apperrors.Validation(fmt.Sprintf("Cannot change appointment status from %s to %s", from, to), nil)
}

// UpdateAppointment applies the fields present in req. Moving the
// appointment to another slot re-runs the conflict check, and switching
// doctor takes the new doctor's fee.
func (s *Service) UpdateAppointment(ctx context.Context, ref string, req *model.UpdateAppointmentRequest) (*model.AppointmentDetail, error) {
	apt, err := lookup.Appointment(ctx, s.repo, ref)
	if err != nil {
		return nil, err
	}
	previous := apt.Status

	if req.DoctorID != nil {
		doctor, err := lookup.Doctor(ctx, s.doctors, *req.DoctorID)
		if err != nil {
			return nil, err
		}
		if doctor.ID != apt.DoctorID {
			apt.DoctorID = doctor.ID
			apt.ConsultationFee = doctor.ConsultationFee
		}
	}
	if req.AppointmentDate != nil {
		if req.AppointmentDate.IsZero() {
			return nil, apperrors.Validation("appointmentDate must be a date in YYYY-MM-DD format", nil)
		}
		apt.AppointmentDate = *req.AppointmentDate
	}
	if req.AppointmentTime != nil {
		if !validator.IsHHMM(*req.AppointmentTime) {
			return nil, apperrors.Validation("appointmentTime must be a time in HH:MM format", nil)
		}
		apt.AppointmentTime = *req.AppointmentTime
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, apperrors.Validation(fmt.Sprintf("Invalid status %s", *req.Status), nil)
		}
		if !previous.CanTransitionTo(*req.Status) {
			return nil, transitionError(previous, *req.Status)
		}
		apt.Status = *req.Status
	}
	if req.Reason != nil {
		reason := strings.TrimSpace(*req.Reason)
		if reason == "" {
			return nil, apperrors.Validation("reason cannot be empty", nil)
		}
		apt.Reason = reason
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}
	if req.Duration != nil {
		apt.Duration = *req.Duration
	}
	if req.PaymentStatus != nil {
		apt.PaymentStatus = *req.PaymentStatus
	}
	if req.Symptoms != nil {
		apt.Symptoms = req.Symptoms
	}
	if req.Diagnosis != nil {
		apt.Diagnosis = *req.Diagnosis
	}
	if req.Prescription != nil {
		apt.Prescription = *req.Prescription
	}
	if req.FollowUpDate != nil {
		// an empty followUpDate clears it
		apt.FollowUpDate = req.FollowUpDate
		if req.FollowUpDate.IsZero() {
			apt.FollowUpDate = nil
		}
	}

	if apt.Status.IsActive() {
		release, err := s.acquire(ctx, apt.Slot())
		if err != nil {
			return nil, err
		}
		defer s.release(ctx, release)

		available, err := s.checker.IsAvailable(ctx, apt.DoctorID, apt.AppointmentDate, apt.AppointmentTime, &apt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check slot: %w", err)
		}
		if !available {
			s.conflict(apt.Slot())
			return nil, apperrors.SlotConflict(nil)
		}
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, s.writeError(err, apt.Slot())
	}
	if previous != apt.Status {
		s.statusChanged(ctx, apt, previous)
	}

	details, err := s.resolve(ctx, []*model.Appointment{apt})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

// UpdateStatus moves an appointment along the status graph. Setting the
// current status again changes nothing.
func (s *Service) UpdateStatus(ctx context.Context, ref string, status model.AppointmentStatus) (*model.AppointmentDetail, error) {
	if !status.IsValid() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid status %s", status), nil)
	}

	apt, err := lookup.Appointment(ctx, s.repo, ref)
	if err != nil {
		return nil, err
	}
	previous := apt.Status
	if !previous.CanTransitionTo(status) {
		return nil, transitionError(previous, status)
	}

	if previous != status {
		if err := s.repo.UpdateStatus(ctx, apt.ID, status); err != nil {
			return nil, s.writeError(err, apt.Slot())
		}
		apt.Status = status
		s.statusChanged(ctx, apt, previous)
	}

	details, err := s.resolve(ctx, []*model.Appointment{apt})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *Service) statusChanged(ctx context.Context, apt *model.Appointment, from model.AppointmentStatus) {
	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(from), string(apt.Status)).Inc()
	}
	s.logger.Info().
		Str("appointment_id", apt.AppointmentID).
		Str("from", string(from)).
		Str("to", string(apt.Status)).
		Msg("appointment status changed")
	s.events.Emit(ctx, event.AppointmentStatusChanged, event.StatusChange{
		AppointmentID: apt.AppointmentID,
		From:          string(from),
		To:            string(apt.Status),
	})
}

func (s *Service) DeleteAppointment(ctx context.Context, ref string) error {
	apt, err := lookup.Appointment(ctx, s.repo, ref)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, apt.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Appointment", err)
		}
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.logger.Info().Str("appointment_id", apt.AppointmentID).Msg("appointment deleted")
	s.events.Emit(ctx, event.AppointmentDeleted, map[string]string{
		"id":            apt.ID.String(),
		"appointmentId": apt.AppointmentID,
	})
	return nil
}
