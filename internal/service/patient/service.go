package patient

import (
	"context"
	"errors"
	"fmt"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/identifier"
	"github.com/jwalitptl/hospital-api/internal/service/lookup"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

type Service struct {
	repo     repository.PatientRepository
	ids      *identifier.Generator
	validate *govalidator.Validate
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
}

func NewService(repo repository.PatientRepository, ids *identifier.Generator, m *metrics.Metrics, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		repo:     repo,
		ids:      ids,
		validate: validator.New(),
		metrics:  m,
		logger:   logger,
	}
}

// CreatePatient registers a patient. Without a supplied patientId one is
// generated, falling back to timestamp based ids when the sequential one is
// already taken.
func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(validator.Message(err), err)
	}

	patientID := req.PatientID
	if patientID == "" {
		id, err := s.ids.GenerateUnique(ctx, identifier.KindPatient, s.repo.ExistsByPatientID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrDuplicateIdentifier) {
				s.duplicate()
			}
			return nil, err
		}
		patientID = id
	}

	patient := &model.Patient{
		PatientID:          patientID,
		Name:               req.Name,
		Age:                *req.Age,
		Gender:             req.Gender,
		Contact:            req.Contact,
		Address:            req.Address,
		BloodGroup:         req.BloodGroup,
		EmergencyContact:   req.EmergencyContact,
		MedicalHistory:     req.MedicalHistory,
		Allergies:          req.Allergies,
		CurrentMedications: req.CurrentMedications,
		InsuranceInfo:      req.InsuranceInfo,
		Status:             req.Status,
	}
	if patient.Status == "" {
		patient.Status = model.PatientStatusActive
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			s.duplicate()
			return nil, apperrors.DuplicateIdentifier("Patient", err)
		}
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.logger.Info().Str("patient_id", patient.PatientID).Msg("patient registered")
	return patient, nil
}

func (s *Service) duplicate() {
	if s.metrics != nil {
		s.metrics.DuplicateIdentifiers.WithLabelValues(string(identifier.KindPatient)).Inc()
	}
}

func (s *Service) GetPatient(ctx context.Context, ref string) (*model.Patient, error) {
	return lookup.Patient(ctx, s.repo, ref)
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	patients, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	if patients == nil {
		patients = []*model.Patient{}
	}
	return patients, total, nil
}

func (s *Service) UpdatePatient(ctx context.Context, ref string, req *model.UpdatePatientRequest) (*model.Patient, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(validator.Message(err), err)
	}

	patient, err := lookup.Patient(ctx, s.repo, ref)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Age != nil {
		patient.Age = *req.Age
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Contact != nil {
		patient.Contact = *req.Contact
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.BloodGroup != nil {
		patient.BloodGroup = *req.BloodGroup
	}
	if req.EmergencyContact != nil {
		patient.EmergencyContact = *req.EmergencyContact
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = req.MedicalHistory
	}
	if req.Allergies != nil {
		patient.Allergies = req.Allergies
	}
	if req.CurrentMedications != nil {
		patient.CurrentMedications = req.CurrentMedications
	}
	if req.InsuranceInfo != nil {
		patient.InsuranceInfo = *req.InsuranceInfo
	}
	if req.Status != nil {
		patient.Status = *req.Status
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Patient", err)
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return patient, nil
}

// DeletePatient removes the patient together with their appointments.
func (s *Service) DeletePatient(ctx context.Context, ref string) error {
	patient, err := lookup.Patient(ctx, s.repo, ref)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, patient.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Patient", err)
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	s.logger.Info().Str("patient_id", patient.PatientID).Msg("patient deleted")
	return nil
}

func (s *Service) AddMedicalHistory(ctx context.Context, ref string, entry *model.MedicalHistoryEntry) (*model.Patient, error) {
	if err := s.validate.Struct(entry); err != nil {
		return nil, apperrors.Validation(validator.Message(err), err)
	}

	patient, err := lookup.Patient(ctx, s.repo, ref)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.AppendMedicalHistory(ctx, patient.ID, *entry)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Patient", err)
		}
		return nil, fmt.Errorf("failed to add medical history: %w", err)
	}
	return updated, nil
}
