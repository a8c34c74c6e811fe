package doctor

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

// maxSpecializationResults caps the by-specialization listing
const maxSpecializationResults = 100

type Service struct {
	repo     repository.DoctorRepository
	ids      *identifier.Generator
	validate *govalidator.Validate
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
}

func NewService(repo repository.DoctorRepository, ids *identifier.Generator, m *metrics.Metrics, logger *zerolog.Logger) *Service {
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

func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(validator.Message(err), err)
	}
	if req.ConsultationFee.IsNegative() {
		return nil, apperrors.Validation("consultationFee must be at least 0", nil)
	}

	doctorID := req.DoctorID
	if doctorID == "" {
		id, err := s.ids.Generate(ctx, identifier.KindDoctor)
		if err != nil {
			return nil, err
		}
		doctorID = id
	}

	doctor := &model.Doctor{
		DoctorID:        doctorID,
		Name:            req.Name,
		Specialization:  req.Specialization,
		Department:      req.Department,
		Contact:         req.Contact,
		Qualifications:  req.Qualifications,
		Experience:      *req.Experience,
		Schedule:        req.Schedule,
		ConsultationFee: *req.ConsultationFee,
		IsAvailable:     true,
		Bio:             req.Bio,
		Address:         req.Address,
		Status:          req.Status,
	}
	if req.IsAvailable != nil {
		doctor.IsAvailable = *req.IsAvailable
	}
	if doctor.Status == "" {
		doctor.Status = model.DoctorStatusActive
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			if s.metrics != nil {
				s.metrics.DuplicateIdentifiers.WithLabelValues(string(identifier.KindDoctor)).Inc()
			}
			return nil, apperrors.DuplicateIdentifier("Doctor", err)
		}
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	s.logger.Info().Str("doctor_id", doctor.DoctorID).Msg("doctor registered")
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, ref string) (*model.Doctor, error) {
	return lookup.Doctor(ctx, s.repo, ref)
}

func (s *Service) ListDoctors(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error) {
	doctors, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	if doctors == nil {
		doctors = []*model.Doctor{}
	}
	return doctors, total, nil
}

// ListBySpecialization returns the available doctors whose specialization
// contains spec, ignoring case.
func (s *Service) ListBySpecialization(ctx context.Context, spec string) ([]*model.Doctor, error) {
	doctors, _, err := s.repo.List(ctx, &model.DoctorFilters{
		ListParams:     model.ListParams{Page: 1, Limit: maxSpecializationResults},
		Specialization: spec,
		AvailableOnly:  true,
	})
	if err != nil {
		return nil, err
	}
	if doctors == nil {
		doctors = []*model.Doctor{}
	}
	return doctors, nil
}

// UpdateDoctor applies the fields present in req. A new fee only applies
// to appointments booked afterwards.
func (s *Service) UpdateDoctor(ctx context.Context, ref string, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(validator.Message(err), err)
	}
	if req.ConsultationFee != nil && req.ConsultationFee.IsNegative() {
		return nil, apperrors.Validation("consultationFee must be at least 0", nil)
	}

	doctor, err := lookup.Doctor(ctx, s.repo, ref)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Department != nil {
		doctor.Department = *req.Department
	}
	if req.Contact != nil {
		doctor.Contact = *req.Contact
	}
	if req.Qualifications != nil {
		doctor.Qualifications = req.Qualifications
	}
	if req.Experience != nil {
		doctor.Experience = *req.Experience
	}
	if req.Schedule != nil {
		doctor.Schedule = *req.Schedule
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = *req.ConsultationFee
	}
	if req.IsAvailable != nil {
		doctor.IsAvailable = *req.IsAvailable
	}
	if req.Bio != nil {
		doctor.Bio = *req.Bio
	}
	if req.Address != nil {
		doctor.Address = *req.Address
	}
	if req.Status != nil {
		doctor.Status = *req.Status
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Doctor", err)
		}
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	return doctor, nil
}

// DeleteDoctor removes the doctor together with their appointments.
func (s *Service) DeleteDoctor(ctx context.Context, ref string) error {
	doctor, err := lookup.Doctor(ctx, s.repo, ref)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, doctor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Doctor", err)
		}
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	s.logger.Info().Str("doctor_id", doctor.DoctorID).Msg("doctor deleted")
	return nil
}
