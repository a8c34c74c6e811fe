// Package seed loads the demo data set and the default admin account.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/service/appointment"
	"github.com/jwalitptl/hospital-api/internal/service/auth"
	"github.com/jwalitptl/hospital-api/internal/service/doctor"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
)

type Admin struct {
	Name     string
	Email    string
	Password string
}

type Deps struct {
	PatientRepo     repository.PatientRepository
	DoctorRepo      repository.DoctorRepository
	AppointmentRepo repository.AppointmentRepository

	Patients     *patient.Service
	Doctors      *doctor.Service
	Appointments *appointment.Service
	// Auth may be nil, in which case no admin account is created
	Auth  *auth.Service
	Admin Admin

	Location *time.Location
	Logger   *zerolog.Logger
}

// Run creates whatever part of the demo data set is missing: each entity
// kind is only seeded while its table is empty. The steps are not atomic.
func Run(ctx context.Context, deps Deps) error {
	logger := deps.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	if deps.Auth != nil && deps.Admin.Email != "" {
		_, created, err := deps.Auth.EnsureUser(ctx, deps.Admin.Name, deps.Admin.Email, deps.Admin.Password, model.UserRoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to ensure admin user: %w", err)
		}
		if created {
			logger.Info().Str("email", deps.Admin.Email).Msg("default admin user created")
		}
	}

	doctors, err := seedDoctors(ctx, deps)
	if err != nil {
		return err
	}
	if len(doctors) > 0 {
		logger.Info().Int("count", len(doctors)).Msg("demo doctors created")
	}

	patients, err := seedPatients(ctx, deps)
	if err != nil {
		return err
	}
	if len(patients) > 0 {
		logger.Info().Int("count", len(patients)).Msg("demo patients created")
	}

	n, err := seedAppointments(ctx, deps, model.Today(loc))
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info().Int("count", n).Msg("demo appointments created")
	}
	return nil
}

func intPtr(i int) *int { return &i }

func fee(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func demoDoctors() []*model.CreateDoctorRequest {
	return []*model.CreateDoctorRequest{
		{
			Name:            "Dr. Rajesh Kumar",
			Specialization:  "Cardiology",
			Department:      "Cardiology",
			Contact:         model.Contact{Phone: "01712345678", Email: "rajesh@hospital.com"},
			Experience:      intPtr(15),
			ConsultationFee: fee(500),
			Schedule:        model.Schedule{Days: weekdays, StartTime: "09:00", EndTime: "17:00"},
			Qualifications:  model.Qualifications{{Degree: "MD", University: "AIIMS", Year: 2008}},
		},
		{
			Name:            "Dr. Priya Singh",
			Specialization:  "Pediatrics",
			Department:      "Pediatrics",
			Contact:         model.Contact{Phone: "01798765432", Email: "priya@hospital.com"},
			Experience:      intPtr(10),
			ConsultationFee: fee(400),
			Schedule:        model.Schedule{Days: []string{"Monday", "Wednesday", "Friday"}, StartTime: "10:00", EndTime: "16:00"},
			Qualifications:  model.Qualifications{{Degree: "MD", University: "CMC Vellore", Year: 2013}},
		},
		{
			Name:            "Dr. Amit Patel",
			Specialization:  "Neurology",
			Department:      "Neurology",
			Contact:         model.Contact{Phone: "01654321098", Email: "amit@hospital.com"},
			Experience:      intPtr(12),
			ConsultationFee: fee(600),
			Schedule:        model.Schedule{Days: []string{"Tuesday", "Thursday", "Saturday"}, StartTime: "11:00", EndTime: "18:00"},
			Qualifications:  model.Qualifications{{Degree: "DM", University: "NIMHANS", Year: 2011}},
		},
	}
}

func demoPatients() []*model.CreatePatientRequest {
	return []*model.CreatePatientRequest{
		{
			Name:       "Rahul Sharma",
			Age:        intPtr(35),
			Gender:     model.GenderMale,
			Contact:    model.Contact{Phone: "01999888777", Email: "rahul@example.com"},
			BloodGroup: "O+",
			Address:    model.Address{City: "Mumbai", State: "Maharashtra"},
		},
		{
			Name:       "Neha Verma",
			Age:        intPtr(28),
			Gender:     model.GenderFemale,
			Contact:    model.Contact{Phone: "01888777666", Email: "neha@example.com"},
			BloodGroup: "B+",
			Address:    model.Address{City: "Delhi", State: "Delhi"},
		},
		{
			Name:       "Vikram Singh",
			Age:        intPtr(45),
			Gender:     model.GenderMale,
			Contact:    model.Contact{Phone: "01777666555", Email: "vikram@example.com"},
			BloodGroup: "A+",
			Address:    model.Address{City: "Bangalore", State: "Karnataka"},
		},
	}
}

func seedDoctors(ctx context.Context, deps Deps) ([]*model.Doctor, error) {
	count, err := deps.DoctorRepo.Count(ctx)
	if err != nil || count > 0 {
		return nil, err
	}
	var created []*model.Doctor
	for _, req := range demoDoctors() {
		d, err := deps.Doctors.CreateDoctor(ctx, req)
		if err != nil {
			return created, fmt.Errorf("failed to seed doctor %s: %w", req.Name, err)
		}
		created = append(created, d)
	}
	return created, nil
}

func seedPatients(ctx context.Context, deps Deps) ([]*model.Patient, error) {
	count, err := deps.PatientRepo.Count(ctx)
	if err != nil || count > 0 {
		return nil, err
	}
	var created []*model.Patient
	for _, req := range demoPatients() {
		p, err := deps.Patients.CreatePatient(ctx, req)
		if err != nil {
			return created, fmt.Errorf("failed to seed patient %s: %w", req.Name, err)
		}
		created = append(created, p)
	}
	return created, nil
}

// oldestFirst returns up to n records from a newest-first listing, oldest first.
func oldestFirst[T any](items []T) []T {
	out := make([]T, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	return out
}

func seedAppointments(ctx context.Context, deps Deps, today model.Date) (int, error) {
	count, err := deps.AppointmentRepo.Count(ctx)
	if err != nil || count > 0 {
		return 0, err
	}

	first3 := model.ListParams{Page: 1, Limit: 3}
	patients, _, err := deps.PatientRepo.List(ctx, &model.PatientFilters{ListParams: first3})
	if err != nil {
		return 0, fmt.Errorf("failed to list patients: %w", err)
	}
	doctors, _, err := deps.DoctorRepo.List(ctx, &model.DoctorFilters{ListParams: first3})
	if err != nil {
		return 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	patients, doctors = oldestFirst(patients), oldestFirst(doctors)
	if len(patients) == 0 || len(doctors) == 0 {
		return 0, nil
	}

	tomorrow := today.AddDays(1)
	plan := []struct {
		date   model.Date
		time   string
		reason string
		status model.AppointmentStatus
	}{
		{today, "10:00", "Regular checkup", model.AppointmentStatusConfirmed},
		{tomorrow, "14:00", "Child health checkup", model.AppointmentStatusScheduled},
		{today, "15:30", "Neurological consultation", model.AppointmentStatusCompleted},
	}

	created := 0
	for i, step := range plan {
		p := patients[i%len(patients)]
		d := doctors[i%len(doctors)]
		date := step.date

		status := step.status
		if !status.IsActive() {
			status = model.AppointmentStatusConfirmed
		}
		apt, err := deps.Appointments.CreateAppointment(ctx, &model.CreateAppointmentRequest{
			PatientID:       p.ID.String(),
			DoctorID:        d.ID.String(),
			AppointmentDate: &date,
			AppointmentTime: step.time,
			Reason:          step.reason,
			Status:          status,
		})
		if err != nil {
			return created, fmt.Errorf("failed to seed appointment %q: %w", step.reason, err)
		}
		if status != step.status {
			if _, err := deps.Appointments.UpdateStatus(ctx, apt.ID.String(), step.status); err != nil {
				return created, fmt.Errorf("failed to seed appointment %q: %w", step.reason, err)
			}
		}
		created++
	}
	return created, nil
}
