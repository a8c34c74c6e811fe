package seed

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/service/appointment"
	"github.com/jwalitptl/hospital-api/internal/service/auth"
	"github.com/jwalitptl/hospital-api/internal/service/doctor"
	"github.com/jwalitptl/hospital-api/internal/service/identifier"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
	pkgauth "github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

func newDeps(store *memory.Store) Deps {
	ids := identifier.NewGenerator(identifier.NewCounterSequence(store.Sequences()))
	return Deps{
		PatientRepo:     store.Patients(),
		DoctorRepo:      store.Doctors(),
		AppointmentRepo: store.Appointments(),
		Patients:        patient.NewService(store.Patients(), ids, nil, nil),
		Doctors:         doctor.NewService(store.Doctors(), ids, nil, nil),
		Appointments: appointment.NewService(appointment.Options{
			Appointments: store.Appointments(),
			Patients:     store.Patients(),
			Doctors:      store.Doctors(),
			IDs:          ids,
		}),
		Auth: auth.NewService(store.Users(),
			pkgauth.NewJWTService("secret", time.Hour, "hospital-api"),
			security.NewBcryptHasher(bcrypt.MinCost), nil),
		Admin: Admin{Name: "Administrator", Email: "admin@hospital.com", Password: "password123"},
	}
}

func TestRun_SeedsDemoData(t *testing.T) {
	store := memory.NewStore()
	deps := newDeps(store)
	ctx := context.Background()

	require.NoError(t, Run(ctx, deps))

	doctors, total, err := store.Doctors().List(ctx, &model.DoctorFilters{ListParams: model.ListParams{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	byID := map[string]*model.Doctor{}
	for _, d := range doctors {
		byID[d.DoctorID] = d
	}
	require.Contains(t, byID, "DOC0001")
	assert.Equal(t, "Dr. Rajesh Kumar", byID["DOC0001"].Name)
	assert.True(t, decimal.NewFromInt(500).Equal(byID["DOC0001"].ConsultationFee))

	n, err := store.Patients().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	today, err := store.Appointments().ListByDate(ctx, model.Today(time.UTC))
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.Equal(t, "10:00", today[0].AppointmentTime)
	assert.Equal(t, model.AppointmentStatusConfirmed, today[0].Status)
	assert.Equal(t, model.AppointmentStatusCompleted, today[1].Status)
	assert.True(t, decimal.NewFromInt(600).Equal(today[1].ConsultationFee))

	_, err = store.Users().GetByEmail(ctx, "admin@hospital.com")
	assert.NoError(t, err)
}

func TestRun_IsRepeatable(t *testing.T) {
	store := memory.NewStore()
	deps := newDeps(store)
	ctx := context.Background()

	require.NoError(t, Run(ctx, deps))
	require.NoError(t, Run(ctx, deps))

	n, err := store.Appointments().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
