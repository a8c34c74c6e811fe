package doctor

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/service/identifier"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

func intPtr(i int) *int { return &i }

func feePtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func newService(store *memory.Store) *Service {
	ids := identifier.NewGenerator(identifier.NewCounterSequence(store.Sequences()))
	return NewService(store.Doctors(), ids, nil, nil)
}

func request(name, spec string) *model.CreateDoctorRequest {
	return &model.CreateDoctorRequest{
		Name:            name,
		Specialization:  spec,
		Department:      spec,
		Contact:         model.Contact{Phone: "01712345678", Email: "rajesh@hospital.com"},
		Experience:      intPtr(15),
		ConsultationFee: feePtr(500),
		Schedule:        model.Schedule{Days: []string{"Monday", "Friday"}, StartTime: "09:00", EndTime: "17:00"},
	}
}

func TestCreateDoctor(t *testing.T) {
	svc := newService(memory.NewStore())

	d, err := svc.CreateDoctor(context.Background(), request("Dr. Rajesh Kumar", "Cardiology"))
	require.NoError(t, err)
	assert.Equal(t, "DOC0001", d.DoctorID)
	assert.True(t, d.IsAvailable)
	assert.Equal(t, model.DoctorStatusActive, d.Status)

	d, err = svc.CreateDoctor(context.Background(), request("Dr. Priya Singh", "Pediatrics"))
	require.NoError(t, err)
	assert.Equal(t, "DOC0002", d.DoctorID)
}

func TestCreateDoctor_Validation(t *testing.T) {
	svc := newService(memory.NewStore())
	ctx := context.Background()

	req := request("Dr. Rajesh Kumar", "Cardiology")
	req.ConsultationFee = nil
	req.Schedule.Days = []string{"Someday"}
	_, err := svc.CreateDoctor(ctx, req)
	appErr, ok := apperrors.FromError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Message, "consultationFee")
	assert.Contains(t, appErr.Message, "schedule.days[0] must be a day of the week")

	req = request("Dr. Rajesh Kumar", "Cardiology")
	req.ConsultationFee = feePtr(-1)
	_, err = svc.CreateDoctor(ctx, req)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCreateDoctor_DuplicateID(t *testing.T) {
	svc := newService(memory.NewStore())
	ctx := context.Background()

	req := request("Dr. Rajesh Kumar", "Cardiology")
	req.DoctorID = "DOC0007"
	_, err := svc.CreateDoctor(ctx, req)
	require.NoError(t, err)

	_, err = svc.CreateDoctor(ctx, req)
	assert.True(t, apperrors.Is(err, apperrors.ErrDuplicateIdentifier))
}

func TestListBySpecialization_AvailableOnly(t *testing.T) {
	svc := newService(memory.NewStore())
	ctx := context.Background()

	_, err := svc.CreateDoctor(ctx, request("Dr. Rajesh Kumar", "Cardiology"))
	require.NoError(t, err)
	away := request("Dr. Away", "Cardiology")
	away.IsAvailable = new(bool)
	_, err = svc.CreateDoctor(ctx, away)
	require.NoError(t, err)

	doctors, err := svc.ListBySpecialization(ctx, "cardio")
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "Dr. Rajesh Kumar", doctors[0].Name)
}

func TestUpdateDoctor_Fee(t *testing.T) {
	svc := newService(memory.NewStore())
	ctx := context.Background()

	d, err := svc.CreateDoctor(ctx, request("Dr. Rajesh Kumar", "Cardiology"))
	require.NoError(t, err)

	updated, err := svc.UpdateDoctor(ctx, d.DoctorID, &model.UpdateDoctorRequest{ConsultationFee: feePtr(750)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(750).Equal(updated.ConsultationFee))
	assert.Equal(t, "Cardiology", updated.Specialization)

	_, err = svc.UpdateDoctor(ctx, "DOC4040", &model.UpdateDoctorRequest{})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestDeleteDoctor(t *testing.T) {
	svc := newService(memory.NewStore())
	ctx := context.Background()

	d, err := svc.CreateDoctor(ctx, request("Dr. Rajesh Kumar", "Cardiology"))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteDoctor(ctx, d.DoctorID))
	assert.True(t, apperrors.Is(svc.DeleteDoctor(ctx, d.DoctorID), apperrors.ErrNotFound))
}

func TestCreateDoctor_TrimsText(t *testing.T) {
	svc := newService(memory.NewStore())
	ctx := context.Background()

	_, err := svc.CreateDoctor(ctx, request("   ", "Cardiology"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please provide all required fields: name")

	_, err = svc.CreateDoctor(ctx, request("Dr. Rajesh Kumar", "  "))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	d, err := svc.CreateDoctor(ctx, request("  Dr. Rajesh Kumar ", " Cardiology "))
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rajesh Kumar", d.Name)
	assert.Equal(t, "Cardiology", d.Specialization)
	assert.Equal(t, "Cardiology", d.Department)
}

func TestUpdateDoctor_RejectsBlankName(t *testing.T) {
	svc := newService(memory.NewStore())
	ctx := context.Background()

	d, err := svc.CreateDoctor(ctx, request("Dr. Rajesh Kumar", "Cardiology"))
	require.NoError(t, err)

	blank := "   "
	_, err = svc.UpdateDoctor(ctx, d.DoctorID, &model.UpdateDoctorRequest{Name: &blank})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	stored, err := svc.GetDoctor(ctx, d.DoctorID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rajesh Kumar", stored.Name)
}
