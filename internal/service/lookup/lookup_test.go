package lookup

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

func TestPatient_ByIDOrBusinessID(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	p := &model.Patient{PatientID: "PAT0001", Name: "Rahul Sharma"}
	require.NoError(t, store.Patients().Create(ctx, p))

	byID, err := Patient(ctx, store.Patients(), p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "PAT0001", byID.PatientID)

	byBusiness, err := Patient(ctx, store.Patients(), "PAT0001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byBusiness.ID)
}

func TestNotFound(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	_, err := Doctor(ctx, store.Doctors(), "DOC9999")
	require.Error(t, err)
	appErr, ok := apperrors.FromError(err)
	require.True(t, ok)
	assert.Equal(t, "Doctor not found", appErr.Message)

	_, err = Appointment(ctx, store.Appointments(), uuid.NewString())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
