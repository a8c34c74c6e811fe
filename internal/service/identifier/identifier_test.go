package identifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type fixedCounter int

func (c fixedCounter) Count(context.Context) (int, error) { return int(c), nil }

type stubSequence struct {
	next int64
	err  error
}

func (s *stubSequence) Next(context.Context, Kind) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.next++
	return s.next, nil
}

func TestFormat(t *testing.T) {
	tests := []struct {
		kind Kind
		n    int64
		want string
	}{
		{KindPatient, 4, "PAT0004"},
		{KindDoctor, 1, "DOC0001"},
		{KindAppointment, 9999, "APT9999"},
		{KindAppointment, 12345, "APT12345"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.kind, tt.n))
	}
}

func TestCountSequence(t *testing.T) {
	seq := NewCountSequence(map[Kind]Counter{KindPatient: fixedCounter(3)})

	gen := NewGenerator(seq)
	id, err := gen.Generate(context.Background(), KindPatient)
	require.NoError(t, err)
	assert.Equal(t, "PAT0004", id)

	_, err = gen.Generate(context.Background(), KindDoctor)
	assert.Error(t, err)
}

func TestGenerateUnique_SequentialFirst(t *testing.T) {
	gen := NewGenerator(&stubSequence{})

	id, err := gen.GenerateUnique(context.Background(), KindPatient, func(context.Context, string) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "PAT0001", id)
}

func TestGenerateUnique_FallsBackToTimestamp(t *testing.T) {
	gen := NewGenerator(&stubSequence{})
	gen.now = func() time.Time { return time.UnixMilli(1_700_000_123_456) }
	gen.rand = func() int { return 42 }

	var tried []string
	id, err := gen.GenerateUnique(context.Background(), KindPatient, func(_ context.Context, id string) (bool, error) {
		tried = append(tried, id)
		return id == "PAT0001", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "PAT12345642", id)
	assert.Equal(t, []string{"PAT0001", "PAT12345642"}, tried)
}

func TestGenerateUnique_Exhausted(t *testing.T) {
	gen := NewGenerator(&stubSequence{})

	calls := 0
	_, err := gen.GenerateUnique(context.Background(), KindPatient, func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrDuplicateIdentifier))
	assert.Equal(t, MaxAttempts, calls)
}

func TestGenerateUnique_SequenceError(t *testing.T) {
	boom := errors.New("db down")
	gen := NewGenerator(&stubSequence{err: boom})

	_, err := gen.GenerateUnique(context.Background(), KindDoctor, func(context.Context, string) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, boom)
}
