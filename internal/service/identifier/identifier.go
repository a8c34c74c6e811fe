package identifier

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jwalitptl/hospital-api/internal/repository"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type Kind string

const (
	KindPatient     Kind = "patient"
	KindDoctor      Kind = "doctor"
	KindAppointment Kind = "appointment"
)

// MaxAttempts bounds GenerateUnique before it gives up
const MaxAttempts = 5

var prefixes = map[Kind]string{
	KindPatient:     "PAT",
	KindDoctor:      "DOC",
	KindAppointment: "APT",
}

func (k Kind) Prefix() string { return prefixes[k] }

// Resource is the name used in error messages ("Patient with this ID already exists").
func (k Kind) Resource() string {
	switch k {
	case KindPatient:
		return "Patient"
	case KindDoctor:
		return "Doctor"
	default:
		return "Appointment"
	}
}

// Format renders n with the kind's prefix, zero padded to four digits.
// Wider numbers are kept whole: Format(KindPatient, 12345) is PAT12345.
func Format(kind Kind, n int64) string {
	return fmt.Sprintf("%s%04d", kind.Prefix(), n)
}

type Sequence interface {
	Next(ctx context.Context, kind Kind) (int64, error)
}

// Counter is satisfied by every entity repository
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// CountSequence numbers a new record as one past the current row count.
// Two concurrent callers can receive the same value; the store's unique
// constraint catches the collision.
type CountSequence struct {
	counters map[Kind]Counter
}

func NewCountSequence(counters map[Kind]Counter) *CountSequence {
	return &CountSequence{counters: counters}
}

func (s *CountSequence) Next(ctx context.Context, kind Kind) (int64, error) {
	c, ok := s.counters[kind]
	if !ok {
		return 0, fmt.Errorf("no counter for %s", kind)
	}
	n, err := c.Count(ctx)
	if err != nil {
		return 0, err
	}
	return int64(n) + 1, nil
}

// CounterSequence draws from the id_sequences table, which hands out each
// value once.
type CounterSequence struct {
	repo repository.SequenceRepository
}

func NewCounterSequence(repo repository.SequenceRepository) *CounterSequence {
	return &CounterSequence{repo: repo}
}

func (s *CounterSequence) Next(ctx context.Context, kind Kind) (int64, error) {
	return s.repo.Next(ctx, string(kind))
}

// ExistsFunc reports whether a candidate identifier is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

type Generator struct {
	seq  Sequence
	now  func() time.Time
	rand func() int
}

func NewGenerator(seq Sequence) *Generator {
	return &Generator{
		seq:  seq,
		now:  time.Now,
		rand: func() int { return rand.Intn(90) + 10 },
	}
}

func (g *Generator) Generate(ctx context.Context, kind Kind) (string, error) {
	n, err := g.seq.Next(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s id: %w", kind, err)
	}
	return Format(kind, n), nil
}

// GenerateUnique tries the sequential identifier first and then falls back
// to timestamp based candidates, checking each with exists.
func (g *Generator) GenerateUnique(ctx context.Context, kind Kind, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		var candidate string
		if attempt == 0 {
			id, err := g.Generate(ctx, kind)
			if err != nil {
				return "", err
			}
			candidate = id
		} else {
			candidate = g.fallback(kind)
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check %s id: %w", kind, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperrors.DuplicateIdentifier(kind.Resource(), fmt.Errorf("no free %s id after %d attempts", kind, MaxAttempts))
}

// fallback is the prefix, the last six digits of the millisecond clock and
// a two digit random suffix.
func (g *Generator) fallback(kind Kind) string {
	ms := g.now().UnixMilli() % 1_000_000
	return fmt.Sprintf("%s%06d%02d", kind.Prefix(), ms, g.rand())
}
