package memory

import (
	"context"
	"fmt"
)

type sequenceRepository struct {
	s *Store
}

// Next mirrors the id_sequences counter: the first value for a kind is one
// past the rows already stored.
func (r *sequenceRepository) Next(_ context.Context, kind string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if v, ok := r.s.sequences[kind]; ok {
		r.s.sequences[kind] = v + 1
		return v + 1, nil
	}

	var count int
	switch kind {
	case "patient":
		count = len(r.s.patients)
	case "doctor":
		count = len(r.s.doctors)
	case "appointment":
		count = len(r.s.appointments)
	default:
		return 0, fmt.Errorf("unknown sequence kind %q", kind)
	}
	r.s.sequences[kind] = int64(count) + 1
	return int64(count) + 1, nil
}
