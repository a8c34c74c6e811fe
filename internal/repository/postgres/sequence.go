package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/hospital-api/internal/repository"
)

// sequenceTables maps a counter kind to the table it numbers. The first
// call for a kind seeds the counter past the rows already stored.
var sequenceTables = map[string]string{
	"patient":     "patients",
	"doctor":      "doctors",
	"appointment": "appointments",
}

func (r *sequenceRepository) Next(ctx context.Context, kind string) (int64, error) {
	table, ok := sequenceTables[kind]
	if !ok {
		return 0, fmt.Errorf("unknown sequence kind %q", kind)
	}

	query := fmt.Sprintf(`
		INSERT INTO id_sequences (kind, value)
		VALUES ($1, (SELECT COUNT(*) + 1 FROM %s))
		ON CONFLICT (kind) DO UPDATE SET value = id_sequences.value + 1
		RETURNING value
	`, table)

	var value int64
	if err := r.db.GetContext(ctx, &value, query, kind); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", kind, err)
	}
	return value, nil
}

var _ repository.SequenceRepository = (*sequenceRepository)(nil)
