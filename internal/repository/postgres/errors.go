package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/jwalitptl/hospital-api/internal/repository"
)

const (
	uniqueViolation = "23505"
	activeSlotIndex = "appointments_active_slot_idx"
	userEmailKey    = "users_email_key"
)

// translate maps driver errors onto the repository sentinels, keeping the
// original error in the chain.
func translate(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch pqErr.Constraint {
		case activeSlotIndex:
			return fmt.Errorf("%w: %v", repository.ErrSlotTaken, err)
		case userEmailKey:
			return fmt.Errorf("%w: %v", repository.ErrDuplicateEmail, err)
		default:
			return fmt.Errorf("%w: %v", repository.ErrDuplicateID, err)
		}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// containsPattern builds an ILIKE pattern matching s anywhere, with the
// wildcard characters in s taken literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
