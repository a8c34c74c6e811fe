package postgres

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// nonNil keeps NOT NULL TEXT[] columns from receiving NULL
func nonNil(a pq.StringArray) pq.StringArray {
	if a == nil {
		return pq.StringArray{}
	}
	return a
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
