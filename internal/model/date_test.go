package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
	}{
		{"2024-06-01", NewDate(2024, time.June, 1)},
		{"2024-06-01T00:00:00Z", NewDate(2024, time.June, 1)},
		{"2024-06-01T18:45:00Z", NewDate(2024, time.June, 1)},
		{"2024-06-01T23:30:00-05:00", NewDate(2024, time.June, 1)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %s", tt.in, got)
	}

	_, err := ParseDate("01/06/2024")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	var v struct {
		D  Date  `json:"d"`
		FP *Date `json:"fp,omitempty"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-06-01T10:00:00.000Z"}`), &v))
	assert.Equal(t, "2024-06-01", v.D.String())
	assert.Nil(t, v.FP)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-06-01"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"d":20240601}`), &v))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-06-01", d.String())

	require.NoError(t, d.Scan([]byte("2024-07-02")))
	assert.Equal(t, "2024-07-02", d.String())

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-07-02", v)

	assert.Error(t, d.Scan(42))
}

func TestDate_AddDays(t *testing.T) {
	d := NewDate(2024, time.February, 28)
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.True(t, d.Before(d.AddDays(1)))
}
