package validator

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type sample struct {
	Name    string   `json:"name" binding:"required"`
	Age     *int     `json:"age" binding:"required,gte=0,lte=120"`
	Time    string   `json:"appointmentTime" binding:"omitempty,hhmm"`
	Days    []string `json:"days" binding:"dive,weekday"`
	Contact contact  `json:"contact"`
}

func intPtr(i int) *int { return &i }

func TestIsHHMM(t *testing.T) {
	for _, ok := range []string{"00:00", "09:30", "23:59"} {
		assert.True(t, IsHHMM(ok), ok)
	}
	for _, bad := range []string{"24:00", "9:30", "10:60", "10:00:00", ""} {
		assert.False(t, IsHHMM(bad), bad)
	}
}

func TestMessage_ListsMissingFields(t *testing.T) {
	v := New()
	err := v.Struct(sample{})
	require.Error(t, err)

	msg := Message(err)
	assert.True(t, strings.HasPrefix(msg, "Please provide all required fields: "), msg)
	assert.Contains(t, msg, "name")
	assert.Contains(t, msg, "age")
	assert.Contains(t, msg, "contact.phone")
	assert.Contains(t, msg, "contact.email")
}

func TestMessage_RuleViolations(t *testing.T) {
	v := New()
	err := v.Struct(sample{
		Name:    "Rahul Sharma",
		Age:     intPtr(130),
		Time:    "25:00",
		Days:    []string{"Funday"},
		Contact: contact{Phone: "01999888777", Email: "not-an-email"},
	})
	require.Error(t, err)

	msg := Message(err)
	assert.Contains(t, msg, "age must be at most 120")
	assert.Contains(t, msg, "appointmentTime must be a time in HH:MM format")
	assert.Contains(t, msg, "days[0] must be a day of the week")
	assert.Contains(t, msg, "contact.email must be a valid email")
	assert.NotContains(t, msg, "Please provide")
}

func TestMessage_JSONErrors(t *testing.T) {
	var out struct {
		Age int `json:"age"`
	}
	err := json.Unmarshal([]byte(`{"age": "old"}`), &out)
	assert.Equal(t, "age has an invalid type", Message(err))

	err = json.Unmarshal([]byte(`{`), &out)
	assert.NotEmpty(t, Message(err))
}
