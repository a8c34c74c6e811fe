package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// fees are sent as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Contact is shared by patients and doctors
type Contact struct {
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// Normalize trims the phone and normalizes the email.
func (c *Contact) Normalize() {
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = NormalizeEmail(c.Email)
}

func (c Contact) Value() (driver.Value, error) { return jsonValue(c) }
func (c *Contact) Scan(src interface{}) error { return jsonScan(src, c) }

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

func (a Address) Value() (driver.Value, error) { return jsonValue(a) }
func (a *Address) Scan(src interface{}) error { return jsonScan(src, a) }

// jsonValue and jsonScan back the JSONB columns
func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
}

// ListParams are the pagination parameters every list operation takes
type ListParams struct {
	Page  int
	Limit int
}

func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// trimPtr trims the string behind p, if any.
func trimPtr(p *string) {
	if p != nil {
		*p = strings.TrimSpace(*p)
	}
}

// NormalizeEmail trims and lower-cases an address before it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
