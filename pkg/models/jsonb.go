package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a []string that serializes to PostgreSQL JSONB.
type StringList []string

// Value implements driver.Valuer for database serialization.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for database deserialization.
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into StringList", value)
	}

	return json.Unmarshal(bytes, s)
}

// CreditEntry is a single film credit: a person's display name plus the
// slug identifying them on the primary source.
type CreditEntry struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// CreditList is a []CreditEntry that serializes to PostgreSQL JSONB.
type CreditList []CreditEntry

// Value implements driver.Valuer for database serialization.
func (c CreditList) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for database deserialization.
func (c *CreditList) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into CreditList", value)
	}

	return json.Unmarshal(bytes, c)
}

// JSONBMap is a map type that handles PostgreSQL JSONB serialization.
type JSONBMap map[string]interface{}

// Value implements driver.Valuer for database serialization.
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for database deserialization.
func (j *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONBMap", value)
	}

	return json.Unmarshal(bytes, j)
}

// JSONBList is a generic JSON array type that handles PostgreSQL JSONB
// serialization for payloads we store verbatim from the enrichment source.
type JSONBList []map[string]interface{}

// Value implements driver.Valuer for database serialization.
func (j JSONBList) Value() (driver.Value, error) {
	if j == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for database deserialization.
func (j *JSONBList) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSONBList", value)
	}

	return json.Unmarshal(bytes, j)
}
