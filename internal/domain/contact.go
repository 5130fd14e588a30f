package domain

import (
	"encoding/json"
	"errors"
)

// ContactDetails is the structured contact form.
type ContactDetails struct {
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
}

// ContactInfo is a tagged union: either a free-form string or a
// structured record. Exactly one of Raw/Structured is set.
type ContactInfo struct {
	Raw        string
	Structured *ContactDetails
}

// IsStructured reports which arm of the union is populated.
func (c *ContactInfo) IsStructured() bool {
	return c != nil && c.Structured != nil
}

// UnmarshalJSON accepts either a JSON string or an object.
func (c *ContactInfo) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		c.Raw = raw
		c.Structured = nil
		return nil
	}
	var details ContactDetails
	if err := json.Unmarshal(data, &details); err == nil {
		c.Raw = ""
		c.Structured = &details
		return nil
	}
	return errors.New("contactInfo must be a string or an object")
}

// MarshalJSON emits the populated arm.
func (c ContactInfo) MarshalJSON() ([]byte, error) {
	if c.Structured != nil {
		return json.Marshal(c.Structured)
	}
	return json.Marshal(c.Raw)
}
