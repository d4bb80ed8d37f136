package interview

import (
	"strings"
	"unicode/utf8"
)

const (
	MinFieldLength = 2
	MaxFieldLength = 200
)

// SessionConfig is the candidate-supplied context for one rehearsal.
type SessionConfig struct {
	Role    string        `json:"role"`
	Company string        `json:"company"`
	Resume  ResumeContent `json:"resume"`
}

// Normalize trims surrounding whitespace from the text fields.
func (c SessionConfig) Normalize() SessionConfig {
	c.Role = strings.TrimSpace(c.Role)
	c.Company = strings.TrimSpace(c.Company)
	return c
}

// Validate checks that every field is present and within bounds.
func (c SessionConfig) Validate() error {
	c = c.Normalize()
	if err := validateField("role", "Role", c.Role); err != nil {
		return err
	}
	if err := validateField("company", "Company", c.Company); err != nil {
		return err
	}
	if c.Resume == "" {
		return invalid("resume", "Resume file is required.")
	}
	if !c.Resume.Valid() {
		return invalid("resume", "Resume content is not a supported document.")
	}
	return nil
}

func validateField(field, label, value string) error {
	n := utf8.RuneCountInString(value)
	if n < MinFieldLength {
		return invalid(field, "%s must be at least %d characters.", label, MinFieldLength)
	}
	if n > MaxFieldLength {
		return invalid(field, "%s must be at most %d characters.", label, MaxFieldLength)
	}
	return nil
}
