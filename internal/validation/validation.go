// Package validation provides input validation utilities
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Payloads is the shared validator instance for JSON request bodies.
var Payloads = validator.New(validator.WithRequiredStructEnabled())

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

// ValidateUsername checks the account-name format.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-32 characters and contain only letters, numbers, dots, hyphens and underscores")
	}
	return nil
}

// ValidatePassword checks minimal credential requirements.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}
	return nil
}

// ClampRating forces a rating into the [1,5] range. Out-of-range values
// are clamped during validation rather than rejected.
func ClampRating(rating int) int {
	if rating < 1 {
		return 1
	}
	if rating > 5 {
		return 5
	}
	return rating
}

// ParseTechnologies resolves the two accepted input shapes for the
// technologies field: a JSON array takes precedence, otherwise the value
// is split on commas. Malformed input yields an empty list, not an error.
func ParseTechnologies(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	if strings.HasPrefix(raw, "[") {
		var parsed []any
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return []string{}
		}
		out := make([]string, 0, len(parsed))
		for _, v := range parsed {
			s := strings.TrimSpace(fmt.Sprint(v))
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
