package validator

import (
	"errors"
	"strings"
)

// ValidateEmail checks basic shape only. Donor emails come from data entry
// forms and may be personal addresses, so no domain restrictions apply.
func ValidateEmail(email string) error {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.New("invalid email format")
	}

	if !strings.Contains(parts[1], ".") {
		return errors.New("invalid email domain")
	}

	return nil
}
