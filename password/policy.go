package password

import "errors"

// Policy violation errors. All five rules must hold for a password to be
// accepted; ValidatePolicy reports the first one that fails.
var (
	ErrTooShort  = errors.New("password must be at least 8 characters long")
	ErrNoUpper   = errors.New("password must contain at least one uppercase letter")
	ErrNoLower   = errors.New("password must contain at least one lowercase letter")
	ErrNoDigit   = errors.New("password must contain at least one number")
	ErrNoSpecial = errors.New("password must contain at least one special character")
)

// ValidatePolicy returns nil iff pw satisfies all five strength rules:
// length >= 8, an uppercase letter, a lowercase letter, a digit, and a
// character outside [A-Za-z0-9]. Rules are ASCII-class based. No I/O, no
// side effects.
func ValidatePolicy(pw string) error {
	if len(pw) < 8 {
		return ErrTooShort
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return ErrNoUpper
	case !hasLower:
		return ErrNoLower
	case !hasDigit:
		return ErrNoDigit
	case !hasSpecial:
		return ErrNoSpecial
	}

	return nil
}
