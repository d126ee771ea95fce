// Package app holds the application services and business logic.
package app

import "unicode"

// Password strength rules. Every violated rule is reported so the user
// can fix all problems in one pass.
const (
	RulePasswordLength  = "Password must be at least 8 characters"
	RulePasswordUpper   = "Password must contain at least one uppercase letter"
	RulePasswordLower   = "Password must contain at least one lowercase letter"
	RulePasswordDigit   = "Password must contain at least one number"
	RulePasswordSpecial = "Password must contain at least one special character"
)

// PasswordPolicy validates password strength. Stateless.
type PasswordPolicy struct{}

// Validate returns all rules the password violates, in a stable order.
// An empty slice means the password is acceptable.
func (PasswordPolicy) Validate(password string) []string {
	var violations []string
	if len(password) < 8 {
		violations = append(violations, RulePasswordLength)
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper {
		violations = append(violations, RulePasswordUpper)
	}
	if !lower {
		violations = append(violations, RulePasswordLower)
	}
	if !digit {
		violations = append(violations, RulePasswordDigit)
	}
	if !special {
		violations = append(violations, RulePasswordSpecial)
	}
	return violations
}
