package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/parivartan/platform-api/internal/app/models"
)

// Validation rule patterns
var (
	// Username: letters, digits, dot and underscore, 3 to 30 characters
	UsernamePattern = `^[A-Za-z0-9._]{3,30}$`

	// Password min length
	PasswordMinLength = 8
	PasswordMaxLength = 72
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Username *regexp.Regexp
}{
	Username: regexp.MustCompile(UsernamePattern),
}

// IsValidUsername reports whether s is an acceptable username
func IsValidUsername(s string) bool {
	if !CompiledPatterns.Username.MatchString(s) {
		return false
	}
	return !strings.HasPrefix(s, ".") && !strings.HasSuffix(s, ".")
}

// IsStrongPassword requires the minimum length, at least one letter and one digit.
// bcrypt ignores input past 72 bytes, so longer passwords are refused.
func IsStrongPassword(s string) bool {
	if len(s) < PasswordMinLength || len(s) > PasswordMaxLength {
		return false
	}

	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// NormalizeEmail lower-cases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterRules installs the custom binding tags "username", "password" and "role"
func RegisterRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"username": func(fl validator.FieldLevel) bool {
			return IsValidUsername(fl.Field().String())
		},
		"password": func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		},
		"role": func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		},
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
