package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._]{1,30}$`)

// PasswordSymbols is the set of special characters a password must draw from.
const PasswordSymbols = "!@#$%^&*"

const (
	passwordMinLen = 8
	passwordMaxLen = 12
)

// ValidUsername reports whether s is 1-30 letters, digits, periods or underscores.
func ValidUsername(s string) bool {
	return usernameRe.MatchString(s)
}

// ValidPassword reports whether s is 8-12 characters long and contains at least one
// digit, one lowercase letter, one uppercase letter and one of PasswordSymbols.
// Line breaks are not allowed.
func ValidPassword(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < passwordMinLen || n > passwordMaxLen {
		return false
	}
	var digit, lower, upper, symbol bool
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029':
			return false
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return digit && lower && upper && symbol
}

func register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
}

// Init configures the global validator used by Gin's binding.
// - Uses form tag names in errors.
// - Registers the username and strongpwd tags.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}

// New returns a standalone validator with the same custom tags.
func New() *validator.Validate {
	v := validator.New()
	register(v)
	return v
}

// ToDetails converts validation/binding errors into a map[field]message.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "username":
		return "must be 1-30 characters long and can only contain letters, numbers, periods, and underscores"
	case "strongpwd":
		return "must be 8-12 characters long and include at least one uppercase letter, one lowercase letter, one number, and one special character"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
		}
		return fmt.Sprintf("validation failed for '%s'", tag)
	}
}
