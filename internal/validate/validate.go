// Package validate holds the form validation rules shared by the public
// submission endpoints and the operator CLI.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	phoneChars = regexp.MustCompile(`^\+?[0-9 ()./-]+$`)
	postcodeNL = regexp.MustCompile(`^[1-9][0-9]{3} ?[A-Za-z]{2}$`)
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("postcode", func(fl validator.FieldLevel) bool {
			return IsPostcode(fl.Field().String())
		})
		_ = v.RegisterValidation("mail", func(fl validator.FieldLevel) bool {
			return IsEmail(fl.Field().String())
		})
	})
	return v
}

// IsEmail applies the validator's RFC 5322 email rule and additionally
// requires a dotted domain with an alphabetic TLD, so "jan@localhost" style
// addresses that cannot be replied to are rejected.
func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) > 254 || strings.Contains(s, "..") {
		return false
	}
	if instance().Var(s, "email") != nil {
		return false
	}
	domain := s[strings.LastIndexByte(s, '@')+1:]
	dot := strings.LastIndexByte(domain, '.')
	if dot <= 0 {
		return false
	}
	tld := domain[dot+1:]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// IsPhone accepts 7 to 15 digits with an optional leading plus and the usual
// separators.
func IsPhone(s string) bool {
	s = strings.TrimSpace(s)
	if !phoneChars.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

// IsPostcode accepts Dutch postal codes ("1234 AB", "1234ab").
func IsPostcode(s string) bool {
	return postcodeNL.MatchString(strings.TrimSpace(s))
}

// Error lists the fields that failed validation, keyed by JSON name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return strings.Join(parts, ", ")
}

// Struct validates s against its validate tags. The returned error is a
// *Error for rule failures.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "mail", "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "postcode":
		return "must be a valid postal code"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

// TrimStrings trims surrounding whitespace from every exported string field
// of the struct pointed to by ptr.
func TrimStrings(ptr any) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
