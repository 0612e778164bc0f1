package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	mu             sync.RWMutex
	customMessages = map[string]string{}
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON (or form) name, which is what clients sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// RegisterValidation adds a custom tag. message is a format string that
// receives the field name, e.g. "%s must be a supported language".
func RegisterValidation(tag string, fn validator.Func, message string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := validate.RegisterValidation(tag, fn); err != nil {
		return err
	}
	customMessages[tag] = message
	return nil
}

// ValidateStruct validates s and returns a *ValidationError keyed by field
// name when any rule fails.
func ValidateStruct(s interface{}) error {
	mu.RLock()
	defer mu.RUnlock()

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return NewValidationError(validationErrs)
	}
	return err
}
