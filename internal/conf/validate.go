// conf/validate.go

package conf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bigearthnet-go/bencommon/internal/errors"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

var (
	settingsValidate *validator.Validate
	crsPattern       = regexp.MustCompile(`^(?i)epsg:\d{4,6}$`)
)

func init() {
	settingsValidate = validator.New()
	_ = settingsValidate.RegisterValidation("crs", validateCRS)
}

// validateCRS accepts authority codes of the form EPSG:<code>.
func validateCRS(fl validator.FieldLevel) bool {
	return crsPattern.MatchString(fl.Field().String())
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := settingsValidate.Struct(settings); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				ve.Errors = append(ve.Errors, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if err := validateOutputSettings(&settings.Output); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return errors.New(ve).
			Component("configuration").
			Category(errors.CategoryValidation).
			Context("errors", strings.Join(ve.Errors, "; ")).
			Build()
	}
	return nil
}

func validateOutputSettings(output *OutputSettings) error {
	switch output.Type {
	case "sqlite":
		if output.SQLite.Path == "" {
			return fmt.Errorf("output.sqlite.path is required when output.type is sqlite")
		}
	case "mysql":
		if output.MySQL.Host == "" || output.MySQL.Database == "" {
			return fmt.Errorf("output.mysql.host and output.mysql.database are required when output.type is mysql")
		}
	case "csv":
		if output.CSV.Path == "" {
			return fmt.Errorf("output.csv.path is required when output.type is csv")
		}
	}
	return nil
}
