package communityplans

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/forrest-fire-fund/cnx-backend/internal/utils"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a submission beyond the mandatory village fields. It
// returns nil or one detail per failing field.
func (r *CreateRequest) Validate() []utils.FieldError {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []utils.FieldError{{Field: "body", Message: err.Error()}}
	}

	details := make([]utils.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, utils.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
		})
	}
	return details
}

// fieldPath turns "CreateRequest.fire_management.pre_incident[0].timing"
// into "fire_management.pre_incident.0.timing".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Path `%s` is required.", fe.Field())
	case "oneof":
		return fmt.Sprintf("`%v` is not a valid enum value for path `%s`.", fe.Value(), fe.Field())
	case "gte":
		return fmt.Sprintf("Path `%s` (%v) is less than minimum allowed value (%s).", fe.Field(), fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("Path `%s` is invalid (%s).", fe.Field(), fe.Tag())
	}
}
