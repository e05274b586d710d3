package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"travelbooking/internal/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// report json names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Check returns the first violation as a *apperr.ValidationError.
func Check(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("", err.Error())
	}
	fe := verrs[0]
	return apperr.Validation(fe.Field(), fmt.Sprintf("%s failed the %q rule", fe.Field(), fe.Tag()))
}
