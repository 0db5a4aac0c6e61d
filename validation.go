package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Report json field names in validation errors.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

func isEmail(s string) bool {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return strings.Contains(s, "@")
	}
	return v.Var(s, "required,email") == nil
}

// bindJSON binds and validates the body into dst, translating failures into
// the ValidationError / ErrInvalidJSON taxonomy.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		// empty body: report the missing fields
		err = binding.Validator.ValidateStruct(dst)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		errs := FieldErrors{}
		for _, fe := range verrs {
			errs.Add(fe.Field(), validationMessage(fe))
		}
		return errs.Err()
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		errs := FieldErrors{}
		errs.Add(typeErr.Field, fmt.Sprintf("The %s must be a %s.", typeErr.Field, typeErr.Type.Kind()))
		return errs.Err()
	}
	return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", fe.Field())
	default:
		return fmt.Sprintf("The %s is invalid.", fe.Field())
	}
}
