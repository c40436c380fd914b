// Package validation checks decoded request bodies against their field
// constraints and reports the first violation in a client-readable form.
package validation

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error is the first constraint a request violated.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsObjectID(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// IsObjectID reports whether s is a 24 character hex object id.
func IsObjectID(s string) bool {
	return primitive.IsValidObjectID(s)
}

// Struct validates v and returns nil or the first violation as *Error.
func Struct(v interface{}) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if stderrors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return describe(fieldErrors[0])
	}
	return &Error{Message: err.Error()}
}

func describe(fe validator.FieldError) *Error {
	field := fe.Field()
	quoted := fmt.Sprintf("%q", field)
	isString := fe.Kind() == reflect.String

	var msg string
	switch fe.Tag() {
	case "required":
		msg = quoted + " is required"
	case "min":
		if isString {
			msg = fmt.Sprintf("%s length must be at least %s characters long", quoted, fe.Param())
		} else {
			msg = fmt.Sprintf("%s must be greater than or equal to %s", quoted, fe.Param())
		}
	case "max":
		if isString {
			msg = fmt.Sprintf("%s length must be less than or equal to %s characters long", quoted, fe.Param())
		} else {
			msg = fmt.Sprintf("%s must be less than or equal to %s", quoted, fe.Param())
		}
	case "gte":
		msg = fmt.Sprintf("%s must be greater than or equal to %s", quoted, fe.Param())
	case "lte":
		msg = fmt.Sprintf("%s must be less than or equal to %s", quoted, fe.Param())
	case "email":
		msg = quoted + " must be a valid email"
	case "oneof":
		msg = fmt.Sprintf("%s must be one of [%s]", quoted, strings.Join(strings.Fields(fe.Param()), ", "))
	case "objectid":
		msg = fmt.Sprintf("%s with value %q fails to match the valid mongo id pattern", quoted, fmt.Sprint(fe.Value()))
	default:
		msg = quoted + " is invalid"
	}
	return &Error{Field: field, Message: msg}
}

// DescribeDecodeError turns a JSON decoding failure into the same message
// style Struct produces.
func DescribeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%q must be a %s", lastSegment(typeErr.Field), kindName(typeErr.Type))
	}
	var timeErr *time.ParseError
	if stderrors.As(err, &timeErr) {
		return "date must be a valid date"
	}
	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return "request body is not valid JSON"
	}
	if err != nil && err.Error() == "EOF" {
		return "request body is required"
	}
	return "invalid request body"
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "valid value"
	}
	if t == reflect.TypeOf(time.Time{}) {
		return "valid date"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Ptr:
		return kindName(t.Elem())
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "valid value"
	}
}
