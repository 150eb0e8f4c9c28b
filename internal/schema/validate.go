// Package schema validates untyped input records against typed forms.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/markdave123-py/Moleqa/internal/models"
)

var validate = newValidator()

var enumTags = map[string]bool{
	"oneof":           true,
	"model_type":      true,
	"prediction_type": true,
	"quantum_depth":   true,
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("schema: register %s: %v", tag, err))
		}
	}
	must("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	must("model_type", func(fl validator.FieldLevel) bool {
		return models.ModelType(fl.Field().String()).Valid()
	})
	must("prediction_type", func(fl validator.FieldLevel) bool {
		return models.PredictionType(fl.Field().String()).Valid()
	})
	must("quantum_depth", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseQuantumDepth(fl.Field().String())
		return ok
	})
	return v
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Decode binds input into a T and validates it. Absent keys and JSON nulls
// leave the zero value. Every failing field is reported in one
// *ValidationError, in T's field order.
func Decode[T any](input map[string]any) (T, error) {
	var out T
	rv := reflect.ValueOf(&out).Elem()
	rt := rv.Type()
	if rt.Kind() != reflect.Struct {
		panic(fmt.Sprintf("schema: Decode target %s is not a struct", rt))
	}

	reasons := make(map[string]string)
	order := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		name := jsonName(rt.Field(i))
		if name == "" {
			continue
		}
		order = append(order, name)
		raw, ok := input[name]
		if !ok || raw == nil {
			continue
		}
		if err := assign(rv.Field(i), raw); err != nil {
			reasons[name] = ReasonWrongType
		}
	}

	present := func(name string) bool {
		raw, ok := input[name]
		return ok && raw != nil
	}
	for name, reason := range structReasons(&out, present) {
		if _, seen := reasons[name]; !seen {
			reasons[name] = reason
		}
	}

	if len(reasons) == 0 {
		return out, nil
	}
	fields := make([]FieldError, 0, len(reasons))
	for _, name := range order {
		if reason, ok := reasons[name]; ok {
			fields = append(fields, FieldError{Field: name, Reason: reason})
		}
	}
	return out, Invalid("invalid input", fields...)
}

// Check validates an already typed value. Zero required fields are reported
// as missing.
func Check(v any) error {
	reasons := structReasons(v, func(string) bool { return false })
	if len(reasons) == 0 {
		return nil
	}

	rt := reflect.Indirect(reflect.ValueOf(v)).Type()
	fields := make([]FieldError, 0, len(reasons))
	for i := 0; i < rt.NumField(); i++ {
		name := jsonName(rt.Field(i))
		if reason, ok := reasons[name]; ok {
			fields = append(fields, FieldError{Field: name, Reason: reason})
		}
	}
	return Invalid("invalid input", fields...)
}

func structReasons(v any, present func(string) bool) map[string]string {
	out := make(map[string]string)
	err := validate.Struct(v)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError means a programming mistake, not bad input.
		panic(fmt.Sprintf("schema: %v", err))
	}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = reasonFor(fe, present(fe.Field()))
	}
	return out
}

func reasonFor(fe validator.FieldError, present bool) string {
	switch tag := fe.Tag(); {
	case tag == "required" && !present:
		return ReasonMissing
	case tag == "required" && fe.Kind() == reflect.String, tag == "notblank":
		return ReasonEmpty
	case enumTags[tag]:
		return ReasonNotInEnum
	default:
		return ReasonOutOfRange
	}
}

func assign(dst reflect.Value, raw any) error {
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), raw); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("want string, got %T", raw)
		}
		dst.SetString(s)
		return nil
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := toInt(raw)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
		return nil
	default:
		return fmt.Errorf("unsupported field kind %s", dst.Kind())
	}
}

func toInt(raw any) (int64, error) {
	switch n := raw.(type) {
	case json.Number:
		return n.Int64()
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	default:
		return 0, fmt.Errorf("want integer, got %T", raw)
	}
}
