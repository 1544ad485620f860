// Package env fills tagged config structs from environment variables.
package env

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Validator is implemented by config structs that check themselves after
// loading.
type Validator interface {
	Validate() error
}

// LookupFunc resolves a variable name the way os.LookupEnv does.
type LookupFunc func(key string) (string, bool)

// ErrInvalidValue is returned when a variable cannot be parsed into its field.
type ErrInvalidValue struct {
	Field  string
	EnvVar string
	Value  string
	Err    error
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value for %s=%q (field: %s): %v", e.EnvVar, e.Value, e.Field, e.Err)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Err
}

// ErrMissing is returned for a required:"true" field whose variable is unset.
type ErrMissing struct {
	Field  string
	EnvVar string
}

func (e ErrMissing) Error() string {
	return fmt.Sprintf("%s is required (field: %s)", e.EnvVar, e.Field)
}

// ErrNotStructPointer is returned when Load is called with a non-pointer or non-struct argument.
type ErrNotStructPointer struct {
	Type string
}

func (e ErrNotStructPointer) Error() string {
	return fmt.Sprintf("env.Load: argument must be a pointer to struct, got %s", e.Type)
}

// ErrUnsupportedType is returned when a field has an unsupported type.
type ErrUnsupportedType struct {
	Kind string
}

func (e ErrUnsupportedType) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Kind)
}

// Load fills v from the process environment. See LoadFrom.
func Load(v any) error {
	return LoadFrom(v, os.LookupEnv)
}

// LoadFrom fills the struct pointed to by v using lookup.
//
// Tags:
//   - env:"NAME" binds the field to variable NAME
//   - default:"value" applies when NAME is unset
//   - required:"true" reports ErrMissing when NAME is unset and has no default
//
// Fields may be strings, bools, signed and unsigned integers, floats,
// time.Duration and []string (comma separated, blanks dropped). Nested
// structs are walked recursively and validated when they implement
// Validator; a struct with field errors is not validated.
//
// A variable set to the empty string counts as set. Every field error is
// reported, joined with errors.Join.
func LoadFrom(v any, lookup LookupFunc) error {
	ptr := reflect.ValueOf(v)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() || ptr.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer{Type: fmt.Sprintf("%T", v)}
	}
	return loadStruct(ptr.Elem(), lookup)
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

func loadStruct(val reflect.Value, lookup LookupFunc) error {
	var errs []error
	typ := val.Type()

	for i := range val.NumField() {
		field := val.Field(i)
		sf := typ.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != timeType {
			if err := loadStruct(field, lookup); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		key := sf.Tag.Get("env")
		if key == "" {
			continue
		}

		raw, ok := lookup(key)
		if !ok {
			raw, ok = sf.Tag.Lookup("default")
		}
		if !ok {
			if sf.Tag.Get("required") == "true" {
				errs = append(errs, ErrMissing{Field: sf.Name, EnvVar: key})
			}
			continue
		}

		if err := set(field, raw); err != nil {
			errs = append(errs, ErrInvalidValue{Field: sf.Name, EnvVar: key, Value: raw, Err: err})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if val.CanAddr() {
		if v, ok := val.Addr().Interface().(Validator); ok {
			return v.Validate()
		}
	}
	return nil
}

func set(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return ErrUnsupportedType{Kind: field.Type().String()}
		}
		field.Set(reflect.ValueOf(splitList(raw)).Convert(field.Type()))
	default:
		return ErrUnsupportedType{Kind: field.Kind().String()}
	}
	return nil
}

func splitList(raw string) []string {
	out := []string{}
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
