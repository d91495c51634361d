package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// RequiredFields fails when any of the dotted field paths holds a zero value
// (empty slices and maps count as zero)
func RequiredFields(fields ...string) Validator {
	return ValidatorFunc(func(config interface{}) error {
		var missing []string
		for _, path := range fields {
			field, err := lookup(config, path)
			if err != nil {
				return err
			}
			if isEmpty(field) {
				missing = append(missing, path)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("required fields are missing: %s", strings.Join(missing, ", "))
		}
		return nil
	})
}

// RangeValidator checks that a numeric field lies in [min, max].
// time.Duration fields compare in nanoseconds and are reported as durations.
func RangeValidator(path string, min, max float64) Validator {
	return ValidatorFunc(func(config interface{}) error {
		field, err := lookup(config, path)
		if err != nil {
			return err
		}
		n, ok := numeric(field)
		if !ok {
			return fmt.Errorf("field %s is not numeric", path)
		}
		if n >= min && n <= max {
			return nil
		}
		if field.Type() == durationType {
			return fmt.Errorf("field %s value %v is out of range [%v, %v]",
				path, time.Duration(n), time.Duration(min), time.Duration(max))
		}
		return fmt.Errorf("field %s value %g is out of range [%g, %g]", path, n, min, max)
	})
}

// StringLengthValidator checks that a string field has between minLen and maxLen bytes
func StringLengthValidator(path string, minLen, maxLen int) Validator {
	return ValidatorFunc(func(config interface{}) error {
		field, err := lookup(config, path)
		if err != nil {
			return err
		}
		if field.Kind() != reflect.String {
			return fmt.Errorf("field %s is not a string", path)
		}
		if n := field.Len(); n < minLen || n > maxLen {
			return fmt.Errorf("field %s length %d is out of range [%d, %d]", path, n, minLen, maxLen)
		}
		return nil
	})
}

// OneOfValidator checks that a field equals one of allowed.
// Strings match case-insensitively.
func OneOfValidator(path string, allowed ...interface{}) Validator {
	return ValidatorFunc(func(config interface{}) error {
		field, err := lookup(config, path)
		if err != nil {
			return err
		}
		value := field.Interface()
		for _, candidate := range allowed {
			if matches(value, candidate) {
				return nil
			}
		}
		return fmt.Errorf("field %s value %v is not one of allowed values: %v", path, value, allowed)
	})
}

// When applies validator only if cond holds for the config
func When(cond func(config interface{}) bool, validator Validator) Validator {
	return ValidatorFunc(func(config interface{}) error {
		if !cond(config) {
			return nil
		}
		return validator.Validate(config)
	})
}

// lookup resolves a dotted path such as "Pool.Workers" on a struct or struct pointer
func lookup(config interface{}, path string) (reflect.Value, error) {
	current := reflect.ValueOf(config)
	for _, part := range strings.Split(path, ".") {
		for current.Kind() == reflect.Ptr {
			if current.IsNil() {
				return reflect.Value{}, fmt.Errorf("field %s not found: nil pointer before %s", path, part)
			}
			current = current.Elem()
		}
		if current.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field %s not found: %s is not a struct", path, current.Kind())
		}
		current = current.FieldByName(part)
		if !current.IsValid() {
			return reflect.Value{}, fmt.Errorf("field %s not found", path)
		}
	}
	return current, nil
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}

func numeric(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

func matches(value, candidate interface{}) bool {
	if s, ok := value.(string); ok {
		if c, ok := candidate.(string); ok {
			return strings.EqualFold(s, c)
		}
	}
	return reflect.DeepEqual(value, candidate)
}
