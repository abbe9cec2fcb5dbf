package markup

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/FocuswithJustin/safemarkup/core/errors"
)

// textOf converts v to the text that gets escaped. op names the calling
// operation in the returned *errors.TypeError.
func textOf(op string, v any) (string, error) {
	if isNil(v) {
		return "", nil
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case []rune:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case error:
		return v.Error(), nil
	case bool:
		return strconv.FormatBool(v), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	case reflect.Complex64:
		return strconv.FormatComplex(rv.Complex(), 'g', -1, 64), nil
	case reflect.Complex128:
		return strconv.FormatComplex(rv.Complex(), 'g', -1, 128), nil
	}
	return "", errors.NewType(op, v, "")
}

// isNil reports whether v is nil or a nil pointer, map, slice, func, chan
// or interface held in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// isEmpty reports whether v converts to empty text without inspection:
// nil values, empty strings and empty byte or rune slices.
func isEmpty(v any) bool {
	if isNil(v) {
		return true
	}
	switch v := v.(type) {
	case []byte:
		return len(v) == 0
	case []rune:
		return len(v) == 0
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.String && rv.Len() == 0
}

// isNumber reports whether v is a Go integer, float or complex value.
func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}
