// Package failfast turns broken preconditions into panics carrying an error value.
package failfast

import (
	"fmt"
	"reflect"
	"runtime/debug"
)

// Err panics if err != nil, attaching the current stack
func Err(err error) {
	if err != nil {
		panic(fmt.Errorf("fail-fast: %w\n%s", err, debug.Stack()))
	}
}

// If panics if condition is false.
// message is a format string; use %w to wrap a sentinel so the recovered
// value can be matched with errors.Is.
func If(condition bool, message string, args ...interface{}) {
	if !condition {
		panic(fmt.Errorf("fail-fast: "+message, args...))
	}
}

// NotNil panics if v is nil, including typed nil pointers, funcs, maps, chans and slices
func NotNil(v interface{}, name string) {
	if IsNil(v) {
		panic(fmt.Errorf("fail-fast: %s is nil", name))
	}
}

// IsNil reports whether v is nil or an interface holding a nil pointer, func, map, chan or slice
func IsNil(v interface{}) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Chan, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
