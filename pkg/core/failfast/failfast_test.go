package failfast

import (
	"errors"
	"strings"
	"testing"
)

// recovered runs fn and returns the error it panicked with, or nil
func recovered(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(error)
		if !ok {
			t.Fatalf("Expected error type, got: %T", r)
		}
		err = e
	}()
	fn()
	return nil
}

func TestErr(t *testing.T) {
	if err := recovered(t, func() { Err(nil) }); err != nil {
		t.Errorf("Expected no panic, got: %v", err)
	}

	sentinel := errors.New("queue unusable")
	err := recovered(t, func() { Err(sentinel) })
	if err == nil {
		t.Fatal("Expected panic, got none")
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("panic %v should wrap the original error", err)
	}
	if !strings.Contains(err.Error(), "goroutine") {
		t.Error("panic message should carry a stack trace")
	}
}

func TestIf(t *testing.T) {
	if err := recovered(t, func() { If(true, "should not panic") }); err != nil {
		t.Errorf("Expected no panic, got: %v", err)
	}

	t.Run("formatted message", func(t *testing.T) {
		err := recovered(t, func() { If(false, "size is %d", 0) })
		expected := "fail-fast: size is 0"
		if err == nil || err.Error() != expected {
			t.Errorf("Expected %q, got %v", expected, err)
		}
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		sentinel := errors.New("pool size must be at least 1")
		err := recovered(t, func() { If(false, "%w: got %d", sentinel, -3) })
		if !errors.Is(err, sentinel) {
			t.Errorf("panic %v should wrap the sentinel", err)
		}
	})
}

func TestNotNil(t *testing.T) {
	val := "test"
	var nilPtr *string
	var nilFunc func()
	var nilMap map[string]int
	var nilIface interface{}

	tests := []struct {
		name      string
		value     interface{}
		wantPanic bool
	}{
		{"pointer", &val, false},
		{"value", 0, false},
		{"nil pointer", nilPtr, true},
		{"nil func", nilFunc, true},
		{"nil map", nilMap, true},
		{"nil interface", nilIface, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := recovered(t, func() { NotNil(tt.value, "v") })
			if (err != nil) != tt.wantPanic {
				t.Fatalf("NotNil() panic = %v, wantPanic %v", err, tt.wantPanic)
			}
			if tt.wantPanic && err.Error() != "fail-fast: v is nil" {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestIsNil(t *testing.T) {
	var nilPtr *int
	var nilSlice []int
	var nilChan chan int
	var iface error = (*testErr)(nil)

	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{"untyped nil", nil, true},
		{"nil pointer", nilPtr, true},
		{"nil slice", nilSlice, true},
		{"nil chan", nilChan, true},
		{"interface holding nil pointer", iface, true},
		{"zero int", 0, false},
		{"empty string", "", false},
		{"non-nil slice", []int{}, false},
	}

	for _, tt := range tests {
		if got := IsNil(tt.value); got != tt.want {
			t.Errorf("IsNil(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

type testErr struct{}

func (*testErr) Error() string { return "test" }
