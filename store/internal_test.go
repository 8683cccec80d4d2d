package store

import (
	"errors"
	"math"
	"testing"

	"github.com/jacentio/protondoc/native"
)

// --- roundTo Tests ---

func TestRoundTo(t *testing.T) {
	tests := []struct {
		in        float64
		precision int
		want      float64
	}{
		{3.14159, 0, 3.14159},
		{3.14159, 2, 3.14},
		{2.5, 0, 2.5},
		{0.125, 2, 0.13},
		{-0.125, 2, -0.13},
		{1.005e3, 1, 1005},
		{-7.77777, 3, -7.778},
		{1.25, 400, 1.25},
		{1e300, 20, 1e300},
	}
	for _, tt := range tests {
		got := roundTo(tt.in, tt.precision)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("roundTo(%v, %d): expected %v, got %v", tt.in, tt.precision, tt.want, got)
		}
	}
}

// --- isEmpty Tests ---

func TestIsEmpty(t *testing.T) {
	var nilPtr *string
	s := "x"
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, true},
		{"nil pointer", nilPtr, true},
		{"pointer", &s, false},
		{"empty slice", []string{}, true},
		{"nil slice", []int(nil), true},
		{"empty map", map[string]int{}, true},
		{"empty string", "", false},
		{"zero", 0, false},
		{"slice", []int{1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmpty(tt.v); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// --- listValue Tests ---

func TestListValue_Homogeneous(t *testing.T) {
	v, err := listValue([]any{1, int64(2), 3.5}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nums, ok := v.(native.NumberList)
	if !ok {
		t.Fatalf("expected NumberList, got %T", v)
	}
	if len(nums) != 3 || nums[2] != 3.5 {
		t.Errorf("unexpected numbers %v", nums)
	}
}

func TestListValue_Mixed(t *testing.T) {
	_, err := listValue([]any{"a", 1}, 0)
	if err == nil {
		t.Fatal("expected error for mixed kinds")
	}
}

func TestListValue_Nested(t *testing.T) {
	_, err := listValue([]any{[]string{"a"}}, 0)
	if err == nil {
		t.Fatal("expected error for nested list")
	}
}

func TestListValue_NilElement(t *testing.T) {
	_, err := listValue([]any{"a", nil}, 0)
	if err == nil {
		t.Fatal("expected error for nil element")
	}
}

// --- error helper Tests ---

func TestStoreFailure(t *testing.T) {
	cause := errors.New("connection reset")
	err := storeFailure("insert", cause)

	if !errors.Is(err, ErrStoreFailure) {
		t.Error("expected error to match ErrStoreFailure")
	}
	if !errors.Is(err, cause) {
		t.Error("expected error to wrap its cause")
	}
	if err.Error() != "protondoc: insert: connection reset" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestUnsupported(t *testing.T) {
	err := unsupported("put in folder")
	if !errors.Is(err, ErrUnsupportedCapability) {
		t.Error("expected error to match ErrUnsupportedCapability")
	}
}

func TestValueKindError(t *testing.T) {
	err := error(&ValueKindError{Field: "blob", Type: "chan int"})
	if !errors.Is(err, ErrUnsupportedValueKind) {
		t.Error("expected error to match ErrUnsupportedValueKind")
	}
	if err.Error() != `protondoc: field "blob": unable to convert value of type chan int` {
		t.Errorf("unexpected message %q", err.Error())
	}

	err = &ValueKindError{Field: "doc", Type: "string", Encoding: EncodingMIME}
	if err.Error() != `protondoc: field "doc": MIME storage is unsupported` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

// --- Config Tests ---

func TestConfig_Validate(t *testing.T) {
	var c Config
	c.validate()

	if c.CollectionField != FieldName {
		t.Errorf("expected CollectionField %q, got %q", FieldName, c.CollectionField)
	}
	if c.UnboundedCount != Unbounded {
		t.Errorf("expected UnboundedCount %d, got %d", Unbounded, c.UnboundedCount)
	}
	if c.AccessTokens == nil || c.Coercions == nil || c.Logger == nil {
		t.Error("expected defaults for AccessTokens, Coercions and Logger")
	}
}
