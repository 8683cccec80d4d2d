package store

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedCapability is returned by view, folder and note ID operations.
	ErrUnsupportedCapability = errors.New("protondoc: capability not supported")

	// ErrUnsupportedValueKind is returned when a field value cannot be mapped to
	// any native item kind, or asks for an encoding that is not implemented.
	ErrUnsupportedValueKind = errors.New("protondoc: unsupported value kind")

	// ErrStoreFailure is matched by every failure reported by the native store.
	ErrStoreFailure = errors.New("protondoc: store failure")
)

// ValueKindError names the field and Go type that could not be mapped.
type ValueKindError struct {
	Field    string
	Type     string
	Encoding Encoding
	Err      error
}

func (e *ValueKindError) Error() string {
	msg := fmt.Sprintf("protondoc: field %q: unable to convert value of type %s", e.Field, e.Type)
	if e.Encoding != EncodingDefault {
		msg = fmt.Sprintf("protondoc: field %q: %s storage is unsupported", e.Field, e.Encoding)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValueKindError) Is(target error) bool {
	return target == ErrUnsupportedValueKind
}

func (e *ValueKindError) Unwrap() error {
	return e.Err
}

// StoreError wraps a failure of a native store call.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("protondoc: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeFailure(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func unsupported(what string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedCapability, what)
}
