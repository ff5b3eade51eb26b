package oneshot

import "time"

// Variant is a discriminator for the Field implementation type.
type Variant string

const (
	VariantString   Variant = "string"
	VariantInt      Variant = "int"
	VariantFloat64  Variant = "float64"
	VariantBool     Variant = "bool"
	VariantTime     Variant = "time.Time"
	VariantDuration Variant = "time.Duration"
	VariantError    Variant = "error"
)

// Key is a typed name for a field in Args.
type Key interface {
	// Name returns the field name.
	Name() string

	// Variant returns the type discriminator for this key.
	Variant() Variant
}

// Field is a named, typed value carried by Args.
type Field interface {
	Variant() Variant
	Key() Key
	Value() any
}

// GenericField is the Field implementation for values of type T.
type GenericField[T any] struct {
	key     Key
	value   T
	variant Variant
}

// Variant returns the discriminator for this field's type.
func (f GenericField[T]) Variant() Variant { return f.variant }

// Key returns the field's key.
func (f GenericField[T]) Key() Key { return f.key }

// Value returns the underlying value as any.
func (f GenericField[T]) Value() any { return f.value }

// Get returns the typed value.
func (f GenericField[T]) Get() T { return f.value }

// GenericKey is a Key for values of type T.
type GenericKey[T any] struct {
	name    string
	variant Variant
}

// Name returns the field name.
func (k GenericKey[T]) Name() string { return k.name }

// Variant returns the type discriminator.
func (k GenericKey[T]) Variant() Variant { return k.variant }

// Field creates a field with this key and the given value.
func (k GenericKey[T]) Field(value T) Field {
	return GenericField[T]{key: k, value: value, variant: k.variant}
}

// From extracts the typed value for this key from a.
// Returns false if the field is missing or holds a different type.
func (k GenericKey[T]) From(a *Args) (T, bool) {
	f, ok := a.Get(k).(GenericField[T])
	return f.Get(), ok
}

// NewKey creates a key for any type T.
// Use a namespaced variant to avoid collisions (e.g., "myapp.Point").
func NewKey[T any](name string, variant Variant) GenericKey[T] {
	return GenericKey[T]{name: name, variant: variant}
}

// NewStringKey creates a key for string values.
func NewStringKey(name string) GenericKey[string] {
	return NewKey[string](name, VariantString)
}

// NewIntKey creates a key for int values.
func NewIntKey(name string) GenericKey[int] {
	return NewKey[int](name, VariantInt)
}

// NewFloat64Key creates a key for float64 values.
func NewFloat64Key(name string) GenericKey[float64] {
	return NewKey[float64](name, VariantFloat64)
}

// NewBoolKey creates a key for bool values.
func NewBoolKey(name string) GenericKey[bool] {
	return NewKey[bool](name, VariantBool)
}

// NewTimeKey creates a key for time.Time values.
func NewTimeKey(name string) GenericKey[time.Time] {
	return NewKey[time.Time](name, VariantTime)
}

// NewDurationKey creates a key for time.Duration values.
func NewDurationKey(name string) GenericKey[time.Duration] {
	return NewKey[time.Duration](name, VariantDuration)
}

// NewErrorKey creates a key for error values.
func NewErrorKey(name string) GenericKey[error] {
	return NewKey[error](name, VariantError)
}
