package oneshot

// Args is a general-purpose signal payload carrying positional values and
// named, typed fields. Use it for signals whose handlers take a variable
// number of arguments.
type Args struct {
	values []any

	// fields are keyed by Key.Name().
	fields map[string]Field
}

// NewArgs creates Args holding the given positional values.
func NewArgs(values ...any) *Args {
	a := &Args{
		values: make([]any, len(values)),
		fields: make(map[string]Field),
	}
	copy(a.values, values)
	return a
}

// WithFields adds named fields to a and returns it.
// A field replaces any earlier field with the same key name.
func (a *Args) WithFields(fields ...Field) *Args {
	if a.fields == nil {
		a.fields = make(map[string]Field, len(fields))
	}
	for _, field := range fields {
		a.fields[field.Key().Name()] = field
	}
	return a
}

// Len returns the number of positional values.
func (a *Args) Len() int {
	return len(a.values)
}

// At returns the positional value at i, or nil if i is out of range.
func (a *Args) At(i int) any {
	if i < 0 || i >= len(a.values) {
		return nil
	}
	return a.values[i]
}

// Values returns a copy of the positional values.
func (a *Args) Values() []any {
	result := make([]any, len(a.values))
	copy(result, a.values)
	return result
}

// Get retrieves a field by key, returning nil if not found.
func (a *Args) Get(key Key) Field {
	return a.fields[key.Name()]
}

// Fields returns all named fields as a slice.
// Returns a copy; modifications don't affect the args.
func (a *Args) Fields() []Field {
	result := make([]Field, 0, len(a.fields))
	for _, field := range a.fields {
		result = append(result, field)
	}
	return result
}

// Arg returns the positional value at i as a T.
// Returns the zero value and false if i is out of range or the value is not a T.
func Arg[T any](a *Args, i int) (T, bool) {
	v, ok := a.At(i).(T)
	return v, ok
}
