package config

// Source indicates where a resolved value came from.
type Source string

const (
	// SourceFlag indicates the value came from a command-line flag.
	SourceFlag Source = "flag"
	// SourceConfig indicates the value came from the environment or akslab.yaml.
	SourceConfig Source = "config"
	// SourceDetected indicates the value was looked up (Azure, public IP echo).
	SourceDetected Source = "detected"
	// SourcePrompt indicates the value was entered interactively.
	SourcePrompt Source = "prompt"
	// SourceOutput indicates the value came from a deployment output.
	SourceOutput Source = "output"
	// SourceDefault indicates the value is a computed default.
	SourceDefault Source = "default"
)

// Candidate is one step in a fallback chain. Lookup reports ok=false when
// the step has no value; a non-nil error aborts the chain.
type Candidate[T any] struct {
	Source Source
	Lookup func() (value T, ok bool, err error)
}

// Resolved is the outcome of walking a fallback chain.
type Resolved[T any] struct {
	Value  T
	Source Source
}

// Found reports whether any candidate produced the value.
func (r Resolved[T]) Found() bool {
	return r.Source != ""
}

// Resolve returns the value of the first candidate that has one. If no
// candidate has a value the result is the zero value with an empty Source.
func Resolve[T any](candidates ...Candidate[T]) (Resolved[T], error) {
	for _, c := range candidates {
		v, ok, err := c.Lookup()
		if err != nil {
			return Resolved[T]{}, err
		}
		if ok {
			return Resolved[T]{Value: v, Source: c.Source}, nil
		}
	}
	return Resolved[T]{}, nil
}

// Given is a candidate holding v, present when v is not the zero value.
func Given[T comparable](source Source, v T) Candidate[T] {
	return Candidate[T]{
		Source: source,
		Lookup: func() (T, bool, error) {
			var zero T
			return v, v != zero, nil
		},
	}
}

// FromMap is a candidate reading key from m, present when the entry exists
// and is not empty.
func FromMap(source Source, m map[string]string, key string) Candidate[string] {
	return Candidate[string]{
		Source: source,
		Lookup: func() (string, bool, error) {
			v, ok := m[key]
			return v, ok && v != "", nil
		},
	}
}

// Func is a candidate computed on demand. It is only evaluated when every
// earlier candidate had no value.
func Func[T any](source Source, fn func() (T, bool, error)) Candidate[T] {
	return Candidate[T]{Source: source, Lookup: fn}
}

// Default is a candidate that always resolves to v.
func Default[T any](v T) Candidate[T] {
	return Candidate[T]{
		Source: SourceDefault,
		Lookup: func() (T, bool, error) { return v, true, nil },
	}
}

// ValueOr resolves key from m, falling back to def. It is the common form
// used when reading deployment outputs.
func ValueOr(m map[string]string, key, def string) Resolved[string] {
	r, _ := Resolve(FromMap(SourceOutput, m, key), Default(def))
	return r
}
