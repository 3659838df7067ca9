package try

// Fataler is anything with a Fatal method: *testing.T, *log.Logger, ...
type Fataler interface {
	Fatal(...any)
}

type Helperer interface {
	Helper()
}

// Either wraps a (T, error) pair.
type Either[T any] interface {
	// Get returns the wrapped pair.
	Get() (T, error)

	// OrFatal returns the value, or calls ftl.Fatal(err) when the pair
	// holds an error. When ftl has a Helper method (like *testing.T),
	// Helper is called first.
	OrFatal(ftl Fataler) T

	// OrDefault returns the value, or the given default on error.
	OrDefault(T) T
}

// To wraps a function call result: try.To(f()).OrFatal(t)
func To[T any](ok T, ng error) Either[T] {
	if ng == nil {
		return tryOk[T]{ok}
	}
	return tryNg[T]{ng}
}

type tryOk[T any] struct {
	value T
}

func (o tryOk[T]) Get() (T, error) {
	return o.value, nil
}

func (o tryOk[T]) OrFatal(Fataler) T {
	return o.value
}

func (o tryOk[T]) OrDefault(T) T {
	return o.value
}

type tryNg[T any] struct {
	err error
}

func (n tryNg[T]) Get() (T, error) {
	return *new(T), n.err
}

func (n tryNg[T]) OrFatal(ftl Fataler) T {
	if h, ok := ftl.(Helperer); ok {
		h.Helper()
	}
	ftl.Fatal(n.err)
	return *new(T) // not reached; Fatal does not return
}

func (n tryNg[T]) OrDefault(def T) T {
	return def
}
