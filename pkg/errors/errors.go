// Error wrapper which records where it was created.
//
// Usage:
//
//	wrapped := xe.Wrap(err)
//
// The returned error knows the file, line and function name of the point
// where Wrap was called. Messages chain with " <- ", so reading one from
// the outside in gives the propagation path of the original error.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

type ErrWithCaller struct {
	file     string
	line     int
	funcname string
	note     string
	err      error
}

var _ error = &ErrWithCaller{}

func (e *ErrWithCaller) File() string {
	return e.file
}

func (e *ErrWithCaller) Line() int {
	return e.line
}

func (e *ErrWithCaller) Error() string {
	if e.note == "" {
		return fmt.Sprintf(`@ %s "%s" l%d <- %s`, e.funcname, e.file, e.line, e.err.Error())
	}
	return fmt.Sprintf(`@ %s "%s" l%d (%s) <- %s`, e.funcname, e.file, e.line, e.note, e.err.Error())
}

func (e *ErrWithCaller) Unwrap() error {
	return e.err
}

// New creates a new error annotated with the caller of New.
func New(text string) error {
	return wrap("", errors.New(text), 1)
}

// Wrap annotates err with the caller of Wrap.
func Wrap(err error) error {
	return wrap("", err, 1)
}

// WrapWithNote is Wrap with an extra free-text note.
func WrapWithNote(note string, err error) error {
	return wrap(note, err, 1)
}

// WrapAsOuter annotates err with the caller `depth` frames above the
// caller of WrapAsOuter. Use it from error-constructor helpers so that
// the recorded location is the helper's caller, not the helper.
func WrapAsOuter(err error, depth int) error {
	return wrap("", err, depth+1)
}

func wrap(note string, err error, depth int) error {
	pc, file, line, ok := runtime.Caller(depth + 1)
	funcname := "(unknown func)"
	if !ok {
		file = "?"
		line = -1
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		funcname = fn.Name()
	}

	return &ErrWithCaller{
		funcname: funcname,
		file:     file,
		line:     line,
		note:     note,
		err:      err,
	}
}
