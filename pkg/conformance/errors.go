package conformance

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/jingkaihe/plugincheck/pkg/manifest"
)

// Infrastructural preconditions. A run that hits one of these aborts; they are
// never reported as conformance failures.
var (
	ErrDiscovery    = errors.New("document discovery failed")
	ErrNoDocuments  = errors.New("no documents found")
	ErrReadDocument = errors.New("document could not be read")
	ErrSchema       = errors.New("schema could not be loaded")
)

// FaultError is an infrastructural fault tied to a document kind and,
// when relevant, to a single path
type FaultError struct {
	Kind manifest.Kind
	Path string
	Err  error // one of the Err* sentinels
	Base error // underlying cause, may be nil
}

func (e *FaultError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Err)
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Base != nil {
		msg += ": " + e.Base.Error()
	}
	return msg
}

// Unwrap lets errors.Is match the sentinel
func (e *FaultError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying error for github.com/pkg/errors
func (e *FaultError) Cause() error {
	if e.Base != nil {
		return e.Base
	}
	return e.Err
}

// IsFault reports whether err is an infrastructural fault
func IsFault(err error) bool {
	var fault *FaultError
	return errors.As(err, &fault)
}

func newFault(kind manifest.Kind, path string, sentinel, base error) *FaultError {
	return &FaultError{Kind: kind, Path: path, Err: sentinel, Base: base}
}
