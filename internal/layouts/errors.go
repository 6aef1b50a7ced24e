package layouts

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument reports an XLF document that cannot be parsed.
	ErrMalformedDocument = errors.New("layouts: malformed xlf document")
	// ErrLayoutInvalid reports a layout failing structural validation.
	ErrLayoutInvalid = errors.New("layouts: layout invalid")
	// ErrLayoutIDRequired reports a lookup without an identifier.
	ErrLayoutIDRequired = errors.New("layouts: layout id required")
	// ErrResolutionRequired reports a create request without a resolution.
	ErrResolutionRequired = errors.New("layouts: resolution id required")
	// ErrTemplateRequired reports a create request without a template.
	ErrTemplateRequired = errors.New("layouts: template id required")
	// ErrLayoutExists reports a save of a layout that already has an identifier.
	ErrLayoutExists = errors.New("layouts: layout already persisted")
	// ErrModuleResolverRequired reports a parser constructed without a module registry.
	ErrModuleResolverRequired = errors.New("layouts: module resolver required")
)

// MalformedDocumentError describes why an XLF document was rejected. It
// matches ErrMalformedDocument with errors.Is.
type MalformedDocumentError struct {
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrMalformedDocument.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrMalformedDocument.Error(), e.Reason, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

func malformed(reason string, err error) error {
	return &MalformedDocumentError{Reason: reason, Err: err}
}

// NotFoundError is returned when a layout resource cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
