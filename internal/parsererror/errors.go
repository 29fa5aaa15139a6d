package parsererror

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument is matched by every MalformedDocumentError through errors.Is.
var ErrMalformedDocument = errors.New("malformed document")

// MalformedDocumentError reports an authorization envelope that cannot be
// decoded: unparseable XML, or a required wrapper element that is missing.
type MalformedDocumentError struct {
	FilePath string
	Element  string
	Err      error
}

func (e *MalformedDocumentError) Error() string {
	target := e.FilePath
	if target == "" {
		target = "<memory>"
	}
	if e.Element != "" && e.Err != nil {
		return fmt.Sprintf("invalid XML in %s: <%s>: %v", target, e.Element, e.Err)
	}
	if e.Element != "" {
		return fmt.Sprintf("invalid XML in %s: missing <%s>", target, e.Element)
	}
	return fmt.Sprintf("invalid XML in %s: %v", target, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedDocument) succeed.
func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// Missing builds the error for an absent required element.
func Missing(filePath, element string) *MalformedDocumentError {
	return &MalformedDocumentError{FilePath: filePath, Element: element}
}

// Unparseable builds the error for XML that cannot be read at all.
func Unparseable(filePath, element string, err error) *MalformedDocumentError {
	return &MalformedDocumentError{FilePath: filePath, Element: element, Err: err}
}
