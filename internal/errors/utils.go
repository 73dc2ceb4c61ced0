package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a FolioError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *FolioError {
	if err == nil {
		return nil
	}

	// Keep the category and path of an inner FolioError visible on the wrapper.
	var fe *FolioError
	if errors.As(err, &fe) {
		return &FolioError{
			Type:     errType,
			Code:     code,
			Message:  message,
			Cause:    fe,
			Context:  fe.Context,
			Category: fe.Category,
			Path:     fe.Path,
		}
	}

	return &FolioError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapWithContext wraps an error with context information
func WrapWithContext(err error, errType ErrorType, code, message string, context map[string]interface{}) *FolioError {
	folioErr := Wrap(err, errType, code, message)
	if folioErr != nil {
		folioErr.Context = context
	}
	return folioErr
}

// WrapIO wraps an error as an I/O error for the given file.
func WrapIO(err error, code, message, path string) *FolioError {
	folioErr := Wrap(err, ErrorTypeIO, code, message)
	if folioErr != nil {
		folioErr.Path = path
	}
	return folioErr
}

// WrapMalformedIndex wraps an error as a malformed index error for the given file.
func WrapMalformedIndex(err error, code, message, path string) *FolioError {
	folioErr := Wrap(err, ErrorTypeMalformedIndex, code, message)
	if folioErr != nil {
		folioErr.Path = path
	}
	return folioErr
}

// WrapRender wraps an error as a render error.
func WrapRender(err error, code, message string) *FolioError {
	return Wrap(err, ErrorTypeRender, code, message)
}

// Combine merges several errors into one, dropping nils.
func Combine(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}

	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return errors.Join(nonNil...)
	}
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, code, message string) *FolioError {
	return Wrap(err, ErrorTypeConfig, code, message)
}
