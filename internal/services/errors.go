package services

import "errors"

var ErrForbidden = errors.New("forbidden")

// ValidationError is a business-rule failure reported to the client as 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
