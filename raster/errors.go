package raster

import (
	"fmt"

	"github.com/pkg/errors"
)

// DecodeError reports a raster file that could not be decoded, either a
// malformed header, bad dimensions or a short payload
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {

	msg := e.Reason

	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return "decode error: " + msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is or wraps a DecodeError
func IsDecodeError(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

func decodeErr(reason string, args ...any) *DecodeError {
	return &DecodeError{Reason: fmt.Sprintf(reason, args...)}
}
