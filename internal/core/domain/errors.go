package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURI        = errors.New("invalid object uri")
	ErrUnsupportedFormat = errors.New("unsupported media format")
	ErrInvalidEnvelope   = errors.New("invalid trigger envelope")
	ErrJobNotFound       = errors.New("moderation job not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrDetectionPending  = errors.New("detection still in progress")
	ErrDetectionFailed   = errors.New("detection failed")
	ErrTransport         = errors.New("transport failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
