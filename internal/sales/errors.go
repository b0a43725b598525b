package sales

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a sale is asked to leave a terminal
// status, or to move to a status its current one cannot reach.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidStatus is returned for a status value outside PENDING/PAID/CANCELLED.
var ErrInvalidStatus = errors.New("invalid status value")

// ErrInvalidPaymentType is returned for a payment type outside CASH/CARD/TRANSFER.
var ErrInvalidPaymentType = errors.New("invalid payment type")

// ValidationError reports malformed or out-of-range input. It is always
// raised before the gateway is contacted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// GatewayError wraps any failure of the persistence gateway. Message is the
// gateway's own text, unmodified.
type GatewayError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s failed (%d): %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("gateway %s failed: %s", e.Op, msg)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// gatewayErr wraps err as a *GatewayError unless it already is one.
func gatewayErr(op string, err error) error {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return err
	}
	return &GatewayError{Op: op, Message: err.Error(), Err: err}
}

func transitionErr(from, to Status) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
