package payments

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrNoChange           = errors.New("no change")
	ErrConcurrentUpdate   = errors.New("payment changed concurrently")
	ErrOrderNotCapturable = errors.New("order not capturable")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrMalformedEvent     = errors.New("malformed webhook event")
)

// TransitionError reports a status change the state machine does not allow.
type TransitionError struct {
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s not allowed", e.From, e.To)
}

// ProcessorError wraps a failure returned by the payment processor.
type ProcessorError struct {
	Op  string
	Err error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor %s: %v", e.Op, e.Err)
}

func (e *ProcessorError) Unwrap() error { return e.Err }
