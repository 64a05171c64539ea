package stripegw

import (
	"errors"

	"github.com/stripe/stripe-go/v75"
)

// Error is the typed failure every Gateway method returns. Callers branch on
// it (external-processor error vs anything else) instead of unwrapping
// stripe-go exception types.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return "stripe: " + e.Code + ": " + e.Message
	}
	return "stripe: " + e.Message
}

// AsGatewayError reports whether err originated from the payment processor.
func AsGatewayError(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

func wrapStripeErr(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		msg := se.Msg
		if msg == "" {
			msg = err.Error()
		}
		return &Error{Code: string(se.Code), Message: msg}
	}
	return &Error{Message: err.Error()}
}
